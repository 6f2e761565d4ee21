package resolver

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ZebulonRouseFrantzich/mdnls/internal/release"
	"github.com/spf13/afero"
)

// CleanupReport lists what Cleanup did. Removal failures are collected
// here and never returned as an error.
type CleanupReport struct {
	Kept    string           `json:"kept" yaml:"kept"`
	Removed []string         `json:"removed" yaml:"removed"`
	Failed  map[string]error `json:"-" yaml:"-"`
}

func (r *CleanupReport) String() string {
	if len(r.Removed) == 0 && r.Kept == "" {
		return "Nothing to remove"
	}
	if len(r.Removed) == 0 {
		return fmt.Sprintf("Nothing to remove (keeping %s)", r.Kept)
	}
	return fmt.Sprintf("Kept %s\nRemoved %s", r.Kept, strings.Join(r.Removed, ", "))
}

// Cleanup removes every top-level entry of workDir except keep. Only a
// failure to list workDir is returned.
func Cleanup(fsys afero.Fs, workDir, keep string) (*CleanupReport, error) {
	entries, err := afero.ReadDir(fsys, workDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list working directory %s: %w", workDir, err)
	}

	report := &CleanupReport{Kept: keep, Failed: map[string]error{}}
	for _, entry := range entries {
		name := entry.Name()
		if name == keep {
			continue
		}
		if err := fsys.RemoveAll(filepath.Join(workDir, name)); err != nil {
			report.Failed[name] = err
			continue
		}
		report.Removed = append(report.Removed, name)
	}
	sort.Strings(report.Removed)
	return report, nil
}

// Clean removes everything in the working directory except one installed
// version: the latest release when it is installed, otherwise the version
// in use (or the newest one on disk). It holds the install lock, so it never
// removes a staging directory another install is writing to. A working
// directory that does not exist yet is an empty report.
func (r *Resolver) Clean(ctx context.Context) (*CleanupReport, error) {
	exists, err := afero.DirExists(r.cfg.Fs, r.cfg.WorkDir)
	if err != nil {
		return nil, stepError(StepCleanup, ErrDirectoryList, err)
	}
	if !exists {
		return &CleanupReport{Failed: map[string]error{}}, nil
	}

	rel, err := r.cfg.Index.LatestRelease(ctx, r.cfg.Repository, release.Options{RequireAssets: true})
	if err != nil {
		return nil, stepError(StepQueryIndex, ErrFetch, err)
	}

	if r.cfg.Lock != nil {
		unlock, err := r.cfg.Lock.Acquire(ctx)
		if err != nil {
			return nil, fmt.Errorf("acquire install lock: %w", err)
		}
		defer func() {
			if err := unlock(); err != nil {
				r.logger.Warn("release install lock", "error", err)
			}
		}()
	}

	report, err := Cleanup(r.cfg.Fs, r.cfg.WorkDir, r.keepDir(rel.Version))
	if err != nil {
		return nil, stepError(StepCleanup, ErrDirectoryList, err)
	}
	for name, rmErr := range report.Failed {
		r.logger.Warn("could not remove entry", "entry", name, "error", rmErr)
	}
	return report, nil
}

// keepDir names the version directory Clean preserves.
func (r *Resolver) keepDir(latest string) string {
	sel := r.cfg.Selector
	if r.isRegularFile(r.executablePath(latest)) {
		return sel.VersionDir(latest)
	}

	if path, ok := r.cfg.State.Path(); ok && r.isRegularFile(path) {
		if rel, err := filepath.Rel(r.cfg.WorkDir, path); err == nil {
			dir := strings.SplitN(filepath.ToSlash(rel), "/", 2)[0]
			if dir != ".." && dir != "." {
				return dir
			}
		}
	}

	if dir := r.newestInstalled(); dir != "" {
		r.logger.Debug("latest release not installed, keeping newest on disk", "latest", latest, "keep", dir)
		return dir
	}
	return sel.VersionDir(latest)
}

// newestInstalled returns the most recently modified version directory that
// holds an executable, or "" when there is none.
func (r *Resolver) newestInstalled() string {
	entries, err := afero.ReadDir(r.cfg.Fs, r.cfg.WorkDir)
	if err != nil {
		return ""
	}

	prefix := r.cfg.Selector.Tool + "-"
	exe := r.cfg.Selector.ExecutableName(r.cfg.Platform)

	var newest string
	var newestTime time.Time
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() || !strings.HasPrefix(name, prefix) || strings.HasSuffix(name, ".partial") {
			continue
		}
		if !r.isRegularFile(filepath.Join(r.cfg.WorkDir, name, exe)) {
			continue
		}
		if newest == "" || entry.ModTime().After(newestTime) {
			newest, newestTime = name, entry.ModTime()
		}
	}
	return newest
}
