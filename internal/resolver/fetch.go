package resolver

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ZebulonRouseFrantzich/mdnls/internal/binary"
	"github.com/ZebulonRouseFrantzich/mdnls/internal/release"
)

// Names of optional verification assets published next to an archive.
var (
	checksumAssets  = []string{"%s.sha256", "SHA256SUMS", "checksums.txt"}
	signatureAssets = []string{"%s.sig", "%s.asc"}
)

// fetchShared collapses concurrent first fetches into one per working
// directory. Callers that join an in-flight fetch share its context.
func (r *Resolver) fetchShared(ctx context.Context) (string, error) {
	v, err, shared := r.group.Do(r.cfg.WorkDir, func() (interface{}, error) {
		return r.fetch(ctx)
	})
	if err != nil {
		return "", err
	}
	if shared {
		r.logger.Debug("joined in-flight fetch", "work_dir", r.cfg.WorkDir)
	}
	return v.(string), nil
}

// fetch installs the latest release, reporting status on the way.
func (r *Resolver) fetch(ctx context.Context) (string, error) {
	path, err := r.install(ctx)
	if err != nil {
		r.cfg.Status.SetStatus(r.cfg.ServerID, StatusFailed, err)
		return "", err
	}
	r.cfg.Status.SetStatus(r.cfg.ServerID, StatusNone, nil)
	r.cfg.State.Set(path)
	return path, nil
}

func (r *Resolver) install(ctx context.Context) (string, error) {
	key := r.cfg.Platform
	sel := r.cfg.Selector

	// Fail before touching the network on platforms with no assets
	assetName, err := sel.AssetName(key)
	if err != nil {
		return "", stepError(StepSelectAsset, ErrUnsupportedPlatform, err)
	}

	r.cfg.Status.SetStatus(r.cfg.ServerID, StatusChecking, nil)
	rel, err := r.cfg.Index.LatestRelease(ctx, r.cfg.Repository, release.Options{
		RequireAssets: true,
		PreRelease:    false,
	})
	if err != nil {
		return "", stepError(StepQueryIndex, ErrFetch, err)
	}

	archive, ok := rel.Find(assetName)
	if !ok {
		return "", stepError(StepSelectAsset, ErrAssetNotFound,
			fmt.Errorf("unable to find %s in release %s", assetName, rel.Version))
	}

	versionDir := sel.VersionDir(rel.Version)
	exePath := r.executablePath(rel.Version)
	if r.isRegularFile(exePath) {
		r.logger.Debug("release already installed", "version", rel.Version, "path", exePath)
		return exePath, nil
	}

	r.logger.Info("installing release", "version", rel.Version, "asset", assetName)
	r.cfg.Status.SetStatus(r.cfg.ServerID, StatusDownloading, nil)

	if err := r.cfg.Fs.MkdirAll(r.cfg.WorkDir, 0o755); err != nil {
		return "", stepError(StepPrepare, ErrDownload, err)
	}

	if r.cfg.Lock != nil {
		unlock, err := r.cfg.Lock.Acquire(ctx)
		if err != nil {
			return "", stepError(StepPrepare, ErrDownload, fmt.Errorf("acquire install lock: %w", err))
		}
		defer func() {
			if err := unlock(); err != nil {
				r.logger.Warn("release install lock", "error", err)
			}
		}()

		// Another process may have finished the same install while we waited
		if r.isRegularFile(exePath) {
			r.logger.Debug("release installed by another process", "version", rel.Version)
			return exePath, nil
		}
	}

	req := binary.FetchRequest{
		URL:       archive.DownloadURL,
		DestDir:   filepath.Join(r.cfg.WorkDir, versionDir),
		Kind:      sel.ArchiveKind(key),
		AssetName: assetName,
	}
	req.ChecksumURL = findCompanion(rel, assetName, checksumAssets)
	req.SignatureURL = findCompanion(rel, assetName, signatureAssets)

	if err := r.cfg.Fetcher.Fetch(ctx, req); err != nil {
		return "", stepError(StepDownload, fetchKind(err),
			fmt.Errorf("fetch %s %s: %w", sel.Tool, rel.Version, err))
	}

	if err := r.cfg.Marker.MakeExecutable(exePath); err != nil {
		return "", stepError(StepMark, ErrPermission, err)
	}

	report, err := Cleanup(r.cfg.Fs, r.cfg.WorkDir, versionDir)
	if err != nil {
		return "", stepError(StepCleanup, ErrDirectoryList, err)
	}
	for name, rmErr := range report.Failed {
		r.logger.Debug("ignoring cleanup failure", "entry", name, "error", rmErr)
	}

	r.logger.Info("installed release", "version", rel.Version, "path", exePath, "removed", len(report.Removed))
	return exePath, nil
}

// findCompanion returns the download URL of the first asset matching one of
// patterns, where %s stands for the archive name.
func findCompanion(rel *release.Release, assetName string, patterns []string) string {
	for _, pattern := range patterns {
		name := pattern
		if strings.Contains(pattern, "%s") {
			name = fmt.Sprintf(pattern, assetName)
		}
		if a, ok := rel.Find(name); ok {
			return a.DownloadURL
		}
	}
	return ""
}
