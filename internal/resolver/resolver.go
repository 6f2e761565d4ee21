package resolver

import (
	"context"
	"path/filepath"

	"github.com/ZebulonRouseFrantzich/mdnls/internal/logging"
	"golang.org/x/sync/singleflight"
)

// Resolver finds or installs the language-server executable.
type Resolver struct {
	cfg    Config
	logger logging.Logger
	group  singleflight.Group
}

// New validates cfg and returns a Resolver.
func New(cfg Config) (*Resolver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &Resolver{cfg: cfg, logger: cfg.Logger}, nil
}

// State returns the resolver's bootstrap state.
func (r *Resolver) State() *BootstrapState {
	return r.cfg.State
}

// Resolve returns the executable to launch for project.
func (r *Resolver) Resolve(ctx context.Context, project Project) (*ResolvedBinary, error) {
	path, args, source, err := r.resolvePath(ctx, project)
	if err != nil {
		return nil, err
	}

	return &ResolvedBinary{
		Path:   path,
		Args:   args,
		Env:    r.environment(ctx, project),
		Source: source,
	}, nil
}

func (r *Resolver) resolvePath(ctx context.Context, project Project) (string, []string, Source, error) {
	var args []string

	// Tier 1: settings override
	if r.cfg.Settings != nil {
		lsp, err := r.cfg.Settings.LSPSettings(ctx, project.Root, r.cfg.ServerID)
		switch {
		case err != nil:
			r.logger.Warn("ignoring unreadable settings", "root", project.Root, "error", err)
		case lsp != nil && lsp.Binary != nil:
			args = append([]string(nil), lsp.Binary.Arguments...)
			if lsp.Binary.Path != "" {
				r.logger.Debug("using configured binary", "path", lsp.Binary.Path)
				return lsp.Binary.Path, args, SourceSettings, nil
			}
		}
	}

	// Tier 2: PATH
	if r.cfg.Path != nil {
		if path, ok := r.cfg.Path.Which(ctx, project.Root, r.cfg.Selector.Tool); ok {
			r.logger.Debug("using binary from PATH", "path", path)
			return path, args, SourcePath, nil
		}
	}

	// Tier 3: cached fetch
	if path, ok := r.cfg.State.Path(); ok && r.isRegularFile(path) {
		r.logger.Debug("using cached binary", "path", path)
		return path, args, SourceCache, nil
	}

	// Tier 4: network fetch
	path, err := r.fetchShared(ctx)
	if err != nil {
		return "", nil, "", err
	}
	return path, args, SourceInstall, nil
}

// environment attaches the shell environment on mac and linux. Capture
// failures leave the environment empty.
func (r *Resolver) environment(ctx context.Context, project Project) []EnvVar {
	if !r.cfg.Platform.IsUnix() || r.cfg.Environment == nil {
		return nil
	}
	env, err := r.cfg.Environment.ShellEnv(ctx, project.Root)
	if err != nil {
		r.logger.Warn("shell environment unavailable", "root", project.Root, "error", err)
		return nil
	}
	return env
}

func (r *Resolver) isRegularFile(path string) bool {
	info, err := r.cfg.Fs.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// executablePath returns the absolute install path for version.
func (r *Resolver) executablePath(version string) string {
	rel := r.cfg.Selector.ExecutablePath(r.cfg.Platform, version)
	return filepath.Join(r.cfg.WorkDir, filepath.FromSlash(rel))
}
