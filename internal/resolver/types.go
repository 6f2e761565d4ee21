package resolver

import (
	"context"
	"fmt"
	"strings"

	"github.com/ZebulonRouseFrantzich/mdnls/internal/binary"
	"github.com/ZebulonRouseFrantzich/mdnls/internal/release"
	"github.com/ZebulonRouseFrantzich/mdnls/internal/settings"
	"github.com/ZebulonRouseFrantzich/mdnls/internal/shell"
)

// EnvVar is one environment variable attached to a ResolvedBinary.
type EnvVar = shell.EnvVar

// Project identifies the project a language server is started for.
type Project struct {
	Root string
}

// ResolvedBinary is the executable to launch. It is built fresh on every
// call; only Path is ever cached.
type ResolvedBinary struct {
	Path string   `json:"path" yaml:"path"`
	Args []string `json:"args" yaml:"args"`
	Env  []EnvVar `json:"env" yaml:"env"`
	// Source names the tier that produced Path
	Source Source `json:"source" yaml:"source"`
}

func (b *ResolvedBinary) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "path:   %s\n", b.Path)
	fmt.Fprintf(&sb, "source: %s\n", b.Source)
	fmt.Fprintf(&sb, "args:   %s\n", strings.Join(b.Args, " "))
	fmt.Fprintf(&sb, "env:    %d variables", len(b.Env))
	return sb.String()
}

// Source identifies a resolution tier.
type Source string

const (
	SourceSettings Source = "settings"
	SourcePath     Source = "path"
	SourceCache    Source = "cache"
	SourceInstall  Source = "install"
)

// Status is the installation status shown to the user.
type Status string

const (
	StatusNone        Status = "none"
	StatusChecking    Status = "checking"
	StatusDownloading Status = "downloading"
	StatusFailed      Status = "failed"
)

// SettingsSource supplies per-project language-server settings. A nil
// result means nothing is configured.
type SettingsSource interface {
	LSPSettings(ctx context.Context, root, serverID string) (*settings.LSP, error)
}

// PathSearcher finds an executable on the project's search path.
type PathSearcher interface {
	Which(ctx context.Context, root, name string) (string, bool)
}

// EnvironmentCapturer returns the project's shell environment.
type EnvironmentCapturer interface {
	ShellEnv(ctx context.Context, root string) ([]EnvVar, error)
}

// ReleaseIndex finds the newest qualifying release.
type ReleaseIndex interface {
	LatestRelease(ctx context.Context, repo string, opts release.Options) (*release.Release, error)
}

// ArchiveFetcher downloads an archive and extracts it into req.DestDir.
type ArchiveFetcher interface {
	Fetch(ctx context.Context, req binary.FetchRequest) error
}

// ExecutableMarker makes a file executable.
type ExecutableMarker interface {
	MakeExecutable(path string) error
}

// MarkerFunc adapts a function to ExecutableMarker.
type MarkerFunc func(path string) error

func (f MarkerFunc) MakeExecutable(path string) error {
	return f(path)
}

// InstallLock serializes installs between processes sharing a working
// directory. The returned function releases the lock.
type InstallLock interface {
	Acquire(ctx context.Context) (func() error, error)
}

// StatusReporter receives installation status changes.
type StatusReporter interface {
	SetStatus(serverID string, status Status, err error)
}

type nopReporter struct{}

func (nopReporter) SetStatus(string, Status, error) {}
