package resolver

import (
	"errors"
	"fmt"

	"github.com/ZebulonRouseFrantzich/mdnls/internal/asset"
	"github.com/ZebulonRouseFrantzich/mdnls/internal/binary"
	"github.com/ZebulonRouseFrantzich/mdnls/internal/logging"
	"github.com/ZebulonRouseFrantzich/mdnls/internal/platform"
	"github.com/spf13/afero"
)

// Defaults for Config.
const (
	DefaultServerID   = "mdn-lsp"
	DefaultRepository = "mdn/rari"
)

// Config holds a Resolver's collaborators and settings.
type Config struct {
	// ServerID keys the settings lookup and status reports (default: mdn-lsp)
	ServerID string
	// Repository is the release repository (default: mdn/rari)
	Repository string
	// Selector maps platforms to assets (default: rari)
	Selector asset.Selector
	// Platform is the host platform (required)
	Platform platform.Key
	// WorkDir holds downloaded versions (required)
	WorkDir string

	// Fs is used for existence checks and cleanup (default: OS filesystem)
	Fs afero.Fs

	Settings    SettingsSource      // optional
	Path        PathSearcher        // optional
	Environment EnvironmentCapturer // optional
	Index       ReleaseIndex        // required
	Fetcher     ArchiveFetcher      // required
	Marker      ExecutableMarker    // default: binary.MarkExecutable
	Status      StatusReporter      // optional
	Lock        InstallLock         // optional

	// State caches the fetched path (default: a fresh state)
	State *BootstrapState
	// Logger receives diagnostics (default: no-op)
	Logger logging.Logger
}

// Validate reports missing required fields.
func (c *Config) Validate() error {
	var errs []error
	if c.WorkDir == "" {
		errs = append(errs, errors.New("work dir is required"))
	}
	if c.Platform.OS == "" || c.Platform.Arch == "" {
		errs = append(errs, errors.New("platform is required"))
	}
	if c.Index == nil {
		errs = append(errs, errors.New("release index is required"))
	}
	if c.Fetcher == nil {
		errs = append(errs, errors.New("archive fetcher is required"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid resolver config: %w", errors.Join(errs...))
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.ServerID == "" {
		c.ServerID = DefaultServerID
	}
	if c.Repository == "" {
		c.Repository = DefaultRepository
	}
	if c.Selector.Tool == "" {
		c.Selector = asset.NewSelector("")
	}
	if c.Fs == nil {
		c.Fs = afero.NewOsFs()
	}
	if c.Marker == nil {
		c.Marker = MarkerFunc(binary.MarkExecutable)
	}
	if c.Status == nil {
		c.Status = nopReporter{}
	}
	if c.State == nil {
		c.State = NewBootstrapState()
	}
	c.Logger = logging.OrNop(c.Logger)
}
