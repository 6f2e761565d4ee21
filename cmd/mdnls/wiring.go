package main

import (
	"context"
	"fmt"
	"os"

	"github.com/ZebulonRouseFrantzich/mdnls/internal/binary"
	"github.com/ZebulonRouseFrantzich/mdnls/internal/lock"
	"github.com/ZebulonRouseFrantzich/mdnls/internal/logging"
	"github.com/ZebulonRouseFrantzich/mdnls/internal/platform"
	"github.com/ZebulonRouseFrantzich/mdnls/internal/release"
	"github.com/ZebulonRouseFrantzich/mdnls/internal/resolver"
	"github.com/ZebulonRouseFrantzich/mdnls/internal/settings"
	"github.com/ZebulonRouseFrantzich/mdnls/internal/shell"
)

// newResolver wires the production collaborators.
func (a *app) newResolver(ctx context.Context, logger logging.Logger) (*resolver.Resolver, error) {
	workDir, err := a.workDir()
	if err != nil {
		return nil, err
	}

	detector := platform.NewDetector()
	key, err := detector.Detect(ctx)
	if err != nil {
		return nil, fmt.Errorf("detect platform: %w", err)
	}
	logger.Debug("detected platform", "platform", key.String(), "work_dir", workDir)

	env := shell.NewEnvironment(shell.EnvironmentConfig{
		Logger: logger,
		Runner: a.shellRunner,
	})

	return resolver.New(resolver.Config{
		Platform:    key,
		WorkDir:     workDir,
		Settings:    settings.NewLoader(nil, platform.Static(key)),
		Path:        env,
		Environment: env,
		Index:       release.NewGitHubIndex(a.githubAPI).WithToken(os.Getenv(EnvToken)),
		Fetcher: binary.NewFetcher(binary.FetcherConfig{
			KeyringPath: a.keyring,
			Logger:      logger,
		}),
		Status: &statusLogger{logger: logger},
		Lock:   lock.New(workDir + ".lock"),
		Logger: logger,
	})
}

// statusLogger reports installation status through the logger.
type statusLogger struct {
	logger logging.Logger
}

func (s *statusLogger) SetStatus(serverID string, status resolver.Status, err error) {
	switch status {
	case resolver.StatusFailed:
		s.logger.Warn("installation failed", "server", serverID, "error", err)
	case resolver.StatusNone:
		s.logger.Debug("installation status cleared", "server", serverID)
	default:
		s.logger.Info("installation status", "server", serverID, "status", string(status))
	}
}
