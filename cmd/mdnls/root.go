package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ZebulonRouseFrantzich/mdnls/internal/logging"
	"github.com/ZebulonRouseFrantzich/mdnls/internal/output"
	"github.com/ZebulonRouseFrantzich/mdnls/internal/shell"
	"github.com/spf13/cobra"
)

// Environment variables read by the CLI
const (
	EnvDataDir   = "MDNLS_DATA_DIR"
	EnvGitHubAPI = "MDNLS_GITHUB_API"
	EnvToken     = "GITHUB_TOKEN"
)

// app holds global flags and the streams commands write to.
type app struct {
	stdout io.Writer
	stderr io.Writer

	dataDir   string
	format    string
	verbose   bool
	logJSON   bool
	keyring   string
	githubAPI string

	// shellRunner replaces login-shell capture in tests
	shellRunner shell.Runner
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{stdout: stdout, stderr: stderr}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "mdnls",
		Short: "Locate, install and launch the rari language server",
		Long: `mdnls finds the rari executable for an MDN content project.

It honours per-project settings (.mdnls.toml, .mdnls.yaml or .mdnls.lua),
then the project's PATH, then a previously downloaded copy, and finally
downloads the latest release from GitHub.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.dataDir, "data-dir", os.Getenv(EnvDataDir), "Directory holding downloaded releases (env "+EnvDataDir+")")
	flags.StringVarP(&a.format, "output", "o", "text", "Output format: text, json, yaml")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Verbose output")
	flags.BoolVar(&a.logJSON, "log-json", false, "Write logs as JSON")
	flags.StringVar(&a.keyring, "keyring", "", "Armored OpenPGP public keyring for release signatures")
	flags.StringVar(&a.githubAPI, "github-api", os.Getenv(EnvGitHubAPI), "GitHub API base URL (env "+EnvGitHubAPI+")")

	_ = root.RegisterFlagCompletionFunc("output", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return output.Formats, cobra.ShellCompDirectiveNoFileComp
	})

	root.AddCommand(a.resolveCmd())
	root.AddCommand(a.commandCmd())
	root.AddCommand(a.cleanCmd())

	return root
}

func (a *app) logger() logging.Logger {
	return logging.New(logging.Config{Verbose: a.verbose, JSON: a.logJSON, Output: a.stderr})
}

func (a *app) writer() (*output.Writer, error) {
	format, err := output.ParseFormat(a.format)
	if err != nil {
		return nil, err
	}
	return output.NewWriter(a.stdout, format), nil
}

// workDir returns --data-dir, or <user cache dir>/mdnls.
func (a *app) workDir() (string, error) {
	if a.dataDir != "" {
		return filepath.Abs(a.dataDir)
	}
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("get cache directory: %w", err)
	}
	return filepath.Join(cacheDir, "mdnls"), nil
}

// projectRoot returns the absolute project directory (default: cwd).
func projectRoot(dir string) (string, error) {
	if dir == "" {
		dir = "."
	}
	root, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve project directory: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return "", fmt.Errorf("project directory: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("project directory %s is not a directory", root)
	}
	return root, nil
}
