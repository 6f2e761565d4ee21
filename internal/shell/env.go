package shell

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"sync"

	"github.com/ZebulonRouseFrantzich/mdnls/internal/logging"
	"github.com/spf13/afero"
	"golang.org/x/sync/singleflight"
)

// Runner runs shellPath as a login shell in dir and returns the
// NUL-separated output of `env -0`.
type Runner func(ctx context.Context, shellPath, dir string) ([]byte, error)

// EnvironmentConfig configures an Environment. Zero values use the host.
type EnvironmentConfig struct {
	// Fs is used by Which to inspect PATH entries
	Fs afero.Fs
	// Logger receives capture diagnostics
	Logger logging.Logger
	// Runner captures the environment (default: exec the shell)
	Runner Runner
	// ShellPath skips shell detection when set
	ShellPath string
	// GOOS overrides runtime.GOOS
	GOOS string
	// Getenv overrides os.Getenv for the process fallback
	Getenv func(string) string
}

// Environment captures and caches login-shell environments per project root.
type Environment struct {
	fs        afero.Fs
	logger    logging.Logger
	run       Runner
	shellPath string
	goos      string
	getenv    func(string) string

	group singleflight.Group
	mu    sync.Mutex
	cache map[string][]EnvVar
}

// NewEnvironment creates an Environment.
func NewEnvironment(cfg EnvironmentConfig) *Environment {
	e := &Environment{
		fs:        cfg.Fs,
		logger:    logging.OrNop(cfg.Logger),
		run:       cfg.Runner,
		shellPath: cfg.ShellPath,
		goos:      cfg.GOOS,
		getenv:    cfg.Getenv,
		cache:     make(map[string][]EnvVar),
	}
	if e.fs == nil {
		e.fs = afero.NewOsFs()
	}
	if e.run == nil {
		e.run = execLoginShell
	}
	if e.goos == "" {
		e.goos = runtime.GOOS
	}
	if e.getenv == nil {
		e.getenv = os.Getenv
	}
	return e
}

// ShellEnv returns the login-shell environment for root. Successful
// captures are cached; failures are not.
func (e *Environment) ShellEnv(ctx context.Context, root string) ([]EnvVar, error) {
	e.mu.Lock()
	vars, ok := e.cache[root]
	e.mu.Unlock()
	if ok {
		return cloneVars(vars), nil
	}

	v, err, _ := e.group.Do(root, func() (interface{}, error) {
		shellPath := e.shellPath
		if shellPath == "" {
			detected := DetectShell(ctx)
			shellPath = detected.ShellPath
			e.logger.Debug("detected shell", "shell", detected.Shell, "method", detected.Method)
		} else if err := ValidateShell(parseShellFromPath(shellPath)); err != nil {
			e.logger.Warn("capturing environment with unrecognized shell", "error", err)
		}

		out, err := e.run(ctx, shellPath, root)
		if err != nil {
			return nil, &CaptureError{Shell: shellPath, Dir: root, Cause: err}
		}

		vars := ParseEnv(out)
		e.mu.Lock()
		e.cache[root] = vars
		e.mu.Unlock()
		e.logger.Debug("captured shell environment", "root", root, "vars", len(vars))
		return vars, nil
	})
	if err != nil {
		return nil, err
	}
	return cloneVars(v.([]EnvVar)), nil
}

// ParseEnv splits `env -0` output into variables, preserving order.
// Anything a profile printed before the first record is dropped.
func ParseEnv(out []byte) []EnvVar {
	var vars []EnvVar
	for _, record := range bytes.Split(out, []byte{0}) {
		entry := string(record)
		eq := strings.IndexByte(entry, '=')
		if eq <= 0 {
			continue
		}
		name := entry[:eq]
		if nl := strings.LastIndexByte(name, '\n'); nl >= 0 {
			name = name[nl+1:]
		}
		if name == "" {
			continue
		}
		vars = append(vars, EnvVar{Name: name, Value: entry[eq+1:]})
	}
	return vars
}

// Lookup returns the last value of name in vars.
func Lookup(vars []EnvVar, name string) (string, bool) {
	for i := len(vars) - 1; i >= 0; i-- {
		if vars[i].Name == name {
			return vars[i].Value, true
		}
	}
	return "", false
}

func cloneVars(vars []EnvVar) []EnvVar {
	if vars == nil {
		return nil
	}
	out := make([]EnvVar, len(vars))
	copy(out, vars)
	return out
}

func execLoginShell(ctx context.Context, shellPath, dir string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, shellPath, "-l", "-c", "env -0")
	cmd.Dir = dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, &execError{err: err, stderr: msg}
		}
		return nil, err
	}
	return out, nil
}

type execError struct {
	err    error
	stderr string
}

func (e *execError) Error() string {
	return e.err.Error() + ": " + e.stderr
}

func (e *execError) Unwrap() error {
	return e.err
}
