// Package shell captures a project's login-shell environment and searches
// its PATH.
//
// Editors are often started from a desktop launcher, so the process
// environment lacks whatever the user's shell profile adds (version
// managers, PATH entries). Environment runs the user's shell as a login
// shell in the project root and records what it exports:
//
//	$SHELL -l -c "env -0"
//
// # Shell Detection
//
// Shell detection tries multiple methods:
//  1. $SHELL environment variable (most reliable)
//  2. Parent process executable, via gopsutil (fallback)
//  3. /bin/sh (last resort)
//
// # Example Usage
//
//	env := shell.NewEnvironment(shell.EnvironmentConfig{Logger: logger})
//
//	vars, err := env.ShellEnv(ctx, "/path/to/project")
//	path, ok := env.Which(ctx, "/path/to/project", "rari")
package shell
