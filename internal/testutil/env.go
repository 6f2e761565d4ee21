// Package testutil provides utilities for testing mdnls in isolation.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// SetupTestEnv points every MDNLS_* variable at a fresh temp directory and
// clears credentials, so tests never touch the user's cache or reach
// GitHub by accident. It returns the data directory.
//
// The cleanup function is automatically handled by t.TempDir(),
// so callers don't need to manually clean up.
func SetupTestEnv(t *testing.T) string {
	t.Helper()

	tmpDir := t.TempDir()
	dataDir := filepath.Join(tmpDir, "data")

	t.Setenv("MDNLS_DATA_DIR", dataDir)
	t.Setenv("MDNLS_GITHUB_API", "")
	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("XDG_CACHE_HOME", filepath.Join(tmpDir, "cache"))

	for _, dir := range []string{dataDir, filepath.Join(tmpDir, "cache")} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			t.Fatalf("failed to create test directory %s: %v", dir, err)
		}
	}

	return dataDir
}
