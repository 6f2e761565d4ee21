// Package platform derives the (operating system, architecture) key that
// selects which release asset to fetch.
//
// The key is detected once per process from runtime.GOOS and the kernel
// architecture reported by gopsutil, and is exposed to Lua settings files
// as a read-only `platform` table.
package platform

import "context"

// OS is an operating system family as named by release assets.
type OS string

const (
	OSMac     OS = "mac"
	OSLinux   OS = "linux"
	OSWindows OS = "windows"
)

// Arch is a CPU architecture.
type Arch string

const (
	ArchAarch64 Arch = "aarch64"
	ArchX86     Arch = "x86"
	ArchX8664   Arch = "x86_64"
)

// Key identifies the platform a binary must be fetched for.
type Key struct {
	OS   OS
	Arch Arch
}

// String returns "<arch>-<os>", e.g. "aarch64-mac".
func (k Key) String() string {
	return string(k.Arch) + "-" + string(k.OS)
}

// IsWindows returns true if the key targets Windows.
func (k Key) IsWindows() bool {
	return k.OS == OSWindows
}

// IsUnix returns true for mac and linux.
func (k Key) IsUnix() bool {
	return k.OS == OSMac || k.OS == OSLinux
}

// Detector is the interface for platform detection.
type Detector interface {
	Detect(ctx context.Context) (Key, error)
}

// Static returns a Detector that always reports key.
func Static(key Key) Detector {
	return staticDetector{key: key}
}

type staticDetector struct {
	key Key
}

func (s staticDetector) Detect(ctx context.Context) (Key, error) {
	return s.key, nil
}
