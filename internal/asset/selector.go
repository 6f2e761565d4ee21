// Package asset maps a platform key to the release archive and the local
// executable path for a tool. Everything here is pure: no I/O.
package asset

import (
	"errors"
	"fmt"

	"github.com/ZebulonRouseFrantzich/mdnls/internal/platform"
)

// DefaultTool is the tool binary name used in archive and directory names.
const DefaultTool = "rari"

// ErrUnsupportedPlatform is returned for platforms with no published asset.
// It is permanent for the platform and not worth retrying.
var ErrUnsupportedPlatform = errors.New("unsupported platform")

// ArchiveKind is the container format of a release asset.
type ArchiveKind string

const (
	ArchiveTarGz ArchiveKind = "tar.gz"
	ArchiveZip   ArchiveKind = "zip"
)

// targets holds the target triple for every supported platform.
var targets = map[platform.Arch]map[platform.OS]string{
	platform.ArchAarch64: {
		platform.OSMac:     "aarch64-apple-darwin",
		platform.OSLinux:   "aarch64-unknown-linux-musl",
		platform.OSWindows: "aarch64-pc-windows-msvc",
	},
	platform.ArchX8664: {
		platform.OSMac:     "x86_64-apple-darwin",
		platform.OSLinux:   "x86_64-unknown-linux-musl",
		platform.OSWindows: "x86_64-pc-windows-msvc",
	},
}

// Selector names release assets and install paths for one tool.
type Selector struct {
	Tool string
}

// NewSelector returns a Selector for tool, or DefaultTool when tool is empty.
func NewSelector(tool string) Selector {
	if tool == "" {
		tool = DefaultTool
	}
	return Selector{Tool: tool}
}

// ArchiveKind returns tar.gz for mac and linux, zip for windows.
func (s Selector) ArchiveKind(key platform.Key) ArchiveKind {
	if key.IsWindows() {
		return ArchiveZip
	}
	return ArchiveTarGz
}

// AssetName returns the exact archive name published for key.
// x86 on any OS fails with ErrUnsupportedPlatform.
func (s Selector) AssetName(key platform.Key) (string, error) {
	if key.Arch == platform.ArchX86 {
		return "", fmt.Errorf("%w: x86 is not supported", ErrUnsupportedPlatform)
	}

	byOS, ok := targets[key.Arch]
	if !ok {
		return "", fmt.Errorf("%w: architecture %q", ErrUnsupportedPlatform, key.Arch)
	}
	triple, ok := byOS[key.OS]
	if !ok {
		return "", fmt.Errorf("%w: operating system %q", ErrUnsupportedPlatform, key.OS)
	}

	return fmt.Sprintf("%s-%s.%s", s.Tool, triple, s.ArchiveKind(key)), nil
}

// VersionDir returns the directory a release version is installed into.
func (s Selector) VersionDir(version string) string {
	return fmt.Sprintf("%s-%s", s.Tool, version)
}

// ExecutableName returns the executable file name for key.
func (s Selector) ExecutableName(key platform.Key) string {
	if key.IsWindows() {
		return s.Tool + ".exe"
	}
	return s.Tool
}

// ExecutablePath returns "<tool>-<version>/<tool>[.exe]", slash separated
// and relative to the working directory.
func (s Selector) ExecutablePath(key platform.Key, version string) string {
	return s.VersionDir(version) + "/" + s.ExecutableName(key)
}
