package platform

import (
	"fmt"
	"strings"
)

// normalizeOS converts GOOS values to an OS.
func normalizeOS(goos string) (OS, error) {
	switch strings.ToLower(strings.TrimSpace(goos)) {
	case "darwin", "macos", "mac":
		return OSMac, nil
	case "linux":
		return OSLinux, nil
	case "windows":
		return OSWindows, nil
	default:
		return "", fmt.Errorf("unsupported operating system: %s", goos)
	}
}

// normalizeArch converts GOARCH or uname-style machine names to an Arch.
// x86 is recognized here so callers can report it as unsupported later.
func normalizeArch(arch string) (Arch, error) {
	switch strings.ToLower(strings.TrimSpace(arch)) {
	case "amd64", "x86_64", "x64":
		return ArchX8664, nil
	case "arm64", "aarch64":
		return ArchAarch64, nil
	case "386", "i386", "i686", "x86":
		return ArchX86, nil
	default:
		return "", fmt.Errorf("unsupported architecture: %s", arch)
	}
}
