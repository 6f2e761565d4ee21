package platform

import (
	"context"
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v4/host"
)

// RealDetector implements Detector using actual platform detection.
type RealDetector struct {
	goos       string
	goarch     string
	kernelArch func(ctx context.Context) (string, error)
}

// NewDetector creates a new platform detector.
func NewDetector() Detector {
	return &RealDetector{
		goos:       runtime.GOOS,
		goarch:     runtime.GOARCH,
		kernelArch: hostKernelArch,
	}
}

// hostKernelArch reads the kernel architecture. gopsutil's KernelArch takes
// no context, so cancellation is only checked before the call.
func hostKernelArch(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return host.KernelArch()
}

// Detect returns the platform key for the running host.
//
// The kernel architecture from gopsutil wins over runtime.GOARCH so that a
// 32-bit or emulated process still selects the host's native asset. If the
// kernel architecture cannot be read or is not recognized, GOARCH is used.
func (d *RealDetector) Detect(ctx context.Context) (Key, error) {
	osName, err := normalizeOS(d.goos)
	if err != nil {
		return Key{}, fmt.Errorf("platform detection failed: %w", err)
	}

	if d.kernelArch != nil {
		raw, err := d.kernelArch(ctx)
		if err == nil {
			if arch, err := normalizeArch(raw); err == nil {
				return Key{OS: osName, Arch: arch}, nil
			}
		} else if ctx.Err() != nil {
			return Key{}, fmt.Errorf("platform detection cancelled: %w", ctx.Err())
		}
	}

	arch, err := normalizeArch(d.goarch)
	if err != nil {
		return Key{}, fmt.Errorf("platform detection failed: %w", err)
	}

	return Key{OS: osName, Arch: arch}, nil
}
