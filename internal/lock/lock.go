// Package lock provides an exclusive lock file shared by every mdnls
// process that installs into the same data directory.
package lock

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/process"
)

const (
	// StaleLockThreshold is the maximum age of a lock before it's considered stale.
	StaleLockThreshold = 10 * time.Minute
	// DefaultPollInterval is how often a waiting Acquire retries.
	DefaultPollInterval = 200 * time.Millisecond
)

var (
	ErrLockExists = errors.New("install lock exists: another install may be in progress")
	ErrStaleLock  = errors.New("stale lock detected")
)

// FileLock is an O_EXCL lock file at a fixed path.
type FileLock struct {
	path         string
	pollInterval time.Duration
	staleAfter   time.Duration
	pidAlive     func(ctx context.Context, pid int32) (bool, error)
}

// New returns a lock at path. The file is created on Acquire.
func New(path string) *FileLock {
	return &FileLock{
		path:         path,
		pollInterval: DefaultPollInterval,
		staleAfter:   StaleLockThreshold,
		pidAlive:     process.PidExistsWithContext,
	}
}

// Path returns the lock file path.
func (l *FileLock) Path() string {
	return l.path
}

// Acquire waits until the lock is free or ctx is done. The returned
// function releases the lock.
func (l *FileLock) Acquire(ctx context.Context) (func() error, error) {
	for {
		held, err := l.TryAcquire(ctx)
		if err == nil {
			return held.Release, nil
		}
		if !errors.Is(err, ErrLockExists) {
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("wait for %s: %w", l.path, ctx.Err())
		case <-time.After(l.pollInterval):
		}
	}
}

// Held is an acquired lock.
type Held struct {
	path string
	file *os.File
}

// TryAcquire attempts to acquire the lock once.
// Uses O_CREATE|O_EXCL for atomic lock creation.
func (l *FileLock) TryAcquire(ctx context.Context) (*Held, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0o600)
	if err != nil {
		if !os.IsExist(err) {
			return nil, fmt.Errorf("create lock file: %w", err)
		}
		// Lock exists - check if it's stale
		if stale, _ := l.isStale(ctx); !stale {
			return nil, ErrLockExists
		}
		// Remove stale lock and retry once
		_ = os.Remove(l.path)
		file, err = os.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0o600)
		if err != nil {
			return nil, ErrLockExists
		}
	}

	// Write lock metadata (PID and timestamp)
	lockData := fmt.Sprintf("pid=%d\ntimestamp=%s\n", os.Getpid(), time.Now().UTC().Format(time.RFC3339))
	if _, err := file.WriteString(lockData); err != nil {
		file.Close()
		os.Remove(l.path)
		return nil, fmt.Errorf("write lock data: %w", err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(l.path)
		return nil, fmt.Errorf("sync lock file: %w", err)
	}

	return &Held{path: l.path, file: file}, nil
}

// Release releases the lock. It is safe to call more than once.
func (h *Held) Release() error {
	if h.file != nil {
		h.file.Close()
		h.file = nil
	}

	if h.path != "" {
		path := h.path
		h.path = ""
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove lock file: %w", err)
		}
	}

	return nil
}

// isStale reports whether the lock is older than the threshold or its
// owner process is gone.
func (l *FileLock) isStale(ctx context.Context) (bool, error) {
	info, err := os.Stat(l.path)
	if err != nil {
		return false, err
	}
	if time.Since(info.ModTime()) > l.staleAfter {
		return true, nil
	}

	pid, err := readPID(l.path)
	if err != nil {
		return false, err
	}
	alive, err := l.pidAlive(ctx, pid)
	if err != nil {
		return false, err
	}
	return !alive, nil
}

// readPID parses the pid= line written by TryAcquire.
func readPID(path string) (int32, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		value, ok := strings.CutPrefix(scanner.Text(), "pid=")
		if !ok {
			continue
		}
		pid, err := strconv.ParseInt(value, 10, 32)
		if err != nil {
			return 0, fmt.Errorf("%w: bad pid %q", ErrStaleLock, value)
		}
		return int32(pid), nil
	}
	if err := scanner.Err(); err != nil {
		return 0, err
	}
	return 0, fmt.Errorf("%w: no pid recorded", ErrStaleLock)
}
