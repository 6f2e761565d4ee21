package resolver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/ZebulonRouseFrantzich/mdnls/internal/asset"
	"github.com/ZebulonRouseFrantzich/mdnls/internal/binary"
	"github.com/ZebulonRouseFrantzich/mdnls/internal/platform"
	"github.com/ZebulonRouseFrantzich/mdnls/internal/release"
	"github.com/ZebulonRouseFrantzich/mdnls/internal/settings"
	"github.com/spf13/afero"
)

const workDir = "/work"

var (
	linuxX64   = platform.Key{OS: platform.OSLinux, Arch: platform.ArchX8664}
	macArm     = platform.Key{OS: platform.OSMac, Arch: platform.ArchAarch64}
	windowsX64 = platform.Key{OS: platform.OSWindows, Arch: platform.ArchX8664}
	linuxX86   = platform.Key{OS: platform.OSLinux, Arch: platform.ArchX86}
)

type fakeSettings struct {
	lsp   *settings.LSP
	err   error
	calls atomic.Int32
}

func (f *fakeSettings) LSPSettings(ctx context.Context, root, serverID string) (*settings.LSP, error) {
	f.calls.Add(1)
	return f.lsp, f.err
}

type fakePath struct {
	path  string
	calls atomic.Int32
}

func (f *fakePath) Which(ctx context.Context, root, name string) (string, bool) {
	f.calls.Add(1)
	return f.path, f.path != ""
}

type fakeEnv struct {
	vars  []EnvVar
	err   error
	calls atomic.Int32
}

func (f *fakeEnv) ShellEnv(ctx context.Context, root string) ([]EnvVar, error) {
	f.calls.Add(1)
	return f.vars, f.err
}

type fakeIndex struct {
	rel   *release.Release
	err   error
	calls atomic.Int32
	opts  release.Options
	repo  string
}

func (f *fakeIndex) LatestRelease(ctx context.Context, repo string, opts release.Options) (*release.Release, error) {
	f.calls.Add(1)
	f.repo, f.opts = repo, opts
	return f.rel, f.err
}

// fakeFetcher "extracts" by writing the executable into DestDir.
type fakeFetcher struct {
	fs    afero.Fs
	err   error
	gate  chan struct{}
	calls atomic.Int32

	mu   sync.Mutex
	reqs []binary.FetchRequest
}

func (f *fakeFetcher) Fetch(ctx context.Context, req binary.FetchRequest) error {
	f.calls.Add(1)
	f.mu.Lock()
	f.reqs = append(f.reqs, req)
	f.mu.Unlock()
	if f.gate != nil {
		<-f.gate
	}
	if f.err != nil {
		return f.err
	}
	name := "rari"
	if req.Kind == asset.ArchiveZip {
		name = "rari.exe"
	}
	return afero.WriteFile(f.fs, filepath.Join(req.DestDir, name), []byte("#!/bin/sh\n"), 0o644)
}

func (f *fakeFetcher) lastRequest() binary.FetchRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reqs[len(f.reqs)-1]
}

type recordingStatus struct {
	mu       sync.Mutex
	statuses []Status
	lastErr  error
}

func (r *recordingStatus) SetStatus(serverID string, status Status, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, status)
	r.lastErr = err
}

func (r *recordingStatus) all() []Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Status(nil), r.statuses...)
}

// countingFs counts Stat calls and can fail selected operations.
type countingFs struct {
	afero.Fs
	stats     atomic.Int32
	failOpen  string
	openErr   error
	failRmAll string
}

func (c *countingFs) Stat(name string) (os.FileInfo, error) {
	c.stats.Add(1)
	return c.Fs.Stat(name)
}

func (c *countingFs) Open(name string) (afero.File, error) {
	if c.failOpen != "" && name == c.failOpen {
		return nil, c.openErr
	}
	return c.Fs.Open(name)
}

func (c *countingFs) RemoveAll(path string) error {
	if c.failRmAll != "" && filepath.Base(path) == c.failRmAll {
		return errors.New("device busy")
	}
	return c.Fs.RemoveAll(path)
}

// testRig bundles a resolver with its fakes.
type testRig struct {
	fs       *countingFs
	settings *fakeSettings
	path     *fakePath
	env      *fakeEnv
	index    *fakeIndex
	fetcher  *fakeFetcher
	marked   []string
	markErr  error
	status   *recordingStatus
	state    *BootstrapState
}

func newRig(version string, assets ...string) *testRig {
	mem := afero.NewMemMapFs()
	rel := &release.Release{Version: version}
	for _, name := range assets {
		rel.Assets = append(rel.Assets, release.Asset{Name: name, DownloadURL: "https://example.test/" + name})
	}
	return &testRig{
		fs:       &countingFs{Fs: mem},
		settings: &fakeSettings{},
		path:     &fakePath{},
		env:      &fakeEnv{},
		index:    &fakeIndex{rel: rel},
		fetcher:  &fakeFetcher{fs: mem},
		status:   &recordingStatus{},
		state:    NewBootstrapState(),
	}
}

func (rig *testRig) resolver(t *testing.T, key platform.Key) *Resolver {
	t.Helper()
	r, err := New(Config{
		Platform:    key,
		WorkDir:     workDir,
		Fs:          rig.fs,
		Settings:    rig.settings,
		Path:        rig.path,
		Environment: rig.env,
		Index:       rig.index,
		Fetcher:     rig.fetcher,
		Marker: MarkerFunc(func(path string) error {
			rig.marked = append(rig.marked, path)
			return rig.markErr
		}),
		Status: rig.status,
		State:  rig.state,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return r
}

func (rig *testRig) writeFile(t *testing.T, path string) {
	t.Helper()
	if err := afero.WriteFile(rig.fs.Fs, path, []byte("x"), 0o755); err != nil {
		t.Fatal(err)
	}
}

func (rig *testRig) fileExists(path string) bool {
	ok, err := afero.Exists(rig.fs.Fs, path)
	return err == nil && ok
}

func (rig *testRig) entries(t *testing.T) []string {
	t.Helper()
	infos, err := afero.ReadDir(rig.fs.Fs, workDir)
	if err != nil {
		return nil
	}
	var names []string
	for _, info := range infos {
		names = append(names, info.Name())
	}
	return names
}
