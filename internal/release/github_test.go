package release

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

const releasesFixture = `[
  {"tag_name": "v0.2.0-rc1", "draft": false, "prerelease": true,
   "assets": [{"name": "rari-x86_64-unknown-linux-musl.tar.gz", "browser_download_url": "https://example.com/rc1.tar.gz"}]},
  {"tag_name": "v0.1.9", "draft": true, "prerelease": false,
   "assets": [{"name": "rari-x86_64-unknown-linux-musl.tar.gz", "browser_download_url": "https://example.com/draft.tar.gz"}]},
  {"tag_name": "v0.1.8", "draft": false, "prerelease": false, "assets": []},
  {"tag_name": "v0.1.7", "draft": false, "prerelease": false,
   "assets": [
     {"name": "rari-x86_64-unknown-linux-musl.tar.gz", "browser_download_url": "https://example.com/v0.1.7/linux.tar.gz"},
     {"name": "rari-x86_64-pc-windows-msvc.zip", "browser_download_url": "https://example.com/v0.1.7/windows.zip"}
   ]}
]`

func newReleaseServer(t *testing.T, status int, body string) (*httptest.Server, *http.Request) {
	t.Helper()

	var captured http.Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = *r
		w.WriteHeader(status)
		if _, err := w.Write([]byte(body)); err != nil {
			t.Errorf("failed to write response: %v", err)
		}
	}))
	t.Cleanup(server.Close)

	return server, &captured
}

func TestGitHubIndexLatestRelease(t *testing.T) {
	tests := []struct {
		name        string
		opts        Options
		wantVersion string
		wantAssets  int
	}{
		{
			name:        "stable_with_assets",
			opts:        Options{RequireAssets: true, PreRelease: false},
			wantVersion: "v0.1.7",
			wantAssets:  2,
		},
		{
			name:        "stable_assets_optional",
			opts:        Options{RequireAssets: false, PreRelease: false},
			wantVersion: "v0.1.8",
			wantAssets:  0,
		},
		{
			name:        "prerelease_allowed",
			opts:        Options{RequireAssets: true, PreRelease: true},
			wantVersion: "v0.2.0-rc1",
			wantAssets:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, req := newReleaseServer(t, http.StatusOK, releasesFixture)
			index := NewGitHubIndex(server.URL)

			rel, err := index.LatestRelease(context.Background(), "mdn/rari", tt.opts)
			if err != nil {
				t.Fatalf("LatestRelease() error = %v", err)
			}

			if rel.Version != tt.wantVersion {
				t.Errorf("Version = %q, want %q", rel.Version, tt.wantVersion)
			}
			if len(rel.Assets) != tt.wantAssets {
				t.Errorf("len(Assets) = %d, want %d", len(rel.Assets), tt.wantAssets)
			}
			if req.URL.Path != "/repos/mdn/rari/releases" {
				t.Errorf("request path = %q", req.URL.Path)
			}
			if req.Header.Get("Authorization") != "" {
				t.Error("no Authorization header expected without token")
			}
		})
	}
}

func TestGitHubIndexFind(t *testing.T) {
	server, _ := newReleaseServer(t, http.StatusOK, releasesFixture)
	rel, err := NewGitHubIndex(server.URL).LatestRelease(context.Background(), "mdn/rari", Options{RequireAssets: true})
	if err != nil {
		t.Fatalf("LatestRelease() error = %v", err)
	}

	a, ok := rel.Find("rari-x86_64-pc-windows-msvc.zip")
	if !ok {
		t.Fatal("expected windows asset to be found")
	}
	if a.DownloadURL != "https://example.com/v0.1.7/windows.zip" {
		t.Errorf("DownloadURL = %q", a.DownloadURL)
	}

	if _, ok := rel.Find("rari-aarch64-apple-darwin.tar.gz"); ok {
		t.Error("unexpected match for missing asset")
	}
}

func TestGitHubIndexWithToken(t *testing.T) {
	server, req := newReleaseServer(t, http.StatusOK, releasesFixture)
	index := NewGitHubIndex(server.URL).WithToken("secret")

	if _, err := index.LatestRelease(context.Background(), "mdn/rari", Options{}); err != nil {
		t.Fatalf("LatestRelease() error = %v", err)
	}
	if got := req.Header.Get("Authorization"); got != "Bearer secret" {
		t.Errorf("Authorization = %q, want %q", got, "Bearer secret")
	}
	if got := req.Header.Get("User-Agent"); got != DefaultUserAgent {
		t.Errorf("User-Agent = %q, want %q", got, DefaultUserAgent)
	}
}

func TestGitHubIndexErrors(t *testing.T) {
	tests := []struct {
		name    string
		repo    string
		status  int
		body    string
		wantErr error
	}{
		{name: "server_error", repo: "mdn/rari", status: http.StatusInternalServerError, body: "oops"},
		{name: "rate_limited", repo: "mdn/rari", status: http.StatusForbidden, body: "{}"},
		{name: "bad_json", repo: "mdn/rari", status: http.StatusOK, body: "{not json"},
		{name: "no_matching_release", repo: "mdn/rari", status: http.StatusOK, body: `[{"tag_name":"v1","prerelease":true,"assets":[]}]`, wantErr: ErrNoRelease},
		{name: "invalid_repo", repo: "rari", status: http.StatusOK, body: "[]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, _ := newReleaseServer(t, tt.status, tt.body)

			_, err := NewGitHubIndex(server.URL).LatestRelease(context.Background(), tt.repo, Options{RequireAssets: true})
			if err == nil {
				t.Fatal("expected error but got none")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestGitHubIndexContextCancelled(t *testing.T) {
	server, _ := newReleaseServer(t, http.StatusOK, releasesFixture)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewGitHubIndex(server.URL).LatestRelease(ctx, "mdn/rari", Options{}); err == nil {
		t.Error("expected error for cancelled context")
	}
}
