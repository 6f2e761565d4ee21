package release

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the public GitHub API endpoint
	DefaultBaseURL = "https://api.github.com"
	// DefaultTimeout bounds a single release listing request
	DefaultTimeout = 5 * time.Minute
	// DefaultUserAgent is the User-Agent header sent with requests
	DefaultUserAgent = "mdnls/1.0"
)

// ErrNoRelease is returned when no release matches the options.
var ErrNoRelease = errors.New("no matching release")

// GitHubIndex lists releases via the GitHub REST API.
type GitHubIndex struct {
	client    *http.Client
	baseURL   string
	token     string
	userAgent string
}

// githubRelease is the subset of the GitHub release payload we read.
type githubRelease struct {
	TagName    string `json:"tag_name"`
	Draft      bool   `json:"draft"`
	Prerelease bool   `json:"prerelease"`
	Assets     []struct {
		Name               string `json:"name"`
		BrowserDownloadURL string `json:"browser_download_url"`
	} `json:"assets"`
}

// NewGitHubIndex creates an index against baseURL (DefaultBaseURL when empty).
func NewGitHubIndex(baseURL string) *GitHubIndex {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &GitHubIndex{
		client:    &http.Client{Timeout: DefaultTimeout},
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: DefaultUserAgent,
	}
}

// WithToken sets an optional GitHub token for authentication
func (g *GitHubIndex) WithToken(token string) *GitHubIndex {
	g.token = token
	return g
}

// LatestRelease returns the newest release of repo ("owner/name") that
// satisfies opts. Releases are listed newest first; drafts never qualify.
func (g *GitHubIndex) LatestRelease(ctx context.Context, repo string, opts Options) (*Release, error) {
	if strings.Count(repo, "/") != 1 {
		return nil, fmt.Errorf("invalid repository %q: want owner/name", repo)
	}

	releases, err := g.listReleases(ctx, repo)
	if err != nil {
		return nil, err
	}

	for _, r := range releases {
		if r.Draft {
			continue
		}
		if r.Prerelease && !opts.PreRelease {
			continue
		}
		if opts.RequireAssets && len(r.Assets) == 0 {
			continue
		}

		rel := &Release{Version: r.TagName}
		for _, a := range r.Assets {
			rel.Assets = append(rel.Assets, Asset{Name: a.Name, DownloadURL: a.BrowserDownloadURL})
		}
		return rel, nil
	}

	return nil, fmt.Errorf("%w in %s", ErrNoRelease, repo)
}

// listReleases fetches the first page of releases for repo.
func (g *GitHubIndex) listReleases(ctx context.Context, repo string) ([]githubRelease, error) {
	url := fmt.Sprintf("%s/repos/%s/releases?per_page=30", g.baseURL, repo)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", g.userAgent)
	if g.token != "" {
		req.Header.Set("Authorization", "Bearer "+g.token)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GitHub API returned status %d", resp.StatusCode)
	}

	var releases []githubRelease
	if err := json.NewDecoder(resp.Body).Decode(&releases); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return releases, nil
}
