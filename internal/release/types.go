// Package release queries a remote release index for the newest published
// release of a tool and its downloadable assets.
package release

import "context"

// Asset is a downloadable file attached to a release.
type Asset struct {
	Name        string
	DownloadURL string
}

// Release is a published version and its assets.
type Release struct {
	Version string
	Assets  []Asset
}

// Find returns the asset with exactly the given name.
func (r *Release) Find(name string) (Asset, bool) {
	for _, a := range r.Assets {
		if a.Name == name {
			return a, true
		}
	}
	return Asset{}, false
}

// Options filters which releases qualify as "latest".
type Options struct {
	// RequireAssets skips releases with no attached assets
	RequireAssets bool
	// PreRelease allows pre-releases to be returned
	PreRelease bool
}

// Index is a source of releases.
type Index interface {
	LatestRelease(ctx context.Context, repo string, opts Options) (*Release, error)
}
