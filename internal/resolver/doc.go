// Package resolver decides which rari executable a project's language
// server runs, fetching and installing one when nothing local qualifies.
//
// Resolution stops at the first tier that yields a path:
//
//  1. Settings override: a configured binary path is used verbatim.
//     Configured arguments are carried to later tiers when no path is set.
//  2. PATH lookup in the project's shell environment.
//  3. The path cached in BootstrapState by an earlier fetch, if it is still
//     a regular file.
//  4. Network fetch of the latest non-prerelease release: select the
//     platform asset, skip the download when the version directory already
//     holds the executable, otherwise download, extract, mark executable and
//     remove every other entry of the working directory.
//
// Failures in tiers 1 to 3 mean "did not apply". Only tier 4 failures are
// returned, as a *StepError whose kind matches one of the Err* sentinels.
//
// # Example Usage
//
//	r, err := resolver.New(resolver.Config{
//	    Platform: key,
//	    WorkDir:  "/home/me/.cache/mdnls",
//	    Index:    release.NewGitHubIndex(""),
//	    Fetcher:  binary.NewFetcher(binary.FetcherConfig{}),
//	})
//	bin, err := r.Resolve(ctx, resolver.Project{Root: "/path/to/content"})
package resolver
