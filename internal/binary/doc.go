// Package binary downloads, verifies and unpacks release archives of the
// language-server tool.
//
// # Install Model
//
// A fetch never leaves a half-written version directory behind:
//   - The archive is downloaded with retries into a staging directory
//     next to the destination ("<dest>.partial")
//   - When a checksum asset is published, the archive's SHA256 must match
//   - When a keyring is configured and a detached signature is published,
//     the OpenPGP signature must verify
//   - The archive is extracted inside the staging directory and only then
//     renamed into place
//
// # Usage
//
//	fetcher := binary.NewFetcher(binary.FetcherConfig{KeyringPath: keyring})
//	err := fetcher.Fetch(ctx, binary.FetchRequest{
//	    URL:     asset.DownloadURL,
//	    DestDir: "/cache/mdnls/rari-v0.1.40",
//	    Kind:    asset.ArchiveTarGz,
//	})
//
// # Architecture
//
//   - Fetcher: orchestration of download, verify, extract, rename
//   - Downloader: HTTP download with retry logic
//   - Verifier: OpenPGP and SHA256 verification
//   - Extractor: archive extraction (tar.gz, zip)
package binary
