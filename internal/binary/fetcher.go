package binary

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ZebulonRouseFrantzich/mdnls/internal/logging"
)

// FetcherConfig holds configuration for the fetcher
type FetcherConfig struct {
	// KeyringPath is an OpenPGP public keyring used to check detached
	// signatures. Empty disables signature checks.
	KeyringPath string
	// Logger receives progress messages
	Logger logging.Logger
}

// Fetcher orchestrates archive download, verification and extraction
type Fetcher struct {
	downloader *Downloader
	verifier   *Verifier
	extractor  *Extractor
	logger     logging.Logger
}

// NewFetcher creates a new fetcher
func NewFetcher(config FetcherConfig) *Fetcher {
	return &Fetcher{
		downloader: NewDownloader(),
		verifier:   NewVerifier(config.KeyringPath),
		extractor:  NewExtractor(),
		logger:     logging.OrNop(config.Logger),
	}
}

// Fetch downloads req.URL and installs its contents at req.DestDir.
//
// All work happens in "<DestDir>.partial"; DestDir only appears once the
// archive has been fully extracted. Errors match ErrDownload, ErrVerify or
// ErrExtract.
func (f *Fetcher) Fetch(ctx context.Context, req FetchRequest) error {
	if req.URL == "" || req.DestDir == "" {
		return fmt.Errorf("%w: url and destination are required", ErrDownload)
	}

	staging := req.DestDir + ".partial"
	if err := os.RemoveAll(staging); err != nil {
		return fmt.Errorf("%w: clear staging dir: %w", ErrDownload, err)
	}
	if err := os.MkdirAll(staging, 0755); err != nil {
		return fmt.Errorf("%w: create staging dir: %w", ErrDownload, err)
	}
	defer os.RemoveAll(staging)

	archivePath := filepath.Join(staging, "archive."+string(req.Kind))
	f.logger.Debug("downloading archive", "url", req.URL, "dest", archivePath)
	if err := f.downloader.DownloadToFile(ctx, req.URL, archivePath); err != nil {
		return fmt.Errorf("%w: %w", ErrDownload, err)
	}
	if !fileExists(archivePath) {
		return fmt.Errorf("%w: downloaded archive is empty", ErrDownload)
	}

	var signaturePath, checksumPath string
	if req.SignatureURL != "" {
		signaturePath = filepath.Join(staging, "archive.sig")
		if err := f.downloader.DownloadToFile(ctx, req.SignatureURL, signaturePath); err != nil {
			return fmt.Errorf("%w: download signature: %w", ErrVerify, err)
		}
	}
	if req.ChecksumURL != "" {
		checksumPath = filepath.Join(staging, "checksums.txt")
		if err := f.downloader.DownloadToFile(ctx, req.ChecksumURL, checksumPath); err != nil {
			return fmt.Errorf("%w: download checksums: %w", ErrVerify, err)
		}
	}

	method, err := f.verifier.Verify(archivePath, signaturePath, checksumPath, req.AssetName)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrVerify, err)
	}
	f.logger.Debug("archive verified", "method", method.String())

	contents := filepath.Join(staging, "contents")
	if err := f.extractor.Extract(req.Kind, archivePath, contents); err != nil {
		return fmt.Errorf("%w: %w", ErrExtract, err)
	}

	// A leftover DestDir without the executable would block the rename
	if err := os.RemoveAll(req.DestDir); err != nil {
		return fmt.Errorf("%w: replace %s: %w", ErrExtract, req.DestDir, err)
	}
	if err := os.Rename(contents, req.DestDir); err != nil {
		return fmt.Errorf("%w: move into place: %w", ErrExtract, err)
	}

	return nil
}
