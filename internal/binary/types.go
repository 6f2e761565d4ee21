package binary

import (
	"errors"

	"github.com/ZebulonRouseFrantzich/mdnls/internal/asset"
)

// Failure kinds reported by Fetch. Match with errors.Is.
var (
	ErrDownload = errors.New("download failed")
	ErrVerify   = errors.New("verification failed")
	ErrExtract  = errors.New("extraction failed")
)

// FetchRequest describes one archive to install.
type FetchRequest struct {
	// URL of the archive
	URL string
	// DestDir receives the extracted archive contents
	DestDir string
	// Kind selects the extractor
	Kind asset.ArchiveKind
	// AssetName is the published archive name, used to look up checksums
	AssetName string
	// ChecksumURL points at a SHA256 checksum asset (may be empty)
	ChecksumURL string
	// SignatureURL points at a detached OpenPGP signature (may be empty)
	SignatureURL string
}

// VerificationMethod indicates how an archive was verified
type VerificationMethod int

const (
	// VerificationNone indicates no verification material was published
	VerificationNone VerificationMethod = iota
	// VerificationGPG indicates OpenPGP signature verification was used
	VerificationGPG
	// VerificationSHA256 indicates SHA256 checksum verification was used
	VerificationSHA256
)

// String returns the string representation of the verification method
func (v VerificationMethod) String() string {
	switch v {
	case VerificationGPG:
		return "GPG"
	case VerificationSHA256:
		return "SHA256"
	case VerificationNone:
		return "None"
	default:
		return "Unknown"
	}
}
