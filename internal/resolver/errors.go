package resolver

import (
	"errors"
	"fmt"

	"github.com/ZebulonRouseFrantzich/mdnls/internal/asset"
	"github.com/ZebulonRouseFrantzich/mdnls/internal/binary"
)

// Failure kinds. Every error returned by Resolve matches exactly one.
var (
	ErrUnsupportedPlatform = asset.ErrUnsupportedPlatform
	ErrAssetNotFound       = errors.New("asset not found")
	ErrFetch               = errors.New("release index query failed")
	ErrDownload            = binary.ErrDownload
	ErrVerify              = binary.ErrVerify
	ErrExtract             = binary.ErrExtract
	ErrPermission          = errors.New("cannot mark executable")
	ErrDirectoryList       = errors.New("cannot list working directory")
)

// Step names for StepError.
const (
	StepQueryIndex  = "query latest release"
	StepSelectAsset = "select release asset"
	StepPrepare     = "prepare working directory"
	StepDownload    = "download release"
	StepMark        = "mark executable"
	StepCleanup     = "clean up working directory"
)

// StepError reports which fetch step failed and the failure kind.
type StepError struct {
	Step string
	Kind error
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *StepError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

func stepError(step string, kind, err error) *StepError {
	return &StepError{Step: step, Kind: kind, Err: err}
}

// fetchKind classifies an ArchiveFetcher error.
func fetchKind(err error) error {
	switch {
	case errors.Is(err, ErrExtract):
		return ErrExtract
	case errors.Is(err, ErrVerify):
		return ErrVerify
	default:
		return ErrDownload
	}
}
