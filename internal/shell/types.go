package shell

import "fmt"

// ShellType represents a recognized shell
type ShellType string

const (
	// ShellBash represents the Bash shell
	ShellBash ShellType = "bash"
	// ShellZsh represents the Z shell
	ShellZsh ShellType = "zsh"
	// ShellFish represents the Fish shell
	ShellFish ShellType = "fish"
	// ShellSh represents a POSIX sh
	ShellSh ShellType = "sh"
	// ShellUnknown represents an unknown or unsupported shell
	ShellUnknown ShellType = "unknown"
)

// DefaultShellPath is used when no shell can be detected.
const DefaultShellPath = "/bin/sh"

// String returns the string representation of the shell type
func (s ShellType) String() string {
	return string(s)
}

// IsValid returns true if the shell type is supported
func (s ShellType) IsValid() bool {
	switch s {
	case ShellBash, ShellZsh, ShellFish, ShellSh:
		return true
	default:
		return false
	}
}

// DetectionResult contains the result of shell detection
type DetectionResult struct {
	// Shell is the detected shell type
	Shell ShellType
	// Method describes how the shell was detected
	Method string
	// ShellPath is the filesystem path to the shell binary
	ShellPath string
	// Confidence is the confidence level (high, medium, low)
	Confidence string
}

// EnvVar is one exported variable. Order of capture is preserved.
type EnvVar struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

func (v EnvVar) String() string {
	return v.Name + "=" + v.Value
}

// UnsupportedShellError represents an unsupported shell error
type UnsupportedShellError struct {
	Shell string
}

func (e *UnsupportedShellError) Error() string {
	return fmt.Sprintf("unsupported shell: %s (supported: bash, zsh, fish, sh)", e.Shell)
}

// CaptureError reports a failed environment capture.
type CaptureError struct {
	Shell string
	Dir   string
	Cause error
}

func (e *CaptureError) Error() string {
	return fmt.Sprintf("capture environment with %s in %s: %v", e.Shell, e.Dir, e.Cause)
}

func (e *CaptureError) Unwrap() error {
	return e.Cause
}
