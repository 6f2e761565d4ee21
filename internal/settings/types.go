// Package settings reads per-project language-server settings.
//
// Settings live in a file at the project root. The first of these that
// exists is used:
//
//	.mdnls.toml
//	.mdnls.yaml
//	.mdnls.yml
//	.mdnls.lua
//
// All formats share one shape, keyed by server identifier:
//
//	[lsp.mdn-lsp.binary]
//	path = "/usr/local/bin/rari"
//	arguments = ["--verbose"]
//
// Lua files run in a sandbox with a read-only `platform` table, so a path
// can depend on the host:
//
//	lsp = {
//	  ["mdn-lsp"] = {
//	    binary = { path = platform.when(platform.is_mac, "/opt/homebrew/bin/rari") },
//	  },
//	}
//
// Every level is optional. A missing file, server entry, binary block or
// path means "not configured" and is never an error. Keys are checked
// strictly inside each server entry, and a malformed entry only fails
// lookups of that server.
package settings

import (
	"errors"
	"fmt"
)

// Binary overrides how the server executable is found and started.
type Binary struct {
	Path      string   `toml:"path,omitempty" yaml:"path,omitempty"`
	Arguments []string `toml:"arguments,omitempty" yaml:"arguments,omitempty"`
}

// LSP holds settings for one language server.
type LSP struct {
	Binary *Binary `toml:"binary,omitempty" yaml:"binary,omitempty"`
}

// File is the decoded settings file.
type File struct {
	LSP map[string]LSP `toml:"lsp,omitempty" yaml:"lsp,omitempty"`

	// invalid holds server entries that failed to decode or validate.
	// They only surface when that server is looked up.
	invalid map[string]error
}

// Server returns the settings for serverID, or nil when absent or invalid.
func (f *File) Server(serverID string) *LSP {
	if f == nil {
		return nil
	}
	lsp, ok := f.LSP[serverID]
	if !ok {
		return nil
	}
	return &lsp
}

// Lookup returns the settings for serverID. An error is returned only when
// that server's own entry is malformed; other entries never affect it.
func (f *File) Lookup(serverID string) (*LSP, error) {
	if f == nil {
		return nil, nil
	}
	if err, ok := f.invalid[serverID]; ok {
		return nil, err
	}
	return f.Server(serverID), nil
}

// add records one decoded server entry, or its error.
func (f *File) add(id string, lsp LSP, err error) {
	if err == nil {
		err = validateLSP(id, lsp)
	}
	if err != nil {
		if f.invalid == nil {
			f.invalid = map[string]error{}
		}
		f.invalid[id] = err
		return
	}
	if f.LSP == nil {
		f.LSP = map[string]LSP{}
	}
	f.LSP[id] = lsp
}

// setPath stamps path on every recorded ParseError.
func (f *File) setPath(path string) {
	for _, err := range f.invalid {
		var parseErr *ParseError
		if errors.As(err, &parseErr) {
			parseErr.Path = path
		}
	}
}

// validateLSP checks constraints that decoding cannot express.
func validateLSP(id string, lsp LSP) error {
	if lsp.Binary == nil {
		return nil
	}
	for i, arg := range lsp.Binary.Arguments {
		if arg == "" {
			return &ParseError{
				Message: "settings validation failed",
				Detail:  fmt.Sprintf("lsp.%s.binary.arguments[%d] is empty", id, i),
			}
		}
	}
	return nil
}

// ParseError represents a settings parsing error with friendly message.
type ParseError struct {
	Path    string // Settings file, when known
	Message string // User-friendly message
	Detail  string // Technical details
}

func (e *ParseError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %s", e.Path, e.Message, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Message, e.Detail)
}
