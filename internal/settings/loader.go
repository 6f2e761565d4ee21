package settings

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/ZebulonRouseFrantzich/mdnls/internal/platform"
	"github.com/spf13/afero"
)

// Loader finds and decodes project settings files.
type Loader struct {
	fs  afero.Fs
	lua *LuaParser
}

// NewLoader creates a loader reading from fsys (the OS filesystem when nil).
func NewLoader(fsys afero.Fs, detector platform.Detector) *Loader {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	return &Loader{fs: fsys, lua: NewLuaParser(detector)}
}

// Load decodes the first settings file found under root. It returns
// (nil, "", nil) when the project has no settings file.
func (l *Loader) Load(ctx context.Context, root string) (*File, string, error) {
	for _, name := range []string{FileTOML, FileYAML, FileYML, FileLua} {
		path := filepath.Join(root, name)
		data, err := afero.ReadFile(l.fs, path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, path, fmt.Errorf("read settings: %w", err)
		}

		f, err := l.decode(ctx, name, data)
		if err != nil {
			var parseErr *ParseError
			if errors.As(err, &parseErr) {
				parseErr.Path = path
			}
			return nil, path, err
		}
		f.setPath(path)
		return f, path, nil
	}

	return nil, "", nil
}

func (l *Loader) decode(ctx context.Context, name string, data []byte) (*File, error) {
	switch name {
	case FileTOML:
		return ParseTOML(data)
	case FileYAML, FileYML:
		return ParseYAML(data)
	case FileLua:
		return l.lua.ParseString(ctx, string(data))
	default:
		return nil, fmt.Errorf("unsupported settings file: %s", name)
	}
}

// LSPSettings returns the settings for serverID in the project at root, or
// nil when none are configured. Malformed entries for other servers are
// ignored.
func (l *Loader) LSPSettings(ctx context.Context, root, serverID string) (*LSP, error) {
	f, _, err := l.Load(ctx, root)
	if err != nil {
		return nil, err
	}
	return f.Lookup(serverID)
}
