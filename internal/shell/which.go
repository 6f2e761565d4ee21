package shell

import (
	"context"
	"path/filepath"
	"strings"
)

const defaultPathExt = ".COM;.EXE;.BAT;.CMD"

// Which searches the project's PATH for an executable named name. The
// captured login-shell PATH is preferred; the process PATH is used on
// windows or when capture fails.
func (e *Environment) Which(ctx context.Context, root, name string) (string, bool) {
	pathList := e.searchPath(ctx, root)
	if pathList == "" {
		return "", false
	}

	candidates := e.candidateNames(name)
	for _, dir := range filepath.SplitList(pathList) {
		if dir == "" {
			dir = "."
		}
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(root, dir)
		}
		for _, candidate := range candidates {
			path := filepath.Join(dir, candidate)
			if e.isExecutable(path) {
				return path, true
			}
		}
	}
	return "", false
}

func (e *Environment) searchPath(ctx context.Context, root string) string {
	if e.goos != "windows" {
		vars, err := e.ShellEnv(ctx, root)
		if err == nil {
			if path, ok := Lookup(vars, "PATH"); ok {
				return path
			}
		} else {
			e.logger.Debug("falling back to process PATH", "error", err)
		}
	}
	return e.getenv("PATH")
}

func (e *Environment) candidateNames(name string) []string {
	if e.goos != "windows" {
		return []string{name}
	}

	pathExt := e.getenv("PATHEXT")
	if pathExt == "" {
		pathExt = defaultPathExt
	}
	var exts []string
	for _, ext := range strings.Split(pathExt, ";") {
		if ext = strings.TrimSpace(ext); ext != "" {
			exts = append(exts, strings.ToLower(ext))
		}
	}

	lower := strings.ToLower(name)
	for _, ext := range exts {
		if strings.HasSuffix(lower, ext) {
			return []string{name}
		}
	}

	names := make([]string, 0, len(exts))
	for _, ext := range exts {
		names = append(names, name+ext)
	}
	return names
}

func (e *Environment) isExecutable(path string) bool {
	info, err := e.fs.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	if e.goos == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
