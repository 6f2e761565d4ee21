package resolver

import "sync"

// BootstrapState caches the path of a fetched executable for the life of
// the process. It starts empty and is never cleared.
type BootstrapState struct {
	mu   sync.RWMutex
	path string
}

// NewBootstrapState returns an empty state.
func NewBootstrapState() *BootstrapState {
	return &BootstrapState{}
}

// Path returns the cached path, if any.
func (s *BootstrapState) Path() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.path, s.path != ""
}

// Set records path. Empty paths are ignored.
func (s *BootstrapState) Set(path string) {
	if path == "" {
		return
	}
	s.mu.Lock()
	s.path = path
	s.mu.Unlock()
}
