package catalog

import (
	"sync"

	"github.com/photocard-tools/cardfolio/internal/mode"
)

// Sessions caches one manager per catalog source so repeated requests for
// the same source (the local store, a src URL, an embedded snapshot) share
// state instead of re-fetching.
type Sessions struct {
	managers map[string]*Manager
	mu       sync.RWMutex
}

func NewSessions() *Sessions {
	return &Sessions{
		managers: make(map[string]*Manager),
	}
}

// Key returns the cache key for a resolved mode. All editable local
// sessions share one manager; every share source gets its own.
func Key(m mode.Mode) string {
	switch m.Source {
	case mode.SourceRemoteURL:
		return "src:" + m.SourceURL
	case mode.SourceSnapshot:
		return "snapshot:" + m.Snapshot
	default:
		return "local"
	}
}

// GetOrCreate returns the cached manager for key, creating and initializing
// it with create on first use. A create error is not cached; the next
// request retries.
func (s *Sessions) GetOrCreate(key string, create func() (*Manager, error)) (*Manager, error) {
	s.mu.RLock()
	mgr, exists := s.managers[key]
	s.mu.RUnlock()
	if exists {
		return mgr, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if mgr, exists := s.managers[key]; exists {
		return mgr, nil
	}
	mgr, err := create()
	if err != nil {
		return nil, err
	}
	s.managers[key] = mgr
	return mgr, nil
}

// Delete evicts a cached manager, forcing a reload on next use.
func (s *Sessions) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.managers, key)
}
