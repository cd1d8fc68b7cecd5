package cart

import (
	"context"
	"sync"
)

// MemoryStore keeps carts in a process-local map
type MemoryStore struct {
	mu    sync.RWMutex
	carts map[string][]Entry
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: make(map[string][]Entry)}
}

// Load returns a copy of the entries stored under key
func (s *MemoryStore) Load(_ context.Context, key string) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, ok := s.carts[key]
	if !ok {
		return []Entry{}, nil
	}
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out, nil
}

// Save replaces the entries stored under key
func (s *MemoryStore) Save(_ context.Context, key string, entries []Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]Entry, len(entries))
	copy(stored, entries)
	s.carts[key] = stored
	return nil
}

var _ Store = (*MemoryStore)(nil)
