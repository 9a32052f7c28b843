package store

import (
	"context"
	"sync"

	"github.com/tiercache/tiercache/pkg/types"
)

// MemoryStore keeps entries in a map. It never fails, which makes it a
// convenient L2 for tests and a reference implementation of the Store
// contract.
type MemoryStore[V any] struct {
	mu      sync.RWMutex
	entries map[string]types.Entry[V]
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore[V any]() *MemoryStore[V] {
	return &MemoryStore[V]{entries: make(map[string]types.Entry[V])}
}

// Put implements Store.
func (s *MemoryStore[V]) Put(_ context.Context, key string, entry types.Entry[V]) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry
	return nil
}

// Get implements Store.
func (s *MemoryStore[V]) Get(_ context.Context, key string) (types.Entry[V], bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[key]
	return entry, ok, nil
}

// Remove implements Store.
func (s *MemoryStore[V]) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// Contains implements Store.
func (s *MemoryStore[V]) Contains(_ context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.entries[key]
	return ok, nil
}

// Keys implements Store.
func (s *MemoryStore[V]) Keys(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	return keys, nil
}

// Len implements Store.
func (s *MemoryStore[V]) Len(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries), nil
}

// Clear implements Store.
func (s *MemoryStore[V]) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]types.Entry[V])
	return nil
}

// Close implements Store.
func (s *MemoryStore[V]) Close() error {
	return nil
}
