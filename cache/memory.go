package cache

import (
	"bytes"
	"sync"
)

// MemoryStore is an in-memory Store. It grows for the lifetime of the
// process; there is no eviction.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[Key][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[Key][]byte),
	}
}

// Get retrieves a value from the store. Returns (nil, false) on miss.
func (s *MemoryStore) Get(key Key) ([]byte, bool) {
	s.mu.RLock()
	value, ok := s.entries[key]
	s.mu.RUnlock()
	return value, ok
}

// Add stores a copy of value unless key is already present.
func (s *MemoryStore) Add(key Key, value []byte) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.entries[key]; ok {
		return existing, false
	}

	// bytes.Clone keeps nil as nil; an empty payload must still be a hit.
	stored := bytes.Clone(value)
	if stored == nil {
		stored = []byte{}
	}
	s.entries[key] = stored
	return stored, true
}

// Len returns the number of stored entries.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Ensure MemoryStore implements Store
var _ Store = (*MemoryStore)(nil)
