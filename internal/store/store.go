package store

import "sync"

// Store is the durable key/value boundary shared by every state component.
// Semantics mirror the browser's localStorage: string keys, string values,
// and writes that fail without surfacing an error to the caller. A failed
// write means "the write did not happen"; in-memory state stays correct and
// the next successful write heals the record.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Remove(key string)
}

// MemoryStore implements Store with a mutex-guarded map, suitable for tests
// and STORE_DRIVER=memory runs.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

// Get returns the value stored under key.
func (s *MemoryStore) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[key]
	return value, ok
}

// Set stores value under key, replacing any previous value.
func (s *MemoryStore) Set(key, value string) {
	s.mu.Lock()
	s.values[key] = value
	s.mu.Unlock()
}

// Remove drops the record for key.
func (s *MemoryStore) Remove(key string) {
	s.mu.Lock()
	delete(s.values, key)
	s.mu.Unlock()
}
