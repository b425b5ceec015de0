package state

import (
	"encoding/json"

	"github.com/yjlabs/mimic/backend/internal/store"
)

// decodeOrDefault unmarshals the JSON at key into a fresh T. An absent key
// or bytes that no longer parse both yield the zero value: corruption reads
// as absence, and the next write heals the record.
func decodeOrDefault[T any](s store.Store, key string) T {
	var out T
	raw, ok := s.Get(key)
	if !ok {
		return out
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return out
	}
	return out
}

// encode marshals v and writes it under key. Like the store itself, it fails
// silently; the caller's in-memory state remains the source of truth for the
// current session.
func encode(s store.Store, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	s.Set(key, string(raw))
}
