package state

import (
	"github.com/google/uuid"

	"github.com/yjlabs/mimic/backend/internal/model/chat"
	"github.com/yjlabs/mimic/backend/internal/store"
)

// Registry is the ordered session list backing the sidebar, persisted as one
// JSON array under the registry key.
type Registry struct {
	store store.Store
}

// NewRegistry returns a Registry reading through the given store.
func NewRegistry(s store.Store) *Registry {
	return &Registry{store: s}
}

// List returns sessions newest-created first. A missing or corrupt record
// reads as an empty registry, which upstream treats as "no sessions yet".
func (r *Registry) List() []chat.Session {
	return decodeOrDefault[[]chat.Session](r.store, store.KeySessions)
}

// Create allocates a fresh session id, prepends the entry, and persists.
func (r *Registry) Create(title, lastMessage string) chat.Session {
	session := chat.Session{
		ID:          uuid.NewString(),
		Title:       title,
		LastMessage: lastMessage,
	}

	sessions := append([]chat.Session{session}, r.List()...)
	encode(r.store, store.KeySessions, sessions)
	return session
}

// SessionPatch carries optional field updates for a registry entry.
type SessionPatch struct {
	Title       *string
	LastMessage *string
}

// Update merges patch fields into the entry with the given id and persists
// the full registry. Unknown ids are a no-op. Ordering is preserved.
func (r *Registry) Update(id string, patch SessionPatch) {
	sessions := r.List()
	for i := range sessions {
		if sessions[i].ID != id {
			continue
		}
		if patch.Title != nil {
			sessions[i].Title = *patch.Title
		}
		if patch.LastMessage != nil {
			sessions[i].LastMessage = *patch.LastMessage
		}
	}
	encode(r.store, store.KeySessions, sessions)
}

// Delete removes the entry with the given id. Transcript and persona records
// are the caller's responsibility.
func (r *Registry) Delete(id string) {
	sessions := r.List()
	kept := make([]chat.Session, 0, len(sessions))
	for _, session := range sessions {
		if session.ID != id {
			kept = append(kept, session)
		}
	}
	encode(r.store, store.KeySessions, kept)
}
