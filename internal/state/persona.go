package state

import (
	"github.com/yjlabs/mimic/backend/internal/model/persona"
	"github.com/yjlabs/mimic/backend/internal/store"
)

// PersonaState reads and writes persona configuration. The AI display name
// is a single global record shared by every session (last write wins); the
// profile is strictly per-session.
type PersonaState struct {
	store store.Store
}

// NewPersonaState returns a PersonaState reading through the given store.
func NewPersonaState(s store.Store) *PersonaState {
	return &PersonaState{store: s}
}

// Get returns the session's persona, falling back to defaults for any field
// without a stored record. It never fails.
func (p *PersonaState) Get(sessionID string) persona.Persona {
	out := persona.Default()
	if name, ok := p.store.Get(store.KeyPersonaName); ok && name != "" {
		out.Name = name
	}
	if profile, ok := p.store.Get(store.ProfileKey(sessionID)); ok && profile != "" {
		out.Profile = profile
	}
	return out
}

// PersonaPatch carries optional persona updates.
type PersonaPatch struct {
	Name    *string
	Profile *string
}

// Set merges the patch and persists immediately: the name goes to the global
// record, the profile to the session's own key.
func (p *PersonaState) Set(sessionID string, patch PersonaPatch) {
	if patch.Name != nil {
		p.store.Set(store.KeyPersonaName, *patch.Name)
	}
	if patch.Profile != nil {
		p.store.Set(store.ProfileKey(sessionID), *patch.Profile)
	}
}

// ProfileSet reports whether the session has an explicitly written profile.
// Sessions without one are still waiting for the first-message capture.
func (p *PersonaState) ProfileSet(sessionID string) bool {
	_, ok := p.store.Get(store.ProfileKey(sessionID))
	return ok
}

// Remove drops the session's profile record. The global name survives.
func (p *PersonaState) Remove(sessionID string) {
	p.store.Remove(store.ProfileKey(sessionID))
}
