package state

import (
	"github.com/yjlabs/mimic/backend/internal/model/chat"
	"github.com/yjlabs/mimic/backend/internal/store"
)

// ConversationLog stores per-session transcripts as whole JSON arrays. Each
// append rewrites the record; the storage boundary has no incremental
// primitive.
type ConversationLog struct {
	store store.Store
}

// NewConversationLog returns a ConversationLog reading through the given
// store.
func NewConversationLog(s store.Store) *ConversationLog {
	return &ConversationLog{store: s}
}

// Get returns the session's transcript in order, empty when the record is
// absent or corrupt.
func (l *ConversationLog) Get(sessionID string) []chat.Message {
	return decodeOrDefault[[]chat.Message](l.store, store.MessagesKey(sessionID))
}

// Append adds messages to the end of the transcript and persists the full
// updated sequence. It returns the updated transcript.
func (l *ConversationLog) Append(sessionID string, messages ...chat.Message) []chat.Message {
	updated := append(l.Get(sessionID), messages...)
	encode(l.store, store.MessagesKey(sessionID), updated)
	return updated
}

// Replace overwrites the transcript wholesale.
func (l *ConversationLog) Replace(sessionID string, messages []chat.Message) {
	encode(l.store, store.MessagesKey(sessionID), messages)
}

// Clear removes the persisted transcript.
func (l *ConversationLog) Clear(sessionID string) {
	l.store.Remove(store.MessagesKey(sessionID))
}
