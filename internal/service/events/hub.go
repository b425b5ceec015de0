package events

import "sync"

// Type enumerates the UI push notifications.
type Type string

const (
	// TypeMessage carries a newly appended transcript message.
	TypeMessage Type = "message"
	// TypeTyping carries the awaiting-response flag.
	TypeTyping Type = "typing"
	// TypeSession signals that the session list or the active selection
	// changed and the sidebar should refresh.
	TypeSession Type = "session"
)

// Event is one UI push notification. SessionID correlates the event with the
// conversation it belongs to, so a client showing a different session can
// ignore it.
type Event struct {
	Type      Type        `json:"type"`
	SessionID string      `json:"sessionId,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

// Hub fans events out to websocket subscribers. Publishing never blocks; a
// subscriber that cannot keep up misses events rather than stalling the
// controller.
type Hub struct {
	mu   sync.Mutex
	subs map[chan Event]struct{}
}

// NewHub returns an empty Hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[chan Event]struct{})}
}

// Subscribe registers a new buffered event channel.
func (h *Hub) Subscribe() chan Event {
	ch := make(chan Event, 16)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

// Unsubscribe removes and closes the channel. Safe to call twice.
func (h *Hub) Unsubscribe(ch chan Event) {
	h.mu.Lock()
	if _, ok := h.subs[ch]; ok {
		delete(h.subs, ch)
		close(ch)
	}
	h.mu.Unlock()
}

// Publish delivers the event to every subscriber that has buffer room.
func (h *Hub) Publish(event Event) {
	h.mu.Lock()
	for ch := range h.subs {
		select {
		case ch <- event:
		default:
		}
	}
	h.mu.Unlock()
}
