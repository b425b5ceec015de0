package chat

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"

	"github.com/yjlabs/mimic/backend/internal/model/chat"
	"github.com/yjlabs/mimic/backend/internal/model/persona"
	"github.com/yjlabs/mimic/backend/internal/service/ai"
	"github.com/yjlabs/mimic/backend/internal/service/events"
	"github.com/yjlabs/mimic/backend/internal/state"
	"github.com/yjlabs/mimic/backend/internal/store"
)

// Product strings, kept verbatim from the web client so transcripts read the
// same on both sides.
const (
	// Opening line of a fresh session, asking the user to describe the AI.
	bootstrapPrompt = "안녕하세요! 어떤 AI와 대화하고 싶으신가요? 원하시는 AI의 성격이나 특징을 알려주세요."
	// Acknowledgment after the first message is captured as the profile.
	bootstrapAck = "좋아요! 이제 그 모습으로 대화할게요. 무엇을 도와드릴까요?"
	// Opening line when the session was created with an explicit profile.
	activeGreeting = "안녕하세요! 무엇을 도와드릴까요?"
	// Shown in place of a response when generation fails.
	fallbackMessage = "⚠️ 오류가 발생했습니다. 다시 시도해주세요."
	// Sidebar title before the persona is known.
	defaultTitle = "새 채팅"
)

var (
	ErrSessionNotFound = errors.New("session not found")

	errGeneratorUnconfigured = errors.New("generation client unconfigured")
)

// Controller owns session identity, the active selection, per-session
// transcripts and personas, and the exchange with the generation service.
// All state lives behind one mutex; only the generation call itself runs
// unlocked.
type Controller struct {
	mu        sync.Mutex
	registry  *state.Registry
	personas  *state.PersonaState
	logs      *state.ConversationLog
	generator ai.Generator
	hub       *events.Hub

	activeID string
	messages []chat.Message
	typing   bool
}

// NewController restores state from the store, creating the first session
// when the registry is empty or unreadable. The hub is optional.
func NewController(s store.Store, generator ai.Generator, hub *events.Hub) *Controller {
	c := &Controller{
		registry:  state.NewRegistry(s),
		personas:  state.NewPersonaState(s),
		logs:      state.NewConversationLog(s),
		generator: generator,
		hub:       hub,
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	sessions := c.registry.List()
	if len(sessions) == 0 {
		c.newSessionLocked("", "")
		return c
	}
	c.selectLocked(sessions[0].ID)
	return c
}

// SendMessage handles one user submission for the active session. The
// returned flag is false for empty or whitespace-only input, which changes
// no state. Otherwise the returned message is the assistant's turn: the
// bootstrap acknowledgment, the generated response, or the fallback text
// when generation fails.
func (c *Controller) SendMessage(ctx context.Context, text string) (chat.Message, bool) {
	if strings.TrimSpace(text) == "" {
		return chat.Message{}, false
	}

	c.mu.Lock()
	sessionID := c.activeID
	history := c.logs.Get(sessionID)

	// First user message of a fresh session defines the persona instead of
	// going to the generation service.
	if len(history) == 1 && history[0].Sender == chat.SenderAssistant && !c.personas.ProfileSet(sessionID) {
		reply := c.bootstrapLocked(sessionID, text)
		c.mu.Unlock()
		c.publish(events.Event{Type: events.TypeMessage, SessionID: sessionID, Data: reply})
		return reply, true
	}

	userMessage := chat.Message{Sender: chat.SenderUser, Text: text}
	c.messages = append(c.messages, userMessage)
	c.setTypingLocked(sessionID, true)
	activePersona := c.personas.Get(sessionID)
	c.mu.Unlock()

	c.publish(events.Event{Type: events.TypeMessage, SessionID: sessionID, Data: userMessage})

	prompt := ai.BuildPrompt(activePersona, history, text)
	replyText, err := c.generate(ctx, prompt)
	if err != nil {
		log.Printf("[chat] generation failed for session=%s: %v", sessionID, err)
		replyText = fallbackMessage
	}
	reply := chat.Message{Sender: chat.SenderAssistant, Text: replyText}

	c.mu.Lock()
	// Address updates by the id captured at send time; the user may have
	// switched sessions while the request was in flight.
	c.logs.Append(sessionID, userMessage, reply)
	c.registry.Update(sessionID, state.SessionPatch{LastMessage: &replyText})
	if c.activeID == sessionID {
		c.messages = append(c.messages, reply)
	}
	c.setTypingLocked(sessionID, false)
	c.mu.Unlock()

	c.publish(events.Event{Type: events.TypeMessage, SessionID: sessionID, Data: reply})
	return reply, true
}

// bootstrapLocked captures the user's description as the session profile and
// acknowledges without calling the generation service. The description is
// not logged as a turn; it lives on as the profile. Runs at most once per
// session.
func (c *Controller) bootstrapLocked(sessionID, text string) chat.Message {
	c.personas.Set(sessionID, state.PersonaPatch{Profile: &text})
	activePersona := c.personas.Get(sessionID)

	ack := chat.Message{Sender: chat.SenderAssistant, Text: bootstrapAck}
	updated := c.logs.Append(sessionID, ack)
	c.registry.Update(sessionID, state.SessionPatch{
		Title:       &activePersona.Name,
		LastMessage: &ack.Text,
	})
	if c.activeID == sessionID {
		c.messages = updated
	}

	log.Printf("[chat] persona bootstrapped for session=%s", sessionID)
	return ack
}

// CreateSession starts a fresh session in the persona-describing state and
// makes it active.
func (c *Controller) CreateSession() chat.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.newSessionLocked("", "")
}

// CreateSessionNamed starts a session with an explicit AI name and optional
// profile. With a profile the session opens ready for normal exchange; with
// an empty one it still asks the user to describe the AI first.
func (c *Controller) CreateSessionNamed(name, profile string) chat.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.newSessionLocked(strings.TrimSpace(name), strings.TrimSpace(profile))
}

// newSessionLocked runs the new-session algorithm: allocate the registry
// entry, seed the transcript with its opening line, persist persona
// overrides, and replace the live view wholesale.
func (c *Controller) newSessionLocked(name, profile string) chat.Session {
	title := defaultTitle
	if name != "" {
		title = name
	}
	opener := bootstrapPrompt
	if profile != "" {
		opener = activeGreeting
	}

	session := c.registry.Create(title, opener)

	patch := state.PersonaPatch{}
	if name != "" {
		patch.Name = &name
	}
	if profile != "" {
		patch.Profile = &profile
	}
	if patch.Name != nil || patch.Profile != nil {
		c.personas.Set(session.ID, patch)
	}

	opening := []chat.Message{{Sender: chat.SenderAssistant, Text: opener}}
	c.logs.Replace(session.ID, opening)

	c.activeID = session.ID
	c.messages = opening
	c.publish(events.Event{Type: events.TypeSession, SessionID: session.ID})

	log.Printf("[chat] session created id=%s title=%q", session.ID, title)
	return session
}

// SelectSession makes the given session active and loads its transcript and
// persona, replacing the previous live view wholesale.
func (c *Controller) SelectSession(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.hasSessionLocked(id) {
		return ErrSessionNotFound
	}
	c.selectLocked(id)
	c.publish(events.Event{Type: events.TypeSession, SessionID: id})
	return nil
}

func (c *Controller) selectLocked(id string) {
	c.activeID = id
	c.messages = c.logs.Get(id)
}

// DeleteSession removes the session and its transcript and profile records.
// Deleting the active session selects the next remaining one; deleting the
// last session creates a fresh replacement so the registry never goes empty.
func (c *Controller) DeleteSession(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.hasSessionLocked(id) {
		return ErrSessionNotFound
	}

	c.registry.Delete(id)
	c.logs.Clear(id)
	c.personas.Remove(id)
	log.Printf("[chat] session deleted id=%s", id)

	if c.activeID == id {
		remaining := c.registry.List()
		if len(remaining) > 0 {
			c.selectLocked(remaining[0].ID)
		} else {
			c.newSessionLocked("", "")
			return nil
		}
	}
	c.publish(events.Event{Type: events.TypeSession, SessionID: c.activeID})
	return nil
}

// DeleteAll wipes every session's records and restarts with a single fresh
// session.
func (c *Controller) DeleteAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, session := range c.registry.List() {
		c.logs.Clear(session.ID)
		c.personas.Remove(session.ID)
		c.registry.Delete(session.ID)
	}
	log.Printf("[chat] all sessions deleted")

	c.newSessionLocked("", "")
}

// UpdatePersona merges the patch into the active session's persona. A name
// change also retitles the active registry entry so the sidebar follows.
func (c *Controller) UpdatePersona(patch state.PersonaPatch) persona.Persona {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.personas.Set(c.activeID, patch)
	if patch.Name != nil {
		c.registry.Update(c.activeID, state.SessionPatch{Title: patch.Name})
	}
	c.publish(events.Event{Type: events.TypeSession, SessionID: c.activeID})
	return c.personas.Get(c.activeID)
}

// Messages returns a copy of the active session's live transcript.
func (c *Controller) Messages() []chat.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]chat.Message(nil), c.messages...)
}

// Sessions returns the registry list, newest first.
func (c *Controller) Sessions() []chat.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.registry.List()
}

// ActiveSessionID returns the id of the active session.
func (c *Controller) ActiveSessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeID
}

// ActivePersona returns the active session's persona.
func (c *Controller) ActivePersona() persona.Persona {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.personas.Get(c.activeID)
}

// Typing reports whether a generation call is awaiting its response.
func (c *Controller) Typing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.typing
}

func (c *Controller) generate(ctx context.Context, prompt string) (string, error) {
	if c.generator == nil {
		return "", errGeneratorUnconfigured
	}
	return c.generator.Generate(ctx, prompt)
}

func (c *Controller) setTypingLocked(sessionID string, typing bool) {
	c.typing = typing
	c.publish(events.Event{Type: events.TypeTyping, SessionID: sessionID, Data: typing})
}

func (c *Controller) hasSessionLocked(id string) bool {
	for _, session := range c.registry.List() {
		if session.ID == id {
			return true
		}
	}
	return false
}

func (c *Controller) publish(event events.Event) {
	if c.hub != nil {
		c.hub.Publish(event)
	}
}
