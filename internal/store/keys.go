package store

// Key namespace shared with the browser build. Changing any of these breaks
// compatibility with transcripts the web client already persisted.
const (
	// KeySessions holds the JSON array of registry entries.
	KeySessions = "chatSessions"
	// KeyPersonaName holds the global AI display name, shared by all sessions.
	KeyPersonaName = "aiName"
)

// MessagesKey addresses a session's transcript.
func MessagesKey(sessionID string) string {
	return "chatMessages_" + sessionID
}

// ProfileKey addresses a session's persona profile text.
func ProfileKey(sessionID string) string {
	return "aiProfile_" + sessionID
}
