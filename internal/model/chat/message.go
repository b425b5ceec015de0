package chat

// Sender identifies who produced a message. The wire values match the web
// client's transcripts.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "ai"
)

// Message is a single turn in a session transcript. Transcripts are ordered
// and append-only.
type Message struct {
	Sender Sender `json:"sender"`
	Text   string `json:"text"`
}
