package chat

// Session is one sidebar entry: an independent conversation thread with its
// own persona and transcript. LastMessage is the preview line shown under
// the title.
type Session struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	LastMessage string `json:"lastMessage,omitempty"`
}
