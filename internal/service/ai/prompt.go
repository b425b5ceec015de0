package ai

import (
	"strings"

	"github.com/yjlabs/mimic/backend/internal/model/chat"
	"github.com/yjlabs/mimic/backend/internal/model/persona"
)

// historyLimit bounds how many prior turns ride along with each request.
const historyLimit = 10

const userLabel = "사용자"

// BuildPrompt composes the single prompt string sent to the generation
// service: a preamble naming the persona and quoting its profile verbatim,
// the recent transcript, the new user line, and a trailing cue priming the
// model to continue as the persona.
func BuildPrompt(p persona.Persona, history []chat.Message, text string) string {
	var b strings.Builder
	b.WriteString("당신은 \"")
	b.WriteString(p.Name)
	b.WriteString("\"(이)라는 이름의 AI입니다.\n")
	b.WriteString("특징: ")
	b.WriteString(p.Profile)
	b.WriteString("\n\n지금까지의 대화:\n")

	start := 0
	if len(history) > historyLimit {
		start = len(history) - historyLimit
	}
	for _, msg := range history[start:] {
		b.WriteString(displayLabel(msg.Sender, p.Name))
		b.WriteString(": ")
		b.WriteString(msg.Text)
		b.WriteString("\n")
	}

	b.WriteString(userLabel)
	b.WriteString(": ")
	b.WriteString(text)
	b.WriteString("\n")
	b.WriteString(p.Name)
	b.WriteString(":")
	return b.String()
}

// displayLabel renders the speaker prefix for one transcript line.
func displayLabel(sender chat.Sender, personaName string) string {
	if sender == chat.SenderUser {
		return userLabel
	}
	return personaName
}
