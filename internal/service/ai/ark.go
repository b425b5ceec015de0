package ai

import (
	"context"
	"fmt"
	"log"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// ArkGenerator adapts an eino chat model to the Generator boundary. The
// composed prompt travels as a single user message.
type ArkGenerator struct {
	chatModel model.ChatModel
}

// NewArkGenerator wraps the given chat model.
func NewArkGenerator(chatModel model.ChatModel) *ArkGenerator {
	return &ArkGenerator{chatModel: chatModel}
}

// Generate runs one completion through the chat model.
func (g *ArkGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	response, err := g.chatModel.Generate(ctx, []*schema.Message{schema.UserMessage(prompt)})
	if err != nil {
		return "", fmt.Errorf("failed to run chat model: %w", err)
	}
	if response == nil || response.Content == "" {
		return "", ErrEmptyResponse
	}

	log.Printf("[ai] generated response, length=%d", len(response.Content))
	return response.Content, nil
}
