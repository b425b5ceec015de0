package ai

import (
	"context"
	"fmt"

	"github.com/yjlabs/mimic/backend/internal/config"
)

// New builds the Generator selected by configuration. A nil Generator with a
// nil error means generation is unconfigured; the controller then degrades
// every send to its fallback message.
func New(ctx context.Context, cfg config.AIConfig) (Generator, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		if !cfg.Gemini.Enabled() {
			return nil, fmt.Errorf("gemini credentials missing: provide GEMINI_API_KEY")
		}
		return NewGeminiClient(cfg.Gemini.BaseURL, cfg.Gemini.Model, cfg.Gemini.APIKey), nil
	case config.ProviderArk:
		chatModel, err := cfg.NewChatModel(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create chat model: %w", err)
		}
		return NewArkGenerator(chatModel), nil
	case config.ProviderNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown ai provider %q", cfg.Provider)
	}
}
