package ai

import (
	"context"
	"errors"
)

// ErrEmptyResponse marks a generation call that succeeded at the transport
// level but carried no usable text.
var ErrEmptyResponse = errors.New("generation response carried no text")

// Generator is the text-generation boundary: one composed prompt in, one
// completion out. Implementations make a single attempt; any retry policy
// belongs to the caller.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts a function to the Generator interface, mainly for
// tests.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}
