package llm

import (
	"context"
)

type LLMClient interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GenerationOptions are fixed for the lifetime of a client.
type GenerationOptions struct {
	Temperature     float32
	MaxOutputTokens int
}
