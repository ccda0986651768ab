package domain

import (
	"context"
)

// LLMProvider defines the interface for LLM services
type LLMProvider interface {
	GenerateText(ctx context.Context, messages []ChatMessage) (string, error)
}
