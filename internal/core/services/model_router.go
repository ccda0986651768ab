package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/manthysbr/expense-agent/internal/core/domain"
)

var errNoProvider = errors.New("no llm provider configured")

// ModelRouter is the LLMProvider the agent talks to. It forwards to the currently
// configured provider, which can be swapped at runtime when settings change.
type ModelRouter struct {
	logger   *slog.Logger
	mu       sync.RWMutex
	provider domain.LLMProvider
	model    string
}

// NewModelRouter creates a router with the given base LLM provider.
func NewModelRouter(logger *slog.Logger, provider domain.LLMProvider, model string) *ModelRouter {
	return &ModelRouter{
		logger:   logger,
		provider: provider,
		model:    model,
	}
}

// GenerateText delegates to the current provider.
func (r *ModelRouter) GenerateText(ctx context.Context, messages []domain.ChatMessage) (string, error) {
	r.mu.RLock()
	p, model := r.provider, r.model
	r.mu.RUnlock()

	if p == nil {
		return "", errNoProvider
	}
	r.logger.Debug("model router generating text", "model", model, "messages", len(messages))
	return p.GenerateText(ctx, messages)
}

// UpdateProvider hot-swaps the underlying LLM provider (called on settings change).
func (r *ModelRouter) UpdateProvider(p domain.LLMProvider, model string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.provider = p
	r.model = model
	r.logger.Info("llm provider updated", "model", model)
}

// Model returns the model name of the current provider.
func (r *ModelRouter) Model() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.model
}
