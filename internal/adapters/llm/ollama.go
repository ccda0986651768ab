package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"

	"github.com/manthysbr/expense-agent/internal/core/domain"
)

// OllamaProvider implements domain.LLMProvider for a local Ollama instance. Responses
// are requested in Ollama's JSON format mode.
type OllamaProvider struct {
	llm         llms.Model
	model       string
	temperature float64
}

func NewOllamaProvider(baseURL, model string, temperature float64) (*OllamaProvider, error) {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "llama3.2"
	}

	client, err := ollama.New(
		ollama.WithServerURL(baseURL),
		ollama.WithModel(model),
		ollama.WithFormat("json"),
	)
	if err != nil {
		return nil, fmt.Errorf("create ollama client: %w", err)
	}

	return &OllamaProvider{llm: client, model: model, temperature: temperature}, nil
}

// GenerateText implements domain.LLMProvider.
func (p *OllamaProvider) GenerateText(ctx context.Context, messages []domain.ChatMessage) (string, error) {
	resp, err := p.llm.GenerateContent(ctx, toMessageContent(messages), llms.WithTemperature(p.temperature))
	if err != nil {
		return "", fmt.Errorf("ollama generate: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("ollama returned no choices")
	}
	return resp.Choices[0].Content, nil
}

func toMessageContent(messages []domain.ChatMessage) []llms.MessageContent {
	out := make([]llms.MessageContent, 0, len(messages))
	for _, m := range messages {
		role := llms.ChatMessageTypeHuman
		switch m.Role {
		case domain.RoleSystem:
			role = llms.ChatMessageTypeSystem
		case domain.RoleAssistant:
			role = llms.ChatMessageTypeAI
		}
		out = append(out, llms.TextParts(role, m.Content))
	}
	return out
}
