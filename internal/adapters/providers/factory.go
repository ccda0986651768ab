package providers

import (
	"fmt"
	"os"
	"strings"

	"github.com/manthysbr/expense-agent/internal/adapters/llm"
	"github.com/manthysbr/expense-agent/internal/core/domain"
)

// Build creates the LLM provider from app configuration.
// It hides local/remote provider selection from callers.
func Build(config *domain.AppConfig) (domain.LLMProvider, error) {
	if config == nil {
		config = domain.DefaultConfig()
	}
	return BuildLLM(config.Providers.LLM)
}

// BuildLLM creates a provider from the LLM section alone; settings changes call it
// directly.
func BuildLLM(cfg domain.LLMProviderConfig) (domain.LLMProvider, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.Mode))
	switch mode {
	case "", "local":
		baseURL := strings.TrimSpace(os.Getenv("OLLAMA_HOST"))
		if baseURL == "" {
			baseURL = strings.TrimSpace(cfg.LocalURL)
		}
		baseURL = normalizeOllamaBaseURL(baseURL)
		p, err := llm.NewOllamaProvider(baseURL, strings.TrimSpace(cfg.DefaultModel), cfg.Temperature)
		if err != nil {
			return nil, err
		}
		return p, nil
	case "remote":
		if strings.TrimSpace(cfg.RemoteURL) == "" {
			return nil, fmt.Errorf("llm remote_url is required when mode=remote")
		}
		return llm.NewOpenAIProvider(
			strings.TrimSpace(cfg.RemoteURL),
			strings.TrimSpace(cfg.APIKey),
			strings.TrimSpace(cfg.DefaultModel),
			cfg.Temperature,
		), nil
	default:
		return nil, fmt.Errorf("unsupported llm provider mode: %s", cfg.Mode)
	}
}

func normalizeOllamaBaseURL(baseURL string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if strings.HasSuffix(trimmed, "/v1") {
		return strings.TrimSuffix(trimmed, "/v1")
	}
	return trimmed
}
