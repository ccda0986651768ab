package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/manthysbr/expense-agent/internal/core/domain"
)

// EnvPrefix prefixes every environment override, e.g. EXPENSE_AGENT_AGENT_MAX_STEPS.
const EnvPrefix = "EXPENSE_AGENT"

// Load resolves the application config from defaults, an optional YAML file and the
// environment, in increasing precedence.
func Load(path string) (*domain.AppConfig, error) {
	v := viper.New()
	setDefaults(v, domain.DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg domain.AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper, d *domain.AppConfig) {
	v.SetDefault("providers.llm.mode", d.Providers.LLM.Mode)
	v.SetDefault("providers.llm.local_url", d.Providers.LLM.LocalURL)
	v.SetDefault("providers.llm.remote_url", d.Providers.LLM.RemoteURL)
	v.SetDefault("providers.llm.api_key", d.Providers.LLM.APIKey)
	v.SetDefault("providers.llm.default_model", d.Providers.LLM.DefaultModel)
	v.SetDefault("providers.llm.temperature", d.Providers.LLM.Temperature)

	v.SetDefault("agent.max_steps", d.Agent.MaxSteps)
	v.SetDefault("agent.max_parse_retries", d.Agent.MaxParseRetries)
	v.SetDefault("agent.run_timeout", d.Agent.RunTimeout)
	v.SetDefault("agent.max_concurrent_runs", d.Agent.MaxConcurrent)

	v.SetDefault("storage.driver", d.Storage.Driver)
	v.SetDefault("storage.path", d.Storage.Path)

	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.allowed_origins", d.Server.AllowedOrigins)
}

// Validate rejects configs the agent cannot run with.
func Validate(cfg *domain.AppConfig) error {
	if cfg.Agent.MaxSteps <= 0 {
		return fmt.Errorf("agent.max_steps must be positive, got %d", cfg.Agent.MaxSteps)
	}
	if cfg.Agent.MaxParseRetries < 0 {
		return fmt.Errorf("agent.max_parse_retries must not be negative, got %d", cfg.Agent.MaxParseRetries)
	}
	switch cfg.Storage.Driver {
	case "duckdb", "sqlite":
	default:
		return fmt.Errorf("unsupported storage driver: %s", cfg.Storage.Driver)
	}
	return validateLLM(cfg.Providers.LLM)
}

func validateLLM(llm domain.LLMProviderConfig) error {
	switch llm.Mode {
	case "", "local":
	case "remote":
		if llm.RemoteURL == "" {
			return fmt.Errorf("LLM remote_url is required when mode=remote")
		}
	default:
		return fmt.Errorf("unsupported llm provider mode: %s", llm.Mode)
	}
	if llm.Temperature < 0 || llm.Temperature > 2 {
		return fmt.Errorf("LLM temperature must be within [0, 2], got %v", llm.Temperature)
	}
	return nil
}
