package domain

import "time"

// ProviderConfig holds configuration for all AI providers
type ProviderConfig struct {
	LLM LLMProviderConfig `json:"llm" mapstructure:"llm" yaml:"llm"`
}

// LLMProviderConfig configures the LLM provider
type LLMProviderConfig struct {
	Mode         string  `json:"mode" mapstructure:"mode" yaml:"mode"`                            // "local" or "remote"
	LocalURL     string  `json:"local_url" mapstructure:"local_url" yaml:"local_url"`             // "http://localhost:11434"
	RemoteURL    string  `json:"remote_url" mapstructure:"remote_url" yaml:"remote_url"`          // "https://api.openai.com/v1"
	APIKey       string  `json:"api_key" mapstructure:"api_key" yaml:"api_key"`                   // Encrypted in storage
	DefaultModel string  `json:"default_model" mapstructure:"default_model" yaml:"default_model"` // "llama3.2" or "gpt-4o-mini"
	Temperature  float64 `json:"temperature" mapstructure:"temperature" yaml:"temperature"`
}

// AgentConfig bounds one agent loop run
type AgentConfig struct {
	MaxSteps        int           `json:"max_steps" mapstructure:"max_steps" yaml:"max_steps"`
	MaxParseRetries int           `json:"max_parse_retries" mapstructure:"max_parse_retries" yaml:"max_parse_retries"`
	RunTimeout      time.Duration `json:"run_timeout" mapstructure:"run_timeout" yaml:"run_timeout"`
	MaxConcurrent   int           `json:"max_concurrent_runs" mapstructure:"max_concurrent_runs" yaml:"max_concurrent_runs"`
}

// StorageConfig selects the database
type StorageConfig struct {
	Driver string `json:"driver" mapstructure:"driver" yaml:"driver"` // "duckdb" or "sqlite"
	Path   string `json:"path" mapstructure:"path" yaml:"path"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Addr           string   `json:"addr" mapstructure:"addr" yaml:"addr"`
	AllowedOrigins []string `json:"allowed_origins" mapstructure:"allowed_origins" yaml:"allowed_origins"`
}

// AppConfig is the main application configuration
type AppConfig struct {
	Providers ProviderConfig `json:"providers" mapstructure:"providers" yaml:"providers"`
	Agent     AgentConfig    `json:"agent" mapstructure:"agent" yaml:"agent"`
	Storage   StorageConfig  `json:"storage" mapstructure:"storage" yaml:"storage"`
	Server    ServerConfig   `json:"server" mapstructure:"server" yaml:"server"`
}

// DefaultConfig returns safe defaults
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Providers: ProviderConfig{
			LLM: LLMProviderConfig{
				Mode:         "local",
				LocalURL:     "http://localhost:11434",
				RemoteURL:    "https://api.openai.com/v1",
				DefaultModel: "llama3.2",
				Temperature:  0.1,
			},
		},
		Agent: AgentConfig{
			MaxSteps:        10,
			MaxParseRetries: 1,
			RunTimeout:      60 * time.Second,
			MaxConcurrent:   4,
		},
		Storage: StorageConfig{
			Driver: "duckdb",
			Path:   "expenses.duckdb",
		},
		Server: ServerConfig{
			Addr:           ":8000",
			AllowedOrigins: []string{"*"},
		},
	}
}
