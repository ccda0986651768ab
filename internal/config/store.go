package config

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/manthysbr/expense-agent/internal/core/domain"
	"github.com/manthysbr/expense-agent/internal/core/ports"
)

const (
	llmSettingsKey = "llm_provider"
	// llmConfigKey holds the config-file/env values seen at the last start.
	llmConfigKey = "llm_provider_config"
)

// OnChangeFunc is called after the LLM settings change.
type OnChangeFunc func(cfg domain.LLMProviderConfig)

// SettingsStore holds the runtime-mutable LLM provider settings. They are persisted
// as JSON in the settings table with the API key encrypted, and masked on read.
type SettingsStore struct {
	mu       sync.RWMutex
	logger   *slog.Logger
	secret   *SecretKey
	repo     ports.SettingsRepository
	llm      domain.LLMProviderConfig
	onChange []OnChangeFunc
}

// NewSettingsStore loads saved settings, seeding the store with defaults on first run.
// Fields whose config value changed since the previous start override the saved
// settings; untouched fields keep what was set through the API.
func NewSettingsStore(ctx context.Context, logger *slog.Logger, repo ports.SettingsRepository, secret *SecretKey, defaults domain.LLMProviderConfig) (*SettingsStore, error) {
	s := &SettingsStore{
		logger: logger,
		secret: secret,
		repo:   repo,
	}

	cfg, found, err := s.load(ctx, llmSettingsKey)
	if err != nil {
		return nil, err
	}
	if !found {
		logger.Info("no saved llm settings, using config defaults", "mode", defaults.Mode)
		cfg = defaults
		if err := s.save(ctx, llmSettingsKey, cfg); err != nil {
			return nil, fmt.Errorf("failed to save default settings: %w", err)
		}
	} else {
		prev, seen, err := s.load(ctx, llmConfigKey)
		if err != nil {
			return nil, err
		}
		if seen {
			var changed []string
			cfg, changed = applyConfigChanges(cfg, prev, defaults)
			if len(changed) > 0 {
				logger.Info("config changes override saved llm settings", "fields", changed)
				if err := s.save(ctx, llmSettingsKey, cfg); err != nil {
					return nil, fmt.Errorf("failed to save settings: %w", err)
				}
			}
		} else if cfg != defaults {
			logger.Warn("saved llm settings differ from config, keeping saved values", "mode", cfg.Mode, "config_mode", defaults.Mode)
		}
	}
	if err := s.save(ctx, llmConfigKey, defaults); err != nil {
		return nil, fmt.Errorf("failed to record config settings: %w", err)
	}
	s.llm = cfg
	return s, nil
}

// applyConfigChanges copies every field that differs between prev and next onto cfg.
func applyConfigChanges(cfg, prev, next domain.LLMProviderConfig) (domain.LLMProviderConfig, []string) {
	var changed []string
	if prev.Mode != next.Mode {
		cfg.Mode = next.Mode
		changed = append(changed, "mode")
	}
	if prev.LocalURL != next.LocalURL {
		cfg.LocalURL = next.LocalURL
		changed = append(changed, "local_url")
	}
	if prev.RemoteURL != next.RemoteURL {
		cfg.RemoteURL = next.RemoteURL
		changed = append(changed, "remote_url")
	}
	if prev.APIKey != next.APIKey {
		cfg.APIKey = next.APIKey
		changed = append(changed, "api_key")
	}
	if prev.DefaultModel != next.DefaultModel {
		cfg.DefaultModel = next.DefaultModel
		changed = append(changed, "default_model")
	}
	if prev.Temperature != next.Temperature {
		cfg.Temperature = next.Temperature
		changed = append(changed, "temperature")
	}
	return cfg, changed
}

// OnChange registers a callback run after every successful update.
func (s *SettingsStore) OnChange(fn OnChangeFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = append(s.onChange, fn)
}

// LLM returns the current settings with the API key in clear.
func (s *SettingsStore) LLM() domain.LLMProviderConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.llm
}

// MaskedLLM returns the settings safe for API responses.
func (s *SettingsStore) MaskedLLM() domain.LLMProviderConfig {
	cfg := s.LLM()
	cfg.APIKey = MaskSecret(cfg.APIKey)
	return cfg
}

// UpdateLLM validates, persists and publishes new settings. An empty or masked API key
// keeps the stored one.
func (s *SettingsStore) UpdateLLM(ctx context.Context, update domain.LLMProviderConfig) error {
	s.mu.Lock()

	update.Mode = strings.ToLower(strings.TrimSpace(update.Mode))
	if update.Mode == "" {
		update.Mode = "local"
	}
	if update.APIKey == "" || isMasked(update.APIKey) {
		update.APIKey = s.llm.APIKey
	}
	if err := validateLLM(update); err != nil {
		s.mu.Unlock()
		return err
	}
	if update.Mode == "remote" && update.APIKey == "" {
		s.mu.Unlock()
		return fmt.Errorf("LLM api_key is required when mode=remote")
	}

	if err := s.save(ctx, llmSettingsKey, update); err != nil {
		s.mu.Unlock()
		return err
	}
	s.llm = update
	callbacks := append([]OnChangeFunc(nil), s.onChange...)
	s.mu.Unlock()

	s.logger.Info("settings updated", "llm_mode", update.Mode, "model", update.DefaultModel)
	for _, fn := range callbacks {
		fn(update)
	}
	return nil
}

func (s *SettingsStore) load(ctx context.Context, key string) (domain.LLMProviderConfig, bool, error) {
	raw, err := s.repo.GetSetting(ctx, key)
	if err != nil {
		return domain.LLMProviderConfig{}, false, fmt.Errorf("load settings: %w", err)
	}
	if raw == "" {
		return domain.LLMProviderConfig{}, false, nil
	}

	var stored storedLLMConfig
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return domain.LLMProviderConfig{}, false, fmt.Errorf("unmarshal settings: %w", err)
	}

	cfg := domain.LLMProviderConfig{
		Mode:         stored.Mode,
		LocalURL:     stored.LocalURL,
		RemoteURL:    stored.RemoteURL,
		DefaultModel: stored.DefaultModel,
		Temperature:  stored.Temperature,
	}
	if stored.EncryptedAPIKey != "" {
		key, err := s.secret.Decrypt(stored.EncryptedAPIKey)
		if err != nil {
			s.logger.Warn("failed to decrypt LLM API key", "error", err)
		} else {
			cfg.APIKey = key
		}
	}
	return cfg, true, nil
}

func (s *SettingsStore) save(ctx context.Context, key string, cfg domain.LLMProviderConfig) error {
	stored := storedLLMConfig{
		Mode:         cfg.Mode,
		LocalURL:     cfg.LocalURL,
		RemoteURL:    cfg.RemoteURL,
		DefaultModel: cfg.DefaultModel,
		Temperature:  cfg.Temperature,
	}
	if cfg.APIKey != "" {
		enc, err := s.secret.Encrypt(cfg.APIKey)
		if err != nil {
			return fmt.Errorf("encrypt LLM API key: %w", err)
		}
		stored.EncryptedAPIKey = enc
	}

	raw, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	return s.repo.SaveSetting(ctx, key, string(raw))
}

// storedLLMConfig is the persisted form, secret encrypted.
type storedLLMConfig struct {
	Mode            string  `json:"mode"`
	LocalURL        string  `json:"local_url"`
	RemoteURL       string  `json:"remote_url"`
	EncryptedAPIKey string  `json:"encrypted_api_key,omitempty"`
	DefaultModel    string  `json:"default_model"`
	Temperature     float64 `json:"temperature"`
}
