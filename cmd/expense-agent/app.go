package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/manthysbr/expense-agent/internal/adapters/providers"
	appconfig "github.com/manthysbr/expense-agent/internal/config"
	"github.com/manthysbr/expense-agent/internal/core/domain"
	"github.com/manthysbr/expense-agent/internal/core/ports"
	"github.com/manthysbr/expense-agent/internal/core/services"
)

// app holds the wired services shared by every command.
type app struct {
	cfg      *domain.AppConfig
	logger   *slog.Logger
	repo     ports.Repository
	ledger   *services.LedgerService
	tools    *domain.ToolRegistry
	router   *services.ModelRouter
	settings *appconfig.SettingsStore
	agent    *services.AgentService
}

func buildApp(ctx context.Context, logger *slog.Logger, configPath string) (*app, error) {
	cfg, err := appconfig.Load(configPath)
	if err != nil {
		return nil, err
	}

	repo, err := providers.OpenRepository(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Storage.Driver, err)
	}
	logger.Info("store ready", "driver", cfg.Storage.Driver, "path", cfg.Storage.Path)

	a := &app{cfg: cfg, logger: logger, repo: repo}
	if err := a.wire(ctx); err != nil {
		_ = repo.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) wire(ctx context.Context) error {
	secretKey, err := appconfig.NewSecretKey("")
	if err != nil {
		return fmt.Errorf("failed to initialize secret key: %w", err)
	}
	a.settings, err = appconfig.NewSettingsStore(ctx, a.logger, a.repo, secretKey, a.cfg.Providers.LLM)
	if err != nil {
		return fmt.Errorf("failed to initialize settings: %w", err)
	}

	llmCfg := a.settings.LLM()
	provider, err := providers.BuildLLM(llmCfg)
	if err != nil {
		// runs fail with model unavailable until settings are fixed
		a.logger.Warn("llm provider not available", "mode", llmCfg.Mode, "error", err)
	}
	a.router = services.NewModelRouter(a.logger, provider, llmCfg.DefaultModel)

	a.settings.OnChange(func(cfg domain.LLMProviderConfig) {
		p, err := providers.BuildLLM(cfg)
		if err != nil {
			a.logger.Error("failed to rebuild llm provider", "mode", cfg.Mode, "error", err)
			return
		}
		a.router.UpdateProvider(p, cfg.DefaultModel)
	})

	a.ledger = services.NewLedgerService(a.logger, a.repo)
	a.tools, err = services.NewExpenseToolRegistry(a.ledger)
	if err != nil {
		return err
	}

	completer, err := services.NewPromptCompleter(a.logger, a.router, a.tools)
	if err != nil {
		return err
	}
	executor := services.NewToolExecutor(a.logger, a.tools)
	loop := services.NewAgentLoop(a.logger, completer, executor, a.cfg.Agent)
	runs := services.NewRunStore(a.repo, 128)
	a.agent = services.NewAgentService(a.logger, loop, runs, a.cfg.Agent.RunTimeout)
	a.agent.SetRunLimiter(services.NewRunLimiter(a.logger, int64(a.cfg.Agent.MaxConcurrent)))
	return nil
}

func (a *app) Close() error {
	return a.repo.Close()
}
