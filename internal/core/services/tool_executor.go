package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/manthysbr/expense-agent/internal/core/domain"
)

// ToolExecutor dispatches validated invocations against the registry. Every failure
// (unknown tool, bad arguments, execution error, panic) comes back as a failed
// ToolResult so the loop can hand it to the model.
type ToolExecutor struct {
	logger *slog.Logger
	tools  *domain.ToolRegistry
}

// NewToolExecutor creates an executor and seals the registry against further
// registration.
func NewToolExecutor(logger *slog.Logger, tools *domain.ToolRegistry) *ToolExecutor {
	tools.Seal()
	return &ToolExecutor{logger: logger, tools: tools}
}

// Tools returns the registry the executor dispatches against.
func (e *ToolExecutor) Tools() *domain.ToolRegistry {
	return e.tools
}

// Run executes one invocation.
func (e *ToolExecutor) Run(ctx context.Context, inv domain.ToolInvocation) (result domain.ToolResult) {
	start := time.Now()

	tool, err := e.tools.Lookup(inv.ToolName)
	if err != nil {
		e.logger.Warn("unknown tool requested", "tool", inv.ToolName)
		return domain.ToolFailed(domain.FailureUnknownTool,
			fmt.Sprintf("Unknown tool %q. Available tools: %s", inv.ToolName, strings.Join(e.tools.Names(), ", ")))
	}

	bound, err := tool.Bind(inv.Arguments)
	if err != nil {
		e.logger.Warn("invalid tool input", "tool", inv.ToolName, "error", err)
		return domain.ToolFailed(domain.FailureInvalidInput, err.Error())
	}

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("tool panicked", "tool", inv.ToolName, "panic", r)
			result = domain.ToolFailed(domain.FailureToolExecution,
				fmt.Sprintf("%s: tool %s panicked: %v", domain.ErrToolExecution, inv.ToolName, r))
		}
	}()

	result, err = tool.Run(ctx, bound)
	if err != nil {
		e.logger.Warn("tool execution failed", "tool", inv.ToolName, "error", err, "duration", time.Since(start))
		msg := err.Error()
		if !errors.Is(err, domain.ErrToolExecution) {
			msg = fmt.Sprintf("%s: %s", domain.ErrToolExecution, msg)
		}
		return domain.ToolFailed(domain.FailureToolExecution, msg)
	}
	if !result.Success && result.Failure == "" {
		result.Failure = domain.FailureToolExecution
	}

	e.logger.Info("tool executed", "tool", inv.ToolName, "success", result.Success, "duration", time.Since(start))
	return result
}
