package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/manthysbr/expense-agent/internal/core/domain"
)

// stepLimitMessage is the partial answer when no tool ever succeeded.
const stepLimitMessage = "I could not finish this request within the allowed number of steps. Please try again with a simpler request."

// ModelCompleter turns the conversation so far into the model's next raw reply.
type ModelCompleter interface {
	Complete(ctx context.Context, history []domain.ConversationTurn) (string, error)
}

// AgentLoop drives the REASONING / EXECUTING_TOOL state machine for one user message.
// It holds no per-run state, so one loop serves concurrent runs.
type AgentLoop struct {
	logger          *slog.Logger
	model           ModelCompleter
	executor        *ToolExecutor
	maxSteps        int
	maxParseRetries int
}

// NewAgentLoop creates a loop bounded by cfg. Non-positive MaxSteps falls back to the
// default; negative MaxParseRetries means no retry.
func NewAgentLoop(logger *slog.Logger, model ModelCompleter, executor *ToolExecutor, cfg domain.AgentConfig) *AgentLoop {
	defaults := domain.DefaultConfig().Agent
	if cfg.MaxSteps <= 0 {
		cfg.MaxSteps = defaults.MaxSteps
	}
	if cfg.MaxParseRetries < 0 {
		cfg.MaxParseRetries = 0
	}
	return &AgentLoop{
		logger:          logger,
		model:           model,
		executor:        executor,
		maxSteps:        cfg.MaxSteps,
		maxParseRetries: cfg.MaxParseRetries,
	}
}

// Run handles one user message until a final answer or an abort. It always returns a
// non-nil result; the error is non-nil exactly when the run was aborted.
func (l *AgentLoop) Run(ctx context.Context, userMessage string) (*domain.RunResult, error) {
	start := time.Now()
	session := NewConversationSession(userMessage)
	state := domain.StateReasoning
	toolsUsed := []string{}
	parseFailures := 0
	var pending domain.AgentThought

	finish := func(status domain.LoopState, answer, reason string) *domain.RunResult {
		return &domain.RunResult{
			Status:      status,
			FinalAnswer: answer,
			AbortReason: reason,
			StepsTaken:  session.Steps(),
			ToolsUsed:   toolsUsed,
			History:     session.History(),
			Duration:    time.Since(start),
		}
	}
	abort := func(answer string, err error) (*domain.RunResult, error) {
		l.logger.Warn("agent run aborted", "error", err, "steps", session.Steps())
		return finish(domain.StateAborted, answer, err.Error()), err
	}

	for {
		switch state {
		case domain.StateReasoning:
			if err := ctx.Err(); err != nil {
				return abort("", fmt.Errorf("agent run cancelled: %w", err))
			}
			if session.Steps() >= l.maxSteps {
				partial := stepLimitMessage
				if last, ok := session.LastSuccessfulResult(); ok {
					partial = last.Message
				}
				return abort(partial, fmt.Errorf("%w: %d steps", domain.ErrStepLimitExceeded, l.maxSteps))
			}

			raw, err := l.model.Complete(ctx, session.History())
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return abort("", fmt.Errorf("agent run cancelled: %w", ctxErr))
				}
				return abort("", fmt.Errorf("%w: %v", domain.ErrModelUnavailable, err))
			}
			l.logger.Debug("model replied", "step", session.Steps()+1, "raw", truncate(raw, 200))

			thought, err := ParseAgentThought(raw)
			if err != nil {
				parseFailures++
				var mo *domain.MalformedOutputError
				reason := err.Error()
				if errors.As(err, &mo) {
					reason = mo.Reason
				}
				l.logger.Warn("malformed model output", "attempt", parseFailures, "reason", reason)
				if parseFailures > l.maxParseRetries {
					return abort("", err)
				}
				session.Append(domain.SystemNoteTurn(fmt.Sprintf(
					"Your previous reply was rejected (%s). Reply with exactly one JSON object that matches the schema and nothing else.", reason)))
				continue
			}
			parseFailures = 0
			session.Append(domain.ThoughtTurn(thought))

			if !thought.NeedsTool {
				session.CompleteStep()
				l.logger.Info("agent run done", "steps", session.Steps(), "tools", toolsUsed)
				return finish(domain.StateDone, thought.FinalAnswer, ""), nil
			}
			pending = thought
			state = domain.StateExecutingTool

		case domain.StateExecutingTool:
			inv, _ := pending.Invocation()
			l.logger.Info("executing tool", "tool", inv.ToolName, "step", session.Steps()+1)
			result := l.executor.Run(ctx, inv)
			toolsUsed = append(toolsUsed, inv.ToolName)
			session.Append(domain.ToolResultTurn(inv, result))
			session.CompleteStep()
			state = domain.StateReasoning
		}
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
