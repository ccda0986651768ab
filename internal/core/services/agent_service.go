package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/manthysbr/expense-agent/internal/core/domain"
)

// MaxMessageLength bounds a chat message in characters.
const MaxMessageLength = 500

var ErrInvalidMessage = errors.New("invalid message")

// AgentService is the entry point for chat requests: it scopes a run to a user, bounds
// it with the configured timeout, and records the outcome.
type AgentService struct {
	logger  *slog.Logger
	loop    *AgentLoop
	runs    *RunStore
	limiter *RunLimiter
	timeout time.Duration
}

func NewAgentService(logger *slog.Logger, loop *AgentLoop, runs *RunStore, timeout time.Duration) *AgentService {
	return &AgentService{
		logger:  logger,
		loop:    loop,
		runs:    runs,
		timeout: timeout,
	}
}

// SetRunLimiter bounds concurrent runs. Without one, runs are not limited.
func (s *AgentService) SetRunLimiter(l *RunLimiter) {
	s.limiter = l
}

// Chat runs the agent for one message. Aborted runs return the record together with
// the abort error.
func (s *AgentService) Chat(ctx context.Context, userID, message string) (domain.RunRecord, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return domain.RunRecord{}, fmt.Errorf("%w: message is required", ErrInvalidMessage)
	}
	if utf8.RuneCountInString(message) > MaxMessageLength {
		return domain.RunRecord{}, fmt.Errorf("%w: message exceeds %d characters", ErrInvalidMessage, MaxMessageLength)
	}
	userID = userOrDefault(strings.TrimSpace(userID))

	record := domain.RunRecord{
		ID:        domain.NewRunID(),
		UserID:    userID,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}
	s.logger.Info("processing agent chat", "run_id", record.ID, "user_id", userID)

	runCtx := ContextWithUser(ctx, userID)
	if s.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(runCtx, s.timeout)
		defer cancel()
	}

	if s.limiter != nil {
		release, err := s.limiter.Acquire(runCtx)
		if err != nil {
			s.logger.Warn("no run slot available", "run_id", record.ID, "error", err)
			return domain.RunRecord{}, err
		}
		defer release()
	}

	result, runErr := s.loop.Run(runCtx, message)
	record.RunResult = *result

	if s.runs != nil {
		// a fresh context so a timed-out run is still recorded
		saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := s.runs.Save(saveCtx, record); err != nil {
			s.logger.Error("failed to persist run", "run_id", record.ID, "error", err)
		}
	}

	if runErr != nil {
		return record, runErr
	}
	s.logger.Info("agent chat completed", "run_id", record.ID, "steps", result.StepsTaken, "duration", result.Duration)
	return record, nil
}

// Run returns a recorded run.
func (s *AgentService) Run(ctx context.Context, id domain.RunID) (domain.RunRecord, error) {
	if s.runs == nil {
		return domain.RunRecord{}, domain.ErrRunNotFound
	}
	return s.runs.Get(ctx, id)
}
