package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/semaphore"
)

// ErrAgentBusy is returned when no run slot frees up before the caller gives up.
var ErrAgentBusy = errors.New("agent busy")

// RunLimiter bounds how many agent runs talk to the model at once.
type RunLimiter struct {
	logger *slog.Logger
	sem    *semaphore.Weighted
	limit  int64
}

// NewRunLimiter allows max concurrent runs; max <= 0 defaults to 4.
func NewRunLimiter(logger *slog.Logger, max int64) *RunLimiter {
	if max <= 0 {
		max = 4
	}
	return &RunLimiter{
		logger: logger,
		sem:    semaphore.NewWeighted(max),
		limit:  max,
	}
}

// Acquire blocks until a slot is free or ctx is done. The returned func releases the
// slot and must be called exactly once.
func (l *RunLimiter) Acquire(ctx context.Context) (func(), error) {
	if !l.sem.TryAcquire(1) {
		l.logger.Debug("waiting for run slot", "limit", l.limit)
		if err := l.sem.Acquire(ctx, 1); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrAgentBusy, err)
		}
	}
	return func() { l.sem.Release(1) }, nil
}

// Limit returns the configured number of slots.
func (l *RunLimiter) Limit() int64 {
	return l.limit
}
