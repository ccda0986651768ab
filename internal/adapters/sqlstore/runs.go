package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/manthysbr/expense-agent/internal/core/domain"
)

func (r *Repository) SaveRun(ctx context.Context, run domain.RunRecord) error {
	toolsJSON, err := json.Marshal(run.ToolsUsed)
	if err != nil {
		return fmt.Errorf("marshal tools: %w", err)
	}
	historyJSON, err := json.Marshal(run.History)
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO runs (id, user_id, message, status, final_answer, abort_reason,
		                  steps_taken, tools_used, history, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			status       = excluded.status,
			final_answer = excluded.final_answer,
			abort_reason = excluded.abort_reason,
			steps_taken  = excluded.steps_taken,
			tools_used   = excluded.tools_used,
			history      = excluded.history,
			duration_ms  = excluded.duration_ms`,
		string(run.ID), run.UserID, run.Message, string(run.Status), run.FinalAnswer, run.AbortReason,
		run.StepsTaken, string(toolsJSON), string(historyJSON), run.Duration.Milliseconds(), run.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert run: %w", err)
	}
	return nil
}

func (r *Repository) GetRun(ctx context.Context, id domain.RunID) (domain.RunRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, message, status, final_answer, abort_reason,
		       steps_taken, tools_used, history, duration_ms, created_at
		FROM runs WHERE id = ?`, string(id))

	var run domain.RunRecord
	var runID, status, toolsJSON, historyJSON string
	var steps, durationMs int64
	err := row.Scan(&runID, &run.UserID, &run.Message, &status, &run.FinalAnswer, &run.AbortReason,
		&steps, &toolsJSON, &historyJSON, &durationMs, &run.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.RunRecord{}, fmt.Errorf("%w: %s", domain.ErrRunNotFound, id)
	}
	if err != nil {
		return domain.RunRecord{}, fmt.Errorf("scan run: %w", err)
	}

	run.ID = domain.RunID(runID)
	run.Status = domain.LoopState(status)
	run.StepsTaken = int(steps)
	run.Duration = time.Duration(durationMs) * time.Millisecond
	run.CreatedAt = run.CreatedAt.UTC()
	if err := json.Unmarshal([]byte(toolsJSON), &run.ToolsUsed); err != nil {
		return domain.RunRecord{}, fmt.Errorf("unmarshal tools: %w", err)
	}
	// Tool arguments are kept verbatim; a float64 decode would reject values the
	// model sent that never fit one.
	dec := json.NewDecoder(strings.NewReader(historyJSON))
	dec.UseNumber()
	if err := dec.Decode(&run.History); err != nil {
		return domain.RunRecord{}, fmt.Errorf("unmarshal history: %w", err)
	}
	return run, nil
}
