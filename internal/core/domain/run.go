package domain

import "time"

// RunResult is what one agent loop run hands back to its caller.
type RunResult struct {
	Status      LoopState          `json:"status"`
	FinalAnswer string             `json:"final_answer,omitempty"`
	AbortReason string             `json:"abort_reason,omitempty"`
	StepsTaken  int                `json:"steps_taken"`
	ToolsUsed   []string           `json:"tools_used"`
	History     []ConversationTurn `json:"history"`
	Duration    time.Duration      `json:"duration"`
}

// Answer returns the final answer. Aborted runs return their partial answer when one
// exists, otherwise the abort reason.
func (r *RunResult) Answer() string {
	if r.FinalAnswer != "" {
		return r.FinalAnswer
	}
	return r.AbortReason
}

// RunRecord is a persisted run.
type RunRecord struct {
	ID        RunID     `json:"id"`
	UserID    string    `json:"user_id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
	RunResult
}
