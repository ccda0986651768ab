package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/manthysbr/expense-agent/internal/core/domain"
	"github.com/manthysbr/expense-agent/internal/core/services"
)

func init() {
	color.NoColor = true
}

func TestRenderRun_Text(t *testing.T) {
	var buf bytes.Buffer
	rec := domain.RunRecord{
		ID: "run-1",
		RunResult: domain.RunResult{
			Status:      domain.StateDone,
			FinalAnswer: "You spent $12.50 on food.",
			StepsTaken:  2,
			ToolsUsed:   []string{"get_spending_summary"},
			Duration:    1234 * time.Millisecond,
		},
	}
	require.NoError(t, renderRun(&buf, "text", rec))

	out := buf.String()
	assert.Contains(t, out, "agent> You spent $12.50 on food.")
	assert.Contains(t, out, "steps: 2 | tools: get_spending_summary | 1.234s")
}

func TestRenderRun_YAMLAborted(t *testing.T) {
	var buf bytes.Buffer
	rec := domain.RunRecord{
		ID: "run-2",
		RunResult: domain.RunResult{
			Status:      domain.StateAborted,
			AbortReason: "malformed model output: not valid JSON",
		},
	}
	require.NoError(t, renderRun(&buf, "yaml", rec))

	var got map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "ABORTED", got["status"])
	assert.Equal(t, "malformed model output: not valid JSON", got["answer"])
	assert.Equal(t, []any{}, got["tools_used"])
}

func TestRenderTools(t *testing.T) {
	reg, err := services.NewExpenseToolRegistry(nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, renderTools(&buf, "yaml", reg.List()))

	var got []map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 5)
	assert.Equal(t, "add_expense", got[0]["name"])
	assert.Contains(t, got[0]["input_schema"], "properties")
}

func TestNewLogger(t *testing.T) {
	_, err := newLogger(&bytes.Buffer{}, "debug")
	assert.NoError(t, err)
	_, err = newLogger(&bytes.Buffer{}, "loud")
	assert.Error(t, err)
}

func TestRootCmd_Commands(t *testing.T) {
	root := newRootCmd()
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"serve", "chat", "tools"})

	chat, _, err := root.Find([]string{"chat"})
	require.NoError(t, err)
	assert.Error(t, chat.Args(chat, nil), "one-shot chat needs a message")
}

type stubChatter struct {
	rec domain.RunRecord
	err error
}

func (s stubChatter) Chat(context.Context, string, string) (domain.RunRecord, error) {
	return s.rec, s.err
}

func TestChatOnce_NoRunReturnsError(t *testing.T) {
	opts := &chatOptions{userID: domain.DefaultUserID, output: "text"}
	var buf bytes.Buffer

	busy := fmt.Errorf("%w: %w", services.ErrAgentBusy, context.DeadlineExceeded)
	err := chatOnce(context.Background(), &buf, stubChatter{err: busy}, opts, "hi")
	assert.ErrorIs(t, err, services.ErrAgentBusy)
	assert.Empty(t, buf.String())

	err = chatOnce(context.Background(), &buf, stubChatter{err: context.Canceled}, opts, "hi")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, buf.String())
}

func TestChatOnce_AbortedRunIsRendered(t *testing.T) {
	opts := &chatOptions{userID: domain.DefaultUserID, output: "text"}
	var buf bytes.Buffer
	rec := domain.RunRecord{
		ID:        domain.NewRunID(),
		RunResult: domain.RunResult{Status: domain.StateAborted, FinalAnswer: "partial", AbortReason: "step limit"},
	}

	err := chatOnce(context.Background(), &buf, stubChatter{rec: rec, err: errors.New("step limit")}, opts, "hi")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "partial")
}
