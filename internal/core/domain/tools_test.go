package domain

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoArgs struct {
	Text  string `json:"text" jsonschema:"minLength=1"`
	Times int    `json:"times,omitempty" jsonschema:"minimum=1,maximum=3"`
}

func (a echoArgs) Validate() error {
	if a.Text == "forbidden" {
		return errors.New("text is forbidden")
	}
	return nil
}

func newEchoTool(t *testing.T, name string, calls *int) *Tool {
	t.Helper()
	tool, err := NewTypedTool(name, "echoes text", func(ctx context.Context, args echoArgs) (ToolResult, error) {
		*calls++
		return ToolSucceeded(args.Text, map[string]any{"times": args.Times}), nil
	})
	require.NoError(t, err)
	return tool
}

func TestToolRegistry_RegisterAndLookup(t *testing.T) {
	calls := 0
	reg, err := NewToolRegistry(newEchoTool(t, "echo", &calls))
	require.NoError(t, err)

	tool, err := reg.Lookup("echo")
	require.NoError(t, err)
	assert.Equal(t, "echo", tool.Name)

	_, err = reg.Lookup("missing")
	assert.ErrorIs(t, err, ErrUnknownTool)
}

func TestToolRegistry_DuplicateTool(t *testing.T) {
	calls := 0
	reg, err := NewToolRegistry(newEchoTool(t, "echo", &calls))
	require.NoError(t, err)

	err = reg.Register(newEchoTool(t, "echo", &calls))
	assert.ErrorIs(t, err, ErrDuplicateTool)
}

func TestToolRegistry_SealedRejectsRegistration(t *testing.T) {
	calls := 0
	reg, err := NewToolRegistry()
	require.NoError(t, err)
	reg.Seal()

	err = reg.Register(newEchoTool(t, "echo", &calls))
	assert.ErrorIs(t, err, ErrRegistrySealed)
}

func TestToolRegistry_ListIsSorted(t *testing.T) {
	calls := 0
	reg, err := NewToolRegistry(newEchoTool(t, "zeta", &calls), newEchoTool(t, "alpha", &calls))
	require.NoError(t, err)

	assert.Equal(t, []string{"alpha", "zeta"}, reg.Names())

	prompt := reg.FormatToolsForPrompt()
	assert.Contains(t, prompt, "- alpha: echoes text")
	assert.Contains(t, prompt, `"text"`)
}

func TestTool_BindRejectsBeforeRun(t *testing.T) {
	calls := 0
	tool := newEchoTool(t, "echo", &calls)

	cases := map[string]map[string]any{
		"missing required": {},
		"wrong type":       {"text": 12},
		"unknown field":    {"text": "hi", "loud": true},
		"out of range":     {"text": "hi", "times": 9},
		"custom validate":  {"text": "forbidden"},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := tool.Bind(args)
			assert.ErrorIs(t, err, ErrInvalidToolInput)
		})
	}
	assert.Zero(t, calls)
}

func TestTool_BindThenRun(t *testing.T) {
	calls := 0
	tool := newEchoTool(t, "echo", &calls)

	bound, err := tool.Bind(map[string]any{"text": "hi", "times": 2})
	require.NoError(t, err)

	res, err := tool.Run(context.Background(), bound)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "hi", res.Message)
	assert.Equal(t, 2, res.Data["times"])
	assert.Equal(t, 1, calls)
}

func TestNewTypedTool_RequiresName(t *testing.T) {
	_, err := NewTypedTool("  ", "x", func(ctx context.Context, args echoArgs) (ToolResult, error) {
		return ToolResult{}, nil
	})
	assert.Error(t, err)
}
