package services

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manthysbr/expense-agent/internal/core/domain"
)

func TestParseAgentThought_ToolCall(t *testing.T) {
	raw := `
	{"thought":"record it","needs_tool":true,"tool_name":"add_expense",
	 "tool_input":{"amount":50,"category":"food","description":"lunch"}}  `

	got, err := ParseAgentThought(raw)
	require.NoError(t, err)
	assert.True(t, got.NeedsTool)
	assert.Equal(t, "add_expense", got.ToolName)
	assert.Equal(t, map[string]any{"amount": json.Number("50"), "category": "food", "description": "lunch"}, got.ToolInput)
	assert.Empty(t, got.FinalAnswer)
}

func TestParseAgentThought_OutOfRangeArgumentLeftToTool(t *testing.T) {
	got, err := ParseAgentThought(`{"thought":"add","needs_tool":true,"tool_name":"add_expense","tool_input":{"amount":1e400,"category":"food","description":"x"}}`)
	require.NoError(t, err)
	assert.Equal(t, json.Number("1e400"), got.ToolInput["amount"])
}

func TestParseAgentThought_FinalAnswer(t *testing.T) {
	got, err := ParseAgentThought(`{"thought":"done","needs_tool":false,"final_answer":"Added.","tool_name":null,"tool_input":null}`)
	require.NoError(t, err)
	assert.False(t, got.NeedsTool)
	assert.Equal(t, "Added.", got.FinalAnswer)
	assert.Empty(t, got.ToolName)
	assert.Nil(t, got.ToolInput)
}

func TestParseAgentThought_EmptyToolInputAllowed(t *testing.T) {
	got, err := ParseAgentThought(`{"thought":"","needs_tool":true,"tool_name":"check_budgets","tool_input":{},"final_answer":null}`)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{}, got.ToolInput)
}

func TestParseAgentThought_Rejects(t *testing.T) {
	cases := map[string]string{
		"empty":                  "   ",
		"free text":              "Thought: add it\nAction: add_expense",
		"code fence":             "```json\n{\"thought\":\"x\",\"needs_tool\":false,\"final_answer\":\"y\"}\n```",
		"trailing text":          `{"thought":"x","needs_tool":false,"final_answer":"y"} thanks`,
		"array":                  `[{"thought":"x"}]`,
		"missing thought":        `{"needs_tool":false,"final_answer":"y"}`,
		"missing needs_tool":     `{"thought":"x","final_answer":"y"}`,
		"needs_tool as string":   `{"thought":"x","needs_tool":"false","final_answer":"y"}`,
		"unknown field":          `{"thought":"x","needs_tool":false,"final_answer":"y","confidence":1}`,
		"tool without name":      `{"thought":"x","needs_tool":true,"tool_input":{}}`,
		"tool with blank name":   `{"thought":"x","needs_tool":true,"tool_name":"  ","tool_input":{}}`,
		"tool without input":     `{"thought":"x","needs_tool":true,"tool_name":"check_budgets"}`,
		"tool input not object":  `{"thought":"x","needs_tool":true,"tool_name":"check_budgets","tool_input":[]}`,
		"tool with final answer": `{"thought":"x","needs_tool":true,"tool_name":"check_budgets","tool_input":{},"final_answer":"y"}`,
		"answer missing":         `{"thought":"x","needs_tool":false}`,
		"answer empty":           `{"thought":"x","needs_tool":false,"final_answer":""}`,
		"answer blank":           `{"thought":"x","needs_tool":false,"final_answer":"  \n"}`,
		"answer with tool name":  `{"thought":"x","needs_tool":false,"final_answer":"y","tool_name":"check_budgets"}`,
		"answer with tool input": `{"thought":"x","needs_tool":false,"final_answer":"y","tool_input":{}}`,
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseAgentThought(raw)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrMalformedOutput)

			var mo *domain.MalformedOutputError
			require.True(t, errors.As(err, &mo))
			assert.Equal(t, raw, mo.Raw)
			assert.NotEmpty(t, mo.Reason)
		})
	}
}

func TestParseAgentThought_Deterministic(t *testing.T) {
	inputs := []string{
		`{"thought":"a","needs_tool":true,"tool_name":"list_expenses","tool_input":{"limit":3}}`,
		`{"thought":"a","needs_tool":false,"final_answer":"b"}`,
		`not json`,
		`{"thought":"a","needs_tool":true}`,
	}
	for _, in := range inputs {
		first, firstErr := ParseAgentThought(in)
		for i := 0; i < 5; i++ {
			again, againErr := ParseAgentThought(in)
			assert.Equal(t, first, again)
			if firstErr == nil {
				assert.NoError(t, againErr)
			} else {
				require.Error(t, againErr)
				assert.Equal(t, firstErr.Error(), againErr.Error())
			}
		}
	}
}

func TestAgentThoughtSchema_IsExposed(t *testing.T) {
	s := AgentThoughtSchema()
	assert.Equal(t, "object", s["type"])
	assert.Equal(t, false, s["additionalProperties"])
}
