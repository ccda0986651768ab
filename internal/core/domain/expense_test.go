package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpenseCreate_Normalize(t *testing.T) {
	got, err := ExpenseCreate{Amount: 12.345, Category: "Food", Description: "  lunch "}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, 12.35, got.Amount)
	assert.Equal(t, CategoryFood, got.Category)
	assert.Equal(t, "lunch", got.Description)
}

func TestExpenseCreate_NormalizeRejects(t *testing.T) {
	cases := map[string]ExpenseCreate{
		"zero amount":      {Amount: 0, Category: CategoryFood, Description: "x"},
		"rounds to zero":   {Amount: 0.004, Category: CategoryFood, Description: "x"},
		"negative":         {Amount: -3, Category: CategoryFood, Description: "x"},
		"unknown category": {Amount: 3, Category: "cars", Description: "x"},
		"blank":            {Amount: 3, Category: CategoryFood, Description: "   "},
		"too long":         {Amount: 3, Category: CategoryFood, Description: strings.Repeat("a", MaxDescriptionLength+1)},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := in.Normalize()
			assert.ErrorIs(t, err, ErrInvalidExpense)
		})
	}
}

func TestBudgetCreate_Normalize(t *testing.T) {
	got, err := BudgetCreate{Category: "bills", Amount: 99.999}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, 100.0, got.Amount)

	_, err = BudgetCreate{Category: "bills", Amount: 0}.Normalize()
	assert.ErrorIs(t, err, ErrInvalidBudget)
}

func TestAgentThought_MarshalOnlyPopulatedBranch(t *testing.T) {
	data, err := json.Marshal(AgentThought{Thought: "t", NeedsTool: true, ToolName: "check_budgets"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"thought":"t","needs_tool":true,"tool_name":"check_budgets","tool_input":{}}`, string(data))

	data, err = json.Marshal(AgentThought{Thought: "t", FinalAnswer: "done", ToolName: "ignored"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"thought":"t","needs_tool":false,"final_answer":"done"}`, string(data))
}

func TestAgentThought_Invocation(t *testing.T) {
	inv, ok := AgentThought{NeedsTool: true, ToolName: "check_budgets"}.Invocation()
	require.True(t, ok)
	assert.Equal(t, "check_budgets", inv.ToolName)
	assert.NotNil(t, inv.Arguments)

	_, ok = AgentThought{FinalAnswer: "x"}.Invocation()
	assert.False(t, ok)
}
