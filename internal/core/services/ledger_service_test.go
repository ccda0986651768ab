package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manthysbr/expense-agent/internal/core/domain"
)

func TestLedgerService_AddAndSummarize(t *testing.T) {
	ctx := context.Background()
	repo := newMemLedgerRepo()
	ledger := NewLedgerService(testLogger(), repo)

	_, err := ledger.AddExpense(ctx, "", domain.ExpenseCreate{Amount: 12.499, Category: "food", Description: "lunch"})
	require.NoError(t, err)
	_, err = ledger.AddExpense(ctx, "", domain.ExpenseCreate{Amount: 30, Category: "transport", Description: "taxi"})
	require.NoError(t, err)
	_, err = ledger.AddExpense(ctx, "bob", domain.ExpenseCreate{Amount: 99, Category: "food", Description: "dinner"})
	require.NoError(t, err)

	sum, err := ledger.Summary(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultUserID, sum.UserID)
	assert.Equal(t, 42.5, sum.Total)
	assert.Len(t, sum.Totals, 2)
	assert.Empty(t, sum.Alerts)

	food, err := ledger.CategoryTotal(ctx, "", "food")
	require.NoError(t, err)
	assert.Equal(t, 12.5, food.Total)
	assert.Equal(t, 1, food.Count)

	bills, err := ledger.CategoryTotal(ctx, "", "bills")
	require.NoError(t, err)
	assert.Zero(t, bills.Total)
}

func TestLedgerService_RejectsInvalidExpense(t *testing.T) {
	ledger := NewLedgerService(testLogger(), newMemLedgerRepo())

	_, err := ledger.AddExpense(context.Background(), "", domain.ExpenseCreate{Amount: 0, Category: "food", Description: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidExpense)
}

func TestLedgerService_BudgetAlerts(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedgerService(testLogger(), newMemLedgerRepo())

	_, err := ledger.SetBudget(ctx, "", domain.BudgetCreate{Category: "food", Amount: 20})
	require.NoError(t, err)
	_, err = ledger.SetBudget(ctx, "", domain.BudgetCreate{Category: "transport", Amount: 100})
	require.NoError(t, err)
	// upsert replaces
	_, err = ledger.SetBudget(ctx, "", domain.BudgetCreate{Category: "food", Amount: 25})
	require.NoError(t, err)

	for _, amt := range []float64{10, 20} {
		_, err = ledger.AddExpense(ctx, "", domain.ExpenseCreate{Amount: amt, Category: "food", Description: "meal"})
		require.NoError(t, err)
	}

	budgets, err := ledger.ListBudgets(ctx, "")
	require.NoError(t, err)
	require.Len(t, budgets, 2)
	assert.Equal(t, 25.0, budgets[0].Amount)

	alerts, err := ledger.BudgetAlerts(ctx, "")
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, domain.BudgetAlert{Category: "food", Budget: 25, Spent: 30, Overage: 5}, alerts[0])
}

func TestLedgerService_ListExpensesFilters(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedgerService(testLogger(), newMemLedgerRepo())

	for _, c := range []domain.Category{"food", "bills", "food"} {
		_, err := ledger.AddExpense(ctx, "", domain.ExpenseCreate{Amount: 1, Category: c, Description: string(c)})
		require.NoError(t, err)
	}

	food, err := ledger.ListExpenses(ctx, domain.ExpenseFilter{Category: "FOOD"})
	require.NoError(t, err)
	assert.Len(t, food, 2)

	one, err := ledger.ListExpenses(ctx, domain.ExpenseFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, one, 1)

	_, err = ledger.ListExpenses(ctx, domain.ExpenseFilter{Category: "cars"})
	assert.ErrorIs(t, err, domain.ErrInvalidCategory)
}

func TestExpenseTools_Registered(t *testing.T) {
	reg, err := NewExpenseToolRegistry(NewLedgerService(testLogger(), newMemLedgerRepo()))
	require.NoError(t, err)
	assert.Equal(t, []string{"add_expense", "check_budgets", "get_spending_summary", "list_expenses", "set_budget"}, reg.Names())
}

func TestExpenseTools_EndToEnd(t *testing.T) {
	ctx := ContextWithUser(context.Background(), "carol")
	reg, err := NewExpenseToolRegistry(NewLedgerService(testLogger(), newMemLedgerRepo()))
	require.NoError(t, err)
	exec := NewToolExecutor(testLogger(), reg)

	run := func(name string, args map[string]any) domain.ToolResult {
		return exec.Run(ctx, domain.ToolInvocation{ToolName: name, Arguments: args})
	}

	res := run("set_budget", map[string]any{"category": "entertainment", "amount": 15})
	require.True(t, res.Success, res.Message)

	res = run("add_expense", map[string]any{"amount": 20.004, "category": "entertainment", "description": "cinema"})
	require.True(t, res.Success, res.Message)
	assert.Equal(t, 20.0, res.Data["amount"])

	res = run("check_budgets", map[string]any{})
	require.True(t, res.Success)
	assert.Contains(t, res.Message, "entertainment")
	assert.Contains(t, res.Message, "over by $5.00")

	res = run("get_spending_summary", map[string]any{"category": "entertainment"})
	require.True(t, res.Success)
	assert.Contains(t, res.Message, "1 expenses, total $20.00")

	res = run("get_spending_summary", map[string]any{})
	require.True(t, res.Success)
	assert.Contains(t, res.Message, "Grand total: $20.00")

	res = run("list_expenses", map[string]any{"limit": 5})
	require.True(t, res.Success)
	assert.Contains(t, res.Message, "cinema")

	res = run("add_expense", map[string]any{"amount": 5, "category": "pets", "description": "food"})
	assert.Equal(t, domain.FailureInvalidInput, res.Failure)

	res = run("add_expense", map[string]any{"amount": 0.001, "category": "food", "description": "crumb"})
	assert.Equal(t, domain.FailureInvalidInput, res.Failure)

	res = run("list_expenses", map[string]any{"limit": 500})
	assert.Equal(t, domain.FailureInvalidInput, res.Failure)
}
