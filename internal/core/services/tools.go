package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/manthysbr/expense-agent/internal/core/domain"
)

// AddExpenseArgs are the arguments of add_expense.
type AddExpenseArgs struct {
	Amount      float64         `json:"amount" jsonschema:"exclusiveMinimum=0" jsonschema_description:"Amount in dollars, rounded to cents"`
	Category    domain.Category `json:"category" jsonschema:"enum=food,enum=transport,enum=entertainment,enum=shopping,enum=bills,enum=other" jsonschema_description:"Expense category"`
	Description string          `json:"description" jsonschema:"minLength=1,maxLength=200" jsonschema_description:"What was purchased"`
}

func (a AddExpenseArgs) Validate() error {
	_, err := domain.ExpenseCreate(a).Normalize()
	return err
}

// GetSpendingSummaryArgs are the arguments of get_spending_summary.
type GetSpendingSummaryArgs struct {
	Category domain.Category `json:"category,omitempty" jsonschema:"enum=food,enum=transport,enum=entertainment,enum=shopping,enum=bills,enum=other" jsonschema_description:"Optional category to report on"`
}

// SetBudgetArgs are the arguments of set_budget.
type SetBudgetArgs struct {
	Category domain.Category `json:"category" jsonschema:"enum=food,enum=transport,enum=entertainment,enum=shopping,enum=bills,enum=other" jsonschema_description:"Category the limit applies to"`
	Amount   float64         `json:"amount" jsonschema:"exclusiveMinimum=0" jsonschema_description:"Budget limit in dollars"`
}

func (a SetBudgetArgs) Validate() error {
	_, err := domain.BudgetCreate(a).Normalize()
	return err
}

// CheckBudgetsArgs is empty: check_budgets takes no arguments.
type CheckBudgetsArgs struct{}

// ListExpensesArgs are the arguments of list_expenses.
type ListExpensesArgs struct {
	Category domain.Category `json:"category,omitempty" jsonschema:"enum=food,enum=transport,enum=entertainment,enum=shopping,enum=bills,enum=other" jsonschema_description:"Optional category filter"`
	Limit    int             `json:"limit,omitempty" jsonschema:"minimum=1,maximum=100" jsonschema_description:"Maximum number of expenses, newest first (default 10)"`
}

// NewExpenseTools builds the ledger tools bound to the given service. The acting user
// is read from the context.
func NewExpenseTools(ledger *LedgerService) []*domain.Tool {
	return []*domain.Tool{
		domain.MustTypedTool("add_expense", "Add a new expense to track spending",
			func(ctx context.Context, args AddExpenseArgs) (domain.ToolResult, error) {
				e, err := ledger.AddExpense(ctx, UserFromContext(ctx), domain.ExpenseCreate(args))
				if err != nil {
					return domain.ToolResult{}, err
				}
				return domain.ToolSucceeded(
					fmt.Sprintf("Expense added: $%.2f for %s (%s)", e.Amount, e.Category, e.Description),
					map[string]any{"expense_id": string(e.ID), "amount": e.Amount, "category": string(e.Category)},
				), nil
			}),

		domain.MustTypedTool("get_spending_summary", "Get spending totals by category, or for one category",
			func(ctx context.Context, args GetSpendingSummaryArgs) (domain.ToolResult, error) {
				userID := UserFromContext(ctx)
				if args.Category != "" {
					t, err := ledger.CategoryTotal(ctx, userID, args.Category)
					if err != nil {
						return domain.ToolResult{}, err
					}
					return domain.ToolSucceeded(
						fmt.Sprintf("Category '%s': %d expenses, total $%.2f", t.Category, t.Count, t.Total),
						map[string]any{"totals": map[string]any{string(t.Category): t.Total}},
					), nil
				}

				sum, err := ledger.Summary(ctx, userID)
				if err != nil {
					return domain.ToolResult{}, err
				}
				totals := make(map[string]any, len(sum.Totals))
				var b strings.Builder
				b.WriteString("Spending by category:\n")
				for _, t := range sum.Totals {
					fmt.Fprintf(&b, "  - %s: $%.2f\n", t.Category, t.Total)
					totals[string(t.Category)] = t.Total
				}
				fmt.Fprintf(&b, "Grand total: $%.2f", sum.Total)
				return domain.ToolSucceeded(b.String(), map[string]any{"totals": totals, "total": sum.Total}), nil
			}),

		domain.MustTypedTool("set_budget", "Set the spending limit for a category",
			func(ctx context.Context, args SetBudgetArgs) (domain.ToolResult, error) {
				budget, err := ledger.SetBudget(ctx, UserFromContext(ctx), domain.BudgetCreate(args))
				if err != nil {
					return domain.ToolResult{}, err
				}
				return domain.ToolSucceeded(
					fmt.Sprintf("Budget set for %s: $%.2f", budget.Category, budget.Amount),
					map[string]any{"category": string(budget.Category), "amount": budget.Amount},
				), nil
			}),

		domain.MustTypedTool("check_budgets", "Check whether any category is over budget",
			func(ctx context.Context, _ CheckBudgetsArgs) (domain.ToolResult, error) {
				alerts, err := ledger.BudgetAlerts(ctx, UserFromContext(ctx))
				if err != nil {
					return domain.ToolResult{}, err
				}
				data := make([]any, 0, len(alerts))
				if len(alerts) == 0 {
					return domain.ToolSucceeded("All categories are within budget.", map[string]any{"alerts": data}), nil
				}
				var b strings.Builder
				b.WriteString("Budget alerts:\n")
				for _, a := range alerts {
					fmt.Fprintf(&b, "  - %s: $%.2f spent (budget $%.2f), over by $%.2f\n", a.Category, a.Spent, a.Budget, a.Overage)
					data = append(data, map[string]any{
						"category": string(a.Category),
						"spent":    a.Spent,
						"budget":   a.Budget,
						"overage":  a.Overage,
					})
				}
				return domain.ToolSucceeded(strings.TrimRight(b.String(), "\n"), map[string]any{"alerts": data}), nil
			}),

		domain.MustTypedTool("list_expenses", "List recent expenses, newest first",
			func(ctx context.Context, args ListExpensesArgs) (domain.ToolResult, error) {
				limit := args.Limit
				if limit == 0 {
					limit = 10
				}
				expenses, err := ledger.ListExpenses(ctx, domain.ExpenseFilter{
					UserID:   UserFromContext(ctx),
					Category: args.Category,
					Limit:    limit,
				})
				if err != nil {
					return domain.ToolResult{}, err
				}
				if len(expenses) == 0 {
					return domain.ToolSucceeded("No expenses recorded.", map[string]any{"expenses": []any{}}), nil
				}
				var b strings.Builder
				items := make([]any, 0, len(expenses))
				for _, e := range expenses {
					fmt.Fprintf(&b, "- %s $%.2f %s: %s\n", e.CreatedAt.Format("2006-01-02"), e.Amount, e.Category, e.Description)
					items = append(items, map[string]any{
						"id":          string(e.ID),
						"amount":      e.Amount,
						"category":    string(e.Category),
						"description": e.Description,
						"created_at":  e.CreatedAt,
					})
				}
				return domain.ToolSucceeded(strings.TrimRight(b.String(), "\n"), map[string]any{"expenses": items}), nil
			}),
	}
}

// NewExpenseToolRegistry registers the ledger tools.
func NewExpenseToolRegistry(ledger *LedgerService) (*domain.ToolRegistry, error) {
	return domain.NewToolRegistry(NewExpenseTools(ledger)...)
}
