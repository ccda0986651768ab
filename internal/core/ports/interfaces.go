package ports

import (
	"context"

	"github.com/manthysbr/expense-agent/internal/core/domain"
)

// ExpenseRepository persists expenses and budgets.
type ExpenseRepository interface {
	// CreateExpense stores a normalized expense.
	CreateExpense(ctx context.Context, e domain.Expense) error

	// ListExpenses returns expenses newest first.
	ListExpenses(ctx context.Context, filter domain.ExpenseFilter) ([]domain.Expense, error)

	// TotalsByCategory sums spending per category for a user.
	TotalsByCategory(ctx context.Context, userID string) ([]domain.CategoryTotal, error)

	// UpsertBudget creates or replaces the budget for (user, category).
	UpsertBudget(ctx context.Context, b domain.Budget) (domain.Budget, error)

	// ListBudgets returns a user's budgets ordered by category.
	ListBudgets(ctx context.Context, userID string) ([]domain.Budget, error)
}

// RunRepository persists agent runs.
type RunRepository interface {
	SaveRun(ctx context.Context, run domain.RunRecord) error
	GetRun(ctx context.Context, id domain.RunID) (domain.RunRecord, error)
}

// SettingsRepository stores key/value settings.
type SettingsRepository interface {
	GetSetting(ctx context.Context, key string) (string, error)
	SaveSetting(ctx context.Context, key string, value string) error
}

// Repository abstracts the persistent storage (DuckDB or SQLite)
type Repository interface {
	ExpenseRepository
	RunRepository
	SettingsRepository

	Ping(ctx context.Context) error
	Close() error
}
