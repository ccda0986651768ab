package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/manthysbr/expense-agent/internal/core/domain"
	"github.com/manthysbr/expense-agent/internal/core/ports"
)

// LedgerService holds the expense and budget rules on top of the repository. Both the
// agent tools and the HTTP API go through it.
type LedgerService struct {
	logger *slog.Logger
	repo   ports.ExpenseRepository
	now    func() time.Time
}

func NewLedgerService(logger *slog.Logger, repo ports.ExpenseRepository) *LedgerService {
	return &LedgerService{
		logger: logger,
		repo:   repo,
		now:    time.Now,
	}
}

func userOrDefault(userID string) string {
	if userID == "" {
		return domain.DefaultUserID
	}
	return userID
}

// AddExpense validates and records an expense.
func (s *LedgerService) AddExpense(ctx context.Context, userID string, in domain.ExpenseCreate) (domain.Expense, error) {
	norm, err := in.Normalize()
	if err != nil {
		return domain.Expense{}, err
	}

	e := domain.Expense{
		ID:          domain.NewExpenseID(),
		UserID:      userOrDefault(userID),
		Amount:      norm.Amount,
		Category:    norm.Category,
		Description: norm.Description,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.repo.CreateExpense(ctx, e); err != nil {
		return domain.Expense{}, fmt.Errorf("create expense: %w", err)
	}

	s.logger.Info("expense added", "id", e.ID, "user_id", e.UserID, "amount", e.Amount, "category", e.Category)
	return e, nil
}

// ListExpenses returns expenses newest first.
func (s *LedgerService) ListExpenses(ctx context.Context, filter domain.ExpenseFilter) ([]domain.Expense, error) {
	filter.UserID = userOrDefault(filter.UserID)
	if filter.Category != "" {
		cat, err := domain.ParseCategory(string(filter.Category))
		if err != nil {
			return nil, err
		}
		filter.Category = cat
	}
	if filter.Limit < 0 {
		filter.Limit = 0
	}

	expenses, err := s.repo.ListExpenses(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return expenses, nil
}

// CategoryTotal returns spending for a single category, zero when nothing was spent.
func (s *LedgerService) CategoryTotal(ctx context.Context, userID string, category domain.Category) (domain.CategoryTotal, error) {
	cat, err := domain.ParseCategory(string(category))
	if err != nil {
		return domain.CategoryTotal{}, err
	}
	totals, err := s.repo.TotalsByCategory(ctx, userOrDefault(userID))
	if err != nil {
		return domain.CategoryTotal{}, fmt.Errorf("totals by category: %w", err)
	}
	for _, t := range totals {
		if t.Category == cat {
			return t, nil
		}
	}
	return domain.CategoryTotal{Category: cat}, nil
}

// Summary returns per-category totals, the grand total and budget alerts.
func (s *LedgerService) Summary(ctx context.Context, userID string) (domain.SpendingSummary, error) {
	userID = userOrDefault(userID)
	totals, err := s.repo.TotalsByCategory(ctx, userID)
	if err != nil {
		return domain.SpendingSummary{}, fmt.Errorf("totals by category: %w", err)
	}
	alerts, err := s.alerts(ctx, userID, totals)
	if err != nil {
		return domain.SpendingSummary{}, err
	}

	sum := domain.SpendingSummary{UserID: userID, Totals: totals, Alerts: alerts}
	for _, t := range totals {
		sum.Total += t.Total
	}
	sum.Total = domain.RoundCents(sum.Total)
	if sum.Totals == nil {
		sum.Totals = []domain.CategoryTotal{}
	}
	return sum, nil
}

// SetBudget creates or replaces the budget of one category.
func (s *LedgerService) SetBudget(ctx context.Context, userID string, in domain.BudgetCreate) (domain.Budget, error) {
	norm, err := in.Normalize()
	if err != nil {
		return domain.Budget{}, err
	}
	now := s.now().UTC()
	b, err := s.repo.UpsertBudget(ctx, domain.Budget{
		UserID:    userOrDefault(userID),
		Category:  norm.Category,
		Amount:    norm.Amount,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return domain.Budget{}, fmt.Errorf("set budget: %w", err)
	}
	s.logger.Info("budget set", "user_id", b.UserID, "category", b.Category, "amount", b.Amount)
	return b, nil
}

func (s *LedgerService) ListBudgets(ctx context.Context, userID string) ([]domain.Budget, error) {
	budgets, err := s.repo.ListBudgets(ctx, userOrDefault(userID))
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	return budgets, nil
}

// BudgetAlerts lists categories whose spending is strictly above their budget.
func (s *LedgerService) BudgetAlerts(ctx context.Context, userID string) ([]domain.BudgetAlert, error) {
	userID = userOrDefault(userID)
	totals, err := s.repo.TotalsByCategory(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("totals by category: %w", err)
	}
	return s.alerts(ctx, userID, totals)
}

func (s *LedgerService) alerts(ctx context.Context, userID string, totals []domain.CategoryTotal) ([]domain.BudgetAlert, error) {
	budgets, err := s.repo.ListBudgets(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	spent := make(map[domain.Category]float64, len(totals))
	for _, t := range totals {
		spent[t.Category] = t.Total
	}

	alerts := []domain.BudgetAlert{}
	for _, b := range budgets {
		if got := spent[b.Category]; got > b.Amount {
			alerts = append(alerts, domain.BudgetAlert{
				Category: b.Category,
				Budget:   b.Amount,
				Spent:    got,
				Overage:  domain.RoundCents(got - b.Amount),
			})
		}
	}
	return alerts, nil
}
