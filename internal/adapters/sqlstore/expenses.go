package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/manthysbr/expense-agent/internal/core/domain"
)

func (r *Repository) CreateExpense(ctx context.Context, e domain.Expense) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO expenses (id, user_id, amount, category, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		string(e.ID), e.UserID, e.Amount, string(e.Category), e.Description, e.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}
	return nil
}

func (r *Repository) ListExpenses(ctx context.Context, f domain.ExpenseFilter) ([]domain.Expense, error) {
	var b strings.Builder
	b.WriteString(`SELECT id, user_id, amount, category, description, created_at FROM expenses WHERE user_id = ?`)
	args := []any{f.UserID}
	if f.Category != "" {
		b.WriteString(` AND category = ?`)
		args = append(args, string(f.Category))
	}
	b.WriteString(` ORDER BY created_at DESC, id DESC`)
	if f.Limit > 0 {
		fmt.Fprintf(&b, ` LIMIT %d`, f.Limit)
	}

	rows, err := r.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	out := []domain.Expense{}
	for rows.Next() {
		var e domain.Expense
		var id, category string
		var created time.Time
		if err := rows.Scan(&id, &e.UserID, &e.Amount, &category, &e.Description, &created); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		e.ID = domain.ExpenseID(id)
		e.Category = domain.Category(category)
		e.CreatedAt = created.UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *Repository) TotalsByCategory(ctx context.Context, userID string) ([]domain.CategoryTotal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT category, SUM(amount), COUNT(*)
		FROM expenses
		WHERE user_id = ?
		GROUP BY category
		ORDER BY category`, userID)
	if err != nil {
		return nil, fmt.Errorf("query totals: %w", err)
	}
	defer rows.Close()

	out := []domain.CategoryTotal{}
	for rows.Next() {
		var t domain.CategoryTotal
		var category string
		var count int64
		if err := rows.Scan(&category, &t.Total, &count); err != nil {
			return nil, fmt.Errorf("scan total: %w", err)
		}
		t.Category = domain.Category(category)
		t.Total = domain.RoundCents(t.Total)
		t.Count = int(count)
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *Repository) UpsertBudget(ctx context.Context, b domain.Budget) (domain.Budget, error) {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO budgets (user_id, category, amount, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id, category) DO UPDATE SET
			amount     = excluded.amount,
			updated_at = excluded.updated_at`,
		b.UserID, string(b.Category), b.Amount, b.CreatedAt.UTC(), b.UpdatedAt.UTC(),
	)
	if err != nil {
		return domain.Budget{}, fmt.Errorf("upsert budget: %w", err)
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT user_id, category, amount, created_at, updated_at
		FROM budgets WHERE user_id = ? AND category = ?`, b.UserID, string(b.Category))
	var out domain.Budget
	var category string
	if err := row.Scan(&out.UserID, &category, &out.Amount, &out.CreatedAt, &out.UpdatedAt); err != nil {
		return domain.Budget{}, fmt.Errorf("read budget: %w", err)
	}
	out.Category = domain.Category(category)
	out.CreatedAt = out.CreatedAt.UTC()
	out.UpdatedAt = out.UpdatedAt.UTC()
	return out, nil
}

func (r *Repository) ListBudgets(ctx context.Context, userID string) ([]domain.Budget, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT user_id, category, amount, created_at, updated_at
		FROM budgets WHERE user_id = ?
		ORDER BY category`, userID)
	if err != nil {
		return nil, fmt.Errorf("query budgets: %w", err)
	}
	defer rows.Close()

	out := []domain.Budget{}
	for rows.Next() {
		var b domain.Budget
		var category string
		if err := rows.Scan(&b.UserID, &category, &b.Amount, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		b.Category = domain.Category(category)
		b.CreatedAt = b.CreatedAt.UTC()
		b.UpdatedAt = b.UpdatedAt.UTC()
		out = append(out, b)
	}
	return out, rows.Err()
}
