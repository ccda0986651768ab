package services

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/manthysbr/expense-agent/internal/core/domain"
)

// memLedgerRepo is an in-memory ports.ExpenseRepository.
type memLedgerRepo struct {
	mu       sync.Mutex
	expenses []domain.Expense
	budgets  map[string]domain.Budget
	failWith error
}

func newMemLedgerRepo() *memLedgerRepo {
	return &memLedgerRepo{budgets: map[string]domain.Budget{}}
}

func (r *memLedgerRepo) CreateExpense(ctx context.Context, e domain.Expense) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}
	r.expenses = append(r.expenses, e)
	return nil
}

func (r *memLedgerRepo) ListExpenses(ctx context.Context, f domain.ExpenseFilter) ([]domain.Expense, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Expense{}
	for i := len(r.expenses) - 1; i >= 0; i-- {
		e := r.expenses[i]
		if e.UserID != f.UserID || (f.Category != "" && e.Category != f.Category) {
			continue
		}
		out = append(out, e)
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out, nil
}

func (r *memLedgerRepo) TotalsByCategory(ctx context.Context, userID string) ([]domain.CategoryTotal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}
	byCat := map[domain.Category]*domain.CategoryTotal{}
	for _, e := range r.expenses {
		if e.UserID != userID {
			continue
		}
		t, ok := byCat[e.Category]
		if !ok {
			t = &domain.CategoryTotal{Category: e.Category}
			byCat[e.Category] = t
		}
		t.Total = domain.RoundCents(t.Total + e.Amount)
		t.Count++
	}
	out := []domain.CategoryTotal{}
	for _, t := range byCat {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out, nil
}

func (r *memLedgerRepo) UpsertBudget(ctx context.Context, b domain.Budget) (domain.Budget, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := b.UserID + "/" + string(b.Category)
	if prev, ok := r.budgets[key]; ok {
		b.CreatedAt = prev.CreatedAt
	}
	r.budgets[key] = b
	return b, nil
}

func (r *memLedgerRepo) ListBudgets(ctx context.Context, userID string) ([]domain.Budget, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Budget{}
	for _, b := range r.budgets {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out, nil
}

// memRunRepo is an in-memory ports.RunRepository.
type memRunRepo struct {
	mu   sync.Mutex
	runs map[domain.RunID]domain.RunRecord
}

func newMemRunRepo() *memRunRepo {
	return &memRunRepo{runs: map[domain.RunID]domain.RunRecord{}}
}

func (r *memRunRepo) SaveRun(ctx context.Context, run domain.RunRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[run.ID] = run
	return nil
}

func (r *memRunRepo) GetRun(ctx context.Context, id domain.RunID) (domain.RunRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	run, ok := r.runs[id]
	if !ok {
		return domain.RunRecord{}, domain.ErrRunNotFound
	}
	return run, nil
}

// scriptedModel replays canned completions and records the history it was shown.
type scriptedModel struct {
	replies   []string
	err       error
	calls     int
	histories [][]domain.ConversationTurn
}

func (m *scriptedModel) Complete(ctx context.Context, history []domain.ConversationTurn) (string, error) {
	m.histories = append(m.histories, history)
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	if len(m.replies) == 0 {
		return "", errors.New("script exhausted")
	}
	if len(m.replies) == 1 {
		return m.replies[0], nil
	}
	r := m.replies[0]
	m.replies = m.replies[1:]
	return r, nil
}
