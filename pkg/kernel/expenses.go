package kernel

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/oapi-codegen/runtime"

	"github.com/manthysbr/expense-agent/internal/core/domain"
)

// ledgerQuery holds the optional query parameters of the ledger endpoints.
type ledgerQuery struct {
	UserID   *string
	Category *string
	Limit    *int
}

func bindLedgerQuery(r *http.Request) (ledgerQuery, error) {
	var q ledgerQuery
	query := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, false, "user_id", query, &q.UserID); err != nil {
		return q, err
	}
	if err := runtime.BindQueryParameter("form", true, false, "category", query, &q.Category); err != nil {
		return q, err
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", query, &q.Limit); err != nil {
		return q, err
	}
	return q, nil
}

func (q ledgerQuery) user() string {
	if q.UserID == nil {
		return ""
	}
	return *q.UserID
}

// ledgerStatus maps ledger validation errors to 400.
func ledgerStatus(err error) int {
	if errors.Is(err, domain.ErrInvalidExpense) || errors.Is(err, domain.ErrInvalidBudget) || errors.Is(err, domain.ErrInvalidCategory) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// handleCreateExpense records an expense without going through the agent.
// POST /v1/expenses
func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	q, err := bindLedgerQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req domain.ExpenseCreate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	e, err := s.ledger.AddExpense(r.Context(), q.user(), req)
	if err != nil {
		writeError(w, ledgerStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

// handleListExpenses lists expenses newest first.
// GET /v1/expenses
func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	q, err := bindLedgerQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	filter := domain.ExpenseFilter{UserID: q.user()}
	if q.Category != nil {
		filter.Category = domain.Category(*q.Category)
	}
	if q.Limit != nil {
		filter.Limit = *q.Limit
	}

	expenses, err := s.ledger.ListExpenses(r.Context(), filter)
	if err != nil {
		writeError(w, ledgerStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, expenses)
}

// handleSummary returns totals per category and budget alerts.
// GET /v1/expenses/summary
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	q, err := bindLedgerQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	summary, err := s.ledger.Summary(r.Context(), q.user())
	if err != nil {
		writeError(w, ledgerStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// handleListBudgets returns a user's budgets.
// GET /v1/budgets
func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	q, err := bindLedgerQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	budgets, err := s.ledger.ListBudgets(r.Context(), q.user())
	if err != nil {
		writeError(w, ledgerStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, budgets)
}

type budgetRequest struct {
	Category domain.Category `json:"category"`
	Amount   float64         `json:"amount"`
	UserID   string          `json:"user_id,omitempty"`
}

// handleSetBudget creates or replaces the budget for a category.
// PUT /v1/budgets
func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	b, err := s.ledger.SetBudget(r.Context(), req.UserID, domain.BudgetCreate{Category: req.Category, Amount: req.Amount})
	if err != nil {
		writeError(w, ledgerStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, b)
}
