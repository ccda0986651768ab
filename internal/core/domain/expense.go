package domain

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// DefaultUserID owns expenses when no user is given.
const DefaultUserID = "default_user"

// MaxDescriptionLength bounds an expense description in characters.
const MaxDescriptionLength = 200

// Category is an expense category.
type Category string

const (
	CategoryFood          Category = "food"
	CategoryTransport     Category = "transport"
	CategoryEntertainment Category = "entertainment"
	CategoryShopping      Category = "shopping"
	CategoryBills         Category = "bills"
	CategoryOther         Category = "other"
)

// Categories lists every valid category in display order.
var Categories = []Category{
	CategoryFood,
	CategoryTransport,
	CategoryEntertainment,
	CategoryShopping,
	CategoryBills,
	CategoryOther,
}

var (
	ErrInvalidExpense  = errors.New("invalid expense")
	ErrInvalidBudget   = errors.New("invalid budget")
	ErrInvalidCategory = errors.New("invalid category")
)

// ParseCategory normalizes s to a known category.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Categories {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidCategory, s)
}

// RoundCents rounds an amount to two decimal places.
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

type ExpenseID string

// NewExpenseID generates an expense ID.
func NewExpenseID() ExpenseID {
	return ExpenseID(uuid.NewString())
}

// Expense is one recorded spending entry.
type Expense struct {
	ID          ExpenseID `json:"id"`
	UserID      string    `json:"user_id"`
	Amount      float64   `json:"amount"`
	Category    Category  `json:"category"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// ExpenseCreate holds the fields needed to record an expense.
type ExpenseCreate struct {
	Amount      float64  `json:"amount"`
	Category    Category `json:"category"`
	Description string   `json:"description"`
}

// Normalize validates the request and returns it with the amount rounded to cents and
// the description trimmed.
func (e ExpenseCreate) Normalize() (ExpenseCreate, error) {
	cat, err := ParseCategory(string(e.Category))
	if err != nil {
		return e, fmt.Errorf("%w: %v", ErrInvalidExpense, err)
	}
	amount := RoundCents(e.Amount)
	if amount <= 0 || math.IsNaN(e.Amount) || math.IsInf(e.Amount, 0) {
		return e, fmt.Errorf("%w: amount must be greater than zero", ErrInvalidExpense)
	}
	desc := strings.TrimSpace(e.Description)
	if desc == "" {
		return e, fmt.Errorf("%w: description is required", ErrInvalidExpense)
	}
	if utf8.RuneCountInString(desc) > MaxDescriptionLength {
		return e, fmt.Errorf("%w: description exceeds %d characters", ErrInvalidExpense, MaxDescriptionLength)
	}
	return ExpenseCreate{Amount: amount, Category: cat, Description: desc}, nil
}

// Budget is a spending limit for one user and category.
type Budget struct {
	UserID    string    `json:"user_id"`
	Category  Category  `json:"category"`
	Amount    float64   `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BudgetCreate holds the fields needed to set a budget.
type BudgetCreate struct {
	Category Category `json:"category"`
	Amount   float64  `json:"amount"`
}

func (b BudgetCreate) Normalize() (BudgetCreate, error) {
	cat, err := ParseCategory(string(b.Category))
	if err != nil {
		return b, fmt.Errorf("%w: %v", ErrInvalidBudget, err)
	}
	amount := RoundCents(b.Amount)
	if amount <= 0 || math.IsNaN(b.Amount) || math.IsInf(b.Amount, 0) {
		return b, fmt.Errorf("%w: amount must be greater than zero", ErrInvalidBudget)
	}
	return BudgetCreate{Category: cat, Amount: amount}, nil
}

// CategoryTotal is the summed spending for one category.
type CategoryTotal struct {
	Category Category `json:"category"`
	Total    float64  `json:"total"`
	Count    int      `json:"count"`
}

// BudgetAlert reports a category whose spending exceeds its budget.
type BudgetAlert struct {
	Category Category `json:"category"`
	Budget   float64  `json:"budget"`
	Spent    float64  `json:"spent"`
	Overage  float64  `json:"overage"`
}

// SpendingSummary groups totals per category with the budget alerts that apply.
type SpendingSummary struct {
	UserID string          `json:"user_id"`
	Totals []CategoryTotal `json:"totals"`
	Total  float64         `json:"total"`
	Alerts []BudgetAlert   `json:"alerts"`
}

// ExpenseFilter narrows an expense listing. Zero values mean no constraint.
type ExpenseFilter struct {
	UserID   string
	Category Category
	Limit    int
}
