// Package sqlstore implements the repository ports on database/sql. The SQL sticks to
// the subset shared by DuckDB and SQLite; the driver packages only open the handle.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/manthysbr/expense-agent/internal/core/ports"
)

// Repository is the SQL-backed ports.Repository.
type Repository struct {
	db *sql.DB
}

// Ensure Repository implements Repository interface
var _ ports.Repository = (*Repository)(nil)

// New wraps an open handle and applies the schema.
func New(ctx context.Context, db *sql.DB) (*Repository, error) {
	r := &Repository{db: db}
	if err := r.migrate(ctx); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return r, nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS expenses (
		id          TEXT PRIMARY KEY,
		user_id     TEXT NOT NULL,
		amount      DOUBLE NOT NULL,
		category    TEXT NOT NULL,
		description TEXT NOT NULL,
		created_at  TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_expenses_user ON expenses(user_id, category)`,
	`CREATE TABLE IF NOT EXISTS budgets (
		user_id    TEXT NOT NULL,
		category   TEXT NOT NULL,
		amount     DOUBLE NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		PRIMARY KEY (user_id, category)
	)`,
	`CREATE TABLE IF NOT EXISTS runs (
		id           TEXT PRIMARY KEY,
		user_id      TEXT NOT NULL,
		message      TEXT NOT NULL,
		status       TEXT NOT NULL,
		final_answer TEXT NOT NULL,
		abort_reason TEXT NOT NULL,
		steps_taken  INTEGER NOT NULL,
		tools_used   TEXT NOT NULL,
		history      TEXT NOT NULL,
		duration_ms  BIGINT NOT NULL,
		created_at   TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS settings (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`,
}

func (r *Repository) migrate(ctx context.Context) error {
	for i, stmt := range migrations {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("statement %d: %w", i, err)
		}
	}
	return nil
}

// Ping checks the connection.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *Repository) Close() error {
	return r.db.Close()
}
