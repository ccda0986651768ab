package duckdb

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/manthysbr/expense-agent/internal/adapters/sqlstore"
)

// NewRepository opens (or creates) the DuckDB file at path. An empty path gives an
// in-memory database.
func NewRepository(path string) (*sqlstore.Repository, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	repo, err := sqlstore.New(context.Background(), db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}
