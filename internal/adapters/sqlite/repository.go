package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/manthysbr/expense-agent/internal/adapters/sqlstore"
)

// NewRepository opens the SQLite file at path in WAL mode.
func NewRepository(path string) (*sqlstore.Repository, error) {
	db, err := sql.Open("sqlite3", path+"?_journal=WAL&_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// single writer; also keeps ":memory:" on one connection
	db.SetMaxOpenConns(1)

	repo, err := sqlstore.New(context.Background(), db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}
