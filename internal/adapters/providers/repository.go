package providers

import (
	"fmt"
	"strings"

	"github.com/manthysbr/expense-agent/internal/adapters/duckdb"
	"github.com/manthysbr/expense-agent/internal/adapters/sqlite"
	"github.com/manthysbr/expense-agent/internal/core/domain"
	"github.com/manthysbr/expense-agent/internal/core/ports"
)

// OpenRepository opens the store selected by the storage config.
func OpenRepository(cfg domain.StorageConfig) (ports.Repository, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", "duckdb":
		repo, err := duckdb.NewRepository(cfg.Path)
		if err != nil {
			return nil, err
		}
		return repo, nil
	case "sqlite":
		repo, err := sqlite.NewRepository(cfg.Path)
		if err != nil {
			return nil, err
		}
		return repo, nil
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Driver)
	}
}
