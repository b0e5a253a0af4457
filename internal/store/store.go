package store

import (
	"context"
	"fmt"
	"io"

	"github.com/i474232898/precipitation-tracker/internal/config"
	"github.com/i474232898/precipitation-tracker/internal/weather"
)

// Store is a weather.Store that holds resources until closed.
type Store interface {
	weather.Store
	io.Closer
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*SQLiteStore)(nil)
	_ Store = (*PostgresStore)(nil)
)

// Open returns the store selected by cfg.StoreDriver.
func Open(ctx context.Context, cfg *config.AppConfig) (Store, error) {
	switch cfg.StoreDriver {
	case config.DriverMemory, "":
		return NewMemoryStore(cfg.StorePageSize), nil
	case config.DriverSQLite:
		return OpenSQLite(ctx, cfg.SQLitePath, cfg.StorePageSize)
	case config.DriverPostgres:
		return OpenPostgres(ctx, cfg.DatabaseURL, cfg.StorePageSize)
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}
}
