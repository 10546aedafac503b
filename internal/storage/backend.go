// Package storage opens the worksheet store selected by configuration.
package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/mathdrill/internal/config"
	"github.com/felixgeelhaar/mathdrill/internal/storage/local"
	"github.com/felixgeelhaar/mathdrill/internal/storage/postgres"
	"github.com/felixgeelhaar/mathdrill/internal/storage/sqlite"
	"github.com/felixgeelhaar/mathdrill/internal/worksheet"
)

// Backend is an opened worksheet store. Events is only set for drivers
// that keep a generation event log.
type Backend struct {
	Driver string
	Store  worksheet.Store
	Events *sqlite.EventStore
	close  func() error
}

// Close releases the backend's connections
func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// Open connects the configured driver. Relative paths resolve under dir.
func Open(ctx context.Context, cfg config.StorageConfig, dir string, logger *slog.Logger) (*Backend, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := config.ValidateStorage(cfg.Driver, cfg.Path, cfg.DatabaseURL); err != nil {
		return nil, err
	}

	switch cfg.Driver {
	case config.StorageMemory:
		return &Backend{Driver: cfg.Driver, Store: worksheet.NewMemoryStore()}, nil

	case config.StorageFile:
		store, err := local.NewWorksheetStore(cfg.ResolvePath(dir))
		if err != nil {
			return nil, fmt.Errorf("open file store: %w", err)
		}
		return &Backend{Driver: cfg.Driver, Store: store}, nil

	case config.StorageSQLite:
		db, err := sqlite.Open(cfg.ResolvePath(dir))
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate %s: %w", db.Path(), err)
		}
		return &Backend{
			Driver: cfg.Driver,
			Store:  sqlite.NewWorksheetStore(db),
			Events: sqlite.NewEventStore(db),
			close:  db.Close,
		}, nil

	case config.StoragePostgres:
		store, err := postgres.Connect(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return nil, err
		}
		return &Backend{
			Driver: cfg.Driver,
			Store:  store,
			close: func() error {
				store.Close()
				return nil
			},
		}, nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
}
