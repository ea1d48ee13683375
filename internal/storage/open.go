package storage

import (
	"context"
	"fmt"

	"modhub/backend/internal/config"
)

// OpenPersister builds the persister selected by cfg.Driver. The returned
// close function releases the database connection, if any.
func OpenPersister(ctx context.Context, cfg config.StorageConfig) (Persister, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Driver {
	case "", "file":
		return NewFilePersister(cfg.Path), noop, nil

	case "sqlite", "postgres":
		db, err := OpenDatabase(cfg.Driver, cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, fmt.Errorf("database handle: %w", err)
		}
		p, err := NewGormPersister(ctx, db)
		if err != nil {
			sqlDB.Close()
			return nil, nil, err
		}
		return p, sqlDB.Close, nil

	default:
		return nil, nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}
}
