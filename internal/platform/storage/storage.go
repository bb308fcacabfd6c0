// Package storage opens the unit of work selected by STORAGE_DRIVER.
package storage

import (
	"context"
	"fmt"
	"log/slog"

	portsrepo "github.com/SscSPs/gl_engine/internal/core/ports/repositories"
	"github.com/SscSPs/gl_engine/internal/platform/config"
	"github.com/SscSPs/gl_engine/internal/repositories/database/pgsql"
	"github.com/SscSPs/gl_engine/internal/repositories/memory"
	"github.com/SscSPs/gl_engine/pkg/database"
)

// Options tune Open.
type Options struct {
	// Migrate applies pending migrations before the pool is returned.
	Migrate bool
}

// Open returns the unit of work for cfg.StorageDriver and a function that
// releases it.
func Open(ctx context.Context, cfg *config.Config, opts Options, logger *slog.Logger) (portsrepo.UnitOfWork, func(), error) {
	switch cfg.StorageDriver {
	case config.StorageMemory:
		logger.Warn("Using in-memory storage, ledger state is lost on exit")
		return memory.NewStore(), func() {}, nil
	case config.StoragePostgres:
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}

	pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		return nil, nil, err
	}

	if opts.Migrate {
		logger.Info("Running database migrations...", slog.String("path", cfg.MigrationsPath))
		changed, err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, database.Up)
		if err != nil {
			database.ClosePgxPool(pool)
			return nil, nil, err
		}
		if changed {
			logger.Info("Database migrations applied successfully.")
		} else {
			logger.Info("No new migrations to apply.")
		}
	}

	return pgsql.NewUnitOfWork(pool), func() { database.ClosePgxPool(pool) }, nil
}
