package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	httpAdapter "github.com/lorrc/ticketing-system/internal/adapters/primary/http"
	"github.com/lorrc/ticketing-system/internal/adapters/secondary/filestore"
	"github.com/lorrc/ticketing-system/internal/adapters/secondary/postgres"
	"github.com/lorrc/ticketing-system/internal/config"
	"github.com/lorrc/ticketing-system/internal/core/ports"
)

// stores holds the repositories of the selected backend.
type stores struct {
	tickets  ports.TicketRepository
	accounts ports.AccountRepository
	configs  ports.ConfigurationRepository
	health   httpAdapter.HealthChecker // nil without a database
	close    func()
}

func (s *stores) Close() {
	if s.close != nil {
		s.close()
	}
}

func openStores(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*stores, error) {
	switch cfg.Store.Backend {
	case config.StorePostgres:
		return openPostgres(ctx, cfg, logger)

	case config.StoreFile:
		logger.Info("using file ticket store", "path", cfg.Store.FilePath)
		return &stores{
			tickets:  filestore.NewTicketStore(cfg.Store.FilePath),
			accounts: filestore.NewAccountStore(),
			configs:  filestore.NewConfigurationStore(),
		}, nil

	case config.StoreMemory:
		logger.Warn("using in-memory store, nothing survives a restart")
		return &stores{
			tickets:  filestore.NewMemoryTicketStore(),
			accounts: filestore.NewAccountStore(),
			configs:  filestore.NewConfigurationStore(),
		}, nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

func openPostgres(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*stores, error) {
	if err := postgres.Migrate(cfg.Database.MigrationsPath, cfg.Database.URL); err != nil {
		return nil, err
	}
	logger.Info("database migrations applied", "source", cfg.Database.MigrationsPath)

	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.Database.MaxOpenConns)
	poolConfig.MinConns = int32(cfg.Database.MaxIdleConns)
	poolConfig.MaxConnLifetime = cfg.Database.ConnMaxLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.ConnMaxIdleTime

	db, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping: %w", err)
	}
	logger.Info("database connection established")

	return &stores{
		tickets:  postgres.NewTicketRepository(db),
		accounts: postgres.NewAccountRepository(db),
		configs:  postgres.NewConfigurationRepository(db),
		health:   db,
		close:    db.Close,
	}, nil
}
