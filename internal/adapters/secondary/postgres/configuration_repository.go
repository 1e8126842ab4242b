package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lorrc/ticketing-system/internal/core/domain"
	apperrors "github.com/lorrc/ticketing-system/internal/core/errors"
	"github.com/lorrc/ticketing-system/internal/core/ports"
)

// ConfigurationRepository stores the single configuration row (id = 1).
type ConfigurationRepository struct {
	pool *pgxpool.Pool
	tx   *TransactionManager
}

var _ ports.ConfigurationRepository = (*ConfigurationRepository)(nil)

func NewConfigurationRepository(pool *pgxpool.Pool) *ConfigurationRepository {
	return &ConfigurationRepository{
		pool: pool,
		tx:   NewTransactionManager(pool),
	}
}

func (r *ConfigurationRepository) Get(ctx context.Context) (*domain.Configuration, error) {
	const query = `
SELECT release_rate_ms, retrieval_rate_ms, max_capacity, admin_username, admin_password_hash
FROM configuration
WHERE id = 1
`

	var cfg domain.Configuration
	err := GetDBTX(ctx, r.pool).QueryRow(ctx, query).Scan(
		&cfg.ReleaseRateMs,
		&cfg.RetrievalRateMs,
		&cfg.MaxCapacity,
		&cfg.AdminUsername,
		&cfg.AdminPasswordHash,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrConfigurationNotFound
		}
		return nil, fmt.Errorf("get configuration: %w", err)
	}

	return &cfg, nil
}

// Save updates the row, inserting it on first use. The row is locked for the
// duration so concurrent saves apply one after the other.
func (r *ConfigurationRepository) Save(ctx context.Context, cfg *domain.Configuration) error {
	const update = `
UPDATE configuration
SET release_rate_ms = $1,
    retrieval_rate_ms = $2,
    max_capacity = $3,
    admin_username = $4,
    admin_password_hash = $5,
    updated_at = NOW()
WHERE id = 1
`
	const insert = `
INSERT INTO configuration (id, release_rate_ms, retrieval_rate_ms, max_capacity, admin_username, admin_password_hash)
VALUES (1, $1, $2, $3, $4, $5)
`

	return r.tx.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT 1 FROM configuration WHERE id = 1 FOR UPDATE`); err != nil {
			return fmt.Errorf("lock configuration: %w", err)
		}

		args := []any{cfg.ReleaseRateMs, cfg.RetrievalRateMs, cfg.MaxCapacity, cfg.AdminUsername, cfg.AdminPasswordHash}

		tag, err := tx.Exec(ctx, update, args...)
		if err != nil {
			return fmt.Errorf("update configuration: %w", err)
		}
		if tag.RowsAffected() > 0 {
			return nil
		}

		if _, err := tx.Exec(ctx, insert, args...); err != nil {
			return fmt.Errorf("insert configuration: %w", err)
		}
		return nil
	})
}
