package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lorrc/ticketing-system/internal/core/domain"
	apperrors "github.com/lorrc/ticketing-system/internal/core/errors"
	"github.com/lorrc/ticketing-system/internal/core/ports"
)

const uniqueViolation = "23505"

type AccountRepository struct {
	pool *pgxpool.Pool
}

var _ ports.AccountRepository = (*AccountRepository)(nil)

func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	const query = `
INSERT INTO accounts (role, id, password_hash, created_at)
VALUES ($1, $2, $3, $4)
RETURNING role, id, password_hash, created_at
`

	created, err := scanAccount(GetDBTX(ctx, r.pool).QueryRow(ctx, query,
		string(account.Role),
		account.ID,
		account.HashedPassword,
		account.CreatedAt,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, apperrors.ErrAccountExists
		}
		return nil, fmt.Errorf("create account: %w", err)
	}

	return created, nil
}

func (r *AccountRepository) GetByID(ctx context.Context, role domain.Role, id string) (*domain.Account, error) {
	const query = `
SELECT role, id, password_hash, created_at
FROM accounts
WHERE role = $1 AND id = $2
`

	account, err := scanAccount(GetDBTX(ctx, r.pool).QueryRow(ctx, query, string(role), id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, fmt.Errorf("get account: %w", err)
	}

	return account, nil
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var (
		account domain.Account
		role    string
	)
	if err := row.Scan(&role, &account.ID, &account.HashedPassword, &account.CreatedAt); err != nil {
		return nil, err
	}
	account.Role = domain.Role(role)
	return &account, nil
}
