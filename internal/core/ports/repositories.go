package ports

import (
	"context"

	"github.com/lorrc/ticketing-system/internal/core/domain"
)

// TicketRepository persists pool tickets. Save is an upsert keyed by ticket ID.
type TicketRepository interface {
	LoadAll(ctx context.Context) ([]*domain.Ticket, error)
	Save(ctx context.Context, ticket *domain.Ticket) error
}

// AccountRepository stores vendor and customer accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
	GetByID(ctx context.Context, role domain.Role, id string) (*domain.Account, error)
}

// ConfigurationRepository stores the single system configuration row.
// Get returns ErrConfigurationNotFound before the first Save.
type ConfigurationRepository interface {
	Get(ctx context.Context) (*domain.Configuration, error)
	Save(ctx context.Context, cfg *domain.Configuration) error
}
