package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lorrc/ticketing-system/internal/core/domain"
	"github.com/lorrc/ticketing-system/internal/core/ports"
)

// TicketRepository stores pool tickets. Rows keep their first insertion
// order in seq, which LoadAll replays.
type TicketRepository struct {
	pool *pgxpool.Pool
}

var _ ports.TicketRepository = (*TicketRepository)(nil)

func NewTicketRepository(pool *pgxpool.Pool) *TicketRepository {
	return &TicketRepository{pool: pool}
}

func (r *TicketRepository) LoadAll(ctx context.Context) ([]*domain.Ticket, error) {
	const query = `
SELECT ticket_id, event_name, price, time_duration, event_date, vendor_id, status, customer_id
FROM tickets
ORDER BY seq
`

	rows, err := GetDBTX(ctx, r.pool).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("load tickets: %w", err)
	}
	defer rows.Close()

	tickets := make([]*domain.Ticket, 0)
	for rows.Next() {
		var (
			t          domain.Ticket
			status     string
			customerID pgtype.Text
		)
		if err := rows.Scan(&t.ID, &t.EventName, &t.Price, &t.TimeDuration, &t.Date, &t.VendorID, &status, &customerID); err != nil {
			return nil, fmt.Errorf("scan ticket: %w", err)
		}
		t.Status = domain.TicketStatus(status)
		t.CustomerID = textOrEmpty(customerID)
		tickets = append(tickets, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load tickets: %w", err)
	}

	return tickets, nil
}

// Save inserts the ticket or, when it already exists, records its booking.
func (r *TicketRepository) Save(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
INSERT INTO tickets (ticket_id, event_name, price, time_duration, event_date, vendor_id, status, customer_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (ticket_id) DO UPDATE
SET status = EXCLUDED.status,
    customer_id = EXCLUDED.customer_id,
    updated_at = NOW()
`

	_, err := GetDBTX(ctx, r.pool).Exec(ctx, query,
		ticket.ID,
		ticket.EventName,
		ticket.Price,
		ticket.TimeDuration,
		ticket.Date,
		ticket.VendorID,
		string(ticket.Status),
		nullText(ticket.CustomerID),
	)
	if err != nil {
		return fmt.Errorf("save ticket %s: %w", ticket.ID, err)
	}
	return nil
}
