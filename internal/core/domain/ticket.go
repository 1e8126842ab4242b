package domain

import (
	"fmt"

	"github.com/google/uuid"

	apperrors "github.com/lorrc/ticketing-system/internal/core/errors"
)

// TicketStatus represents the possible states of a ticket.
type TicketStatus string

const (
	StatusAvailable TicketStatus = "Available"
	StatusBooked    TicketStatus = "Booked"
)

// IsValid reports whether the status is one of the known values.
func (s TicketStatus) IsValid() bool {
	return s == StatusAvailable || s == StatusBooked
}

func (s TicketStatus) String() string {
	return string(s)
}

// Ticket is the core domain entity. Identity and schedule fields are fixed at
// creation; Status and CustomerID change exactly once, when the ticket is booked.
type Ticket struct {
	ID           string
	EventName    string
	Price        float64
	TimeDuration string
	Date         string
	VendorID     string
	Status       TicketStatus
	CustomerID   string
}

// TicketParams holds the vendor-supplied fields for a new ticket.
type TicketParams struct {
	ID           string
	EventName    string
	Price        float64
	TimeDuration string
	Date         string
	VendorID     string
}

// Validate validates ticket parameters
func (p TicketParams) Validate() error {
	errs := apperrors.NewValidationErrors()

	if p.ID == "" {
		errs.Add("ticketId", apperrors.ErrTicketIDRequired.Error())
	}
	if p.EventName == "" {
		errs.Add("eventName", apperrors.ErrEventNameRequired.Error())
	}
	if p.VendorID == "" {
		errs.Add("vendorId", apperrors.ErrVendorIDRequired.Error())
	}
	if p.Price < 0 {
		errs.Add("price", apperrors.ErrInvalidPrice.Error())
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}

// NewTicket is a factory function to create a valid, available ticket.
func NewTicket(params TicketParams) (*Ticket, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	return &Ticket{
		ID:           params.ID,
		EventName:    params.EventName,
		Price:        params.Price,
		TimeDuration: params.TimeDuration,
		Date:         params.Date,
		VendorID:     params.VendorID,
		Status:       StatusAvailable,
	}, nil
}

// BatchParams describes a vendor release of identical tickets for one event.
type BatchParams struct {
	VendorID     string
	EventName    string
	Price        float64
	TimeDuration string
	Date         string
	BatchSize    int
}

// NewTicketBatch creates BatchSize available tickets. IDs are prefixed with the
// vendor ID and stay unique across batches of the same vendor.
func NewTicketBatch(params BatchParams) ([]*Ticket, error) {
	if params.BatchSize <= 0 {
		return nil, apperrors.ErrInvalidBatchSize
	}

	tickets := make([]*Ticket, 0, params.BatchSize)
	for i := 1; i <= params.BatchSize; i++ {
		ticket, err := NewTicket(TicketParams{
			ID:           fmt.Sprintf("%s-%d-%s", params.VendorID, i, uuid.NewString()[:8]),
			EventName:    params.EventName,
			Price:        params.Price,
			TimeDuration: params.TimeDuration,
			Date:         params.Date,
			VendorID:     params.VendorID,
		})
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, ticket)
	}
	return tickets, nil
}

// IsAvailable reports whether the ticket can still be booked.
func (t *Ticket) IsAvailable() bool {
	return t.Status == StatusAvailable
}

// IsBooked reports whether the ticket has been booked.
func (t *Ticket) IsBooked() bool {
	return t.Status == StatusBooked
}

// Book marks the ticket as booked by the given customer. Booked is terminal.
func (t *Ticket) Book(customerID string) error {
	if customerID == "" {
		return apperrors.ErrCustomerIDRequired
	}
	if t.Status != StatusAvailable {
		return apperrors.ErrTicketAlreadyBooked
	}
	t.Status = StatusBooked
	t.CustomerID = customerID
	return nil
}

// Clone returns a copy that callers may read without holding the pool lock.
func (t *Ticket) Clone() *Ticket {
	c := *t
	return &c
}
