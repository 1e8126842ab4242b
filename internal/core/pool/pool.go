// Package pool implements the event-scoped bounded ticket pool shared by all
// vendor and customer runs.
//
// A single mutex guards the ticket list, the available count, the producer
// wake channel and the event wait registry. Blocked producers and consumers
// release the mutex while parked and re-check their predicate after every
// wake.
package pool

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/lorrc/ticketing-system/internal/clock"
	"github.com/lorrc/ticketing-system/internal/core/domain"
	apperrors "github.com/lorrc/ticketing-system/internal/core/errors"
	"github.com/lorrc/ticketing-system/internal/core/ports"
)

// Config wires the pool to its collaborators. Only Capacity is required.
type Config struct {
	Capacity    ports.CapacitySource
	Repository  ports.TicketRepository
	Broadcaster ports.EventBroadcaster
	Clock       clock.Clock
	Logger      *slog.Logger
}

// Pool is the ticket pool. Construct it with New; the zero value is not usable.
type Pool struct {
	mu sync.Mutex

	// tickets holds every ticket in insertion order, Booked ones included.
	tickets []*domain.Ticket
	byID    map[string]*domain.Ticket
	// queues holds the Available tickets of each event in insertion order.
	queues    map[string][]*domain.Ticket
	available int

	capacity         ports.CapacitySource
	capacityReady    chan struct{}
	waitingProducers int
	registry         *registry

	// capacityChanged is a one-slot mailbox for changes made directly on the
	// capacity source. The producer that takes it wakes the others.
	capacityChanged chan struct{}

	repo        ports.TicketRepository
	broadcaster ports.EventBroadcaster
	clock       clock.Clock
	logger      *slog.Logger
}

var _ ports.TicketPool = (*Pool)(nil)

// New creates an empty pool.
func New(cfg Config) *Pool {
	if cfg.Capacity == nil {
		cfg.Capacity = NewStaticCapacity(domain.DefaultMaxCapacity)
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.NewSystem()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}

	p := &Pool{
		byID:            make(map[string]*domain.Ticket),
		queues:          make(map[string][]*domain.Ticket),
		capacity:        cfg.Capacity,
		capacityReady:   make(chan struct{}),
		capacityChanged: make(chan struct{}, 1),
		registry:        newRegistry(),
		repo:            cfg.Repository,
		broadcaster:     cfg.Broadcaster,
		clock:           cfg.Clock,
		logger:          cfg.Logger.With("component", "ticket_pool"),
	}
	if notifier, ok := cfg.Capacity.(ports.CapacityNotifier); ok {
		notifier.OnCapacityChange(p.capacitySourceChanged)
	}
	return p
}

// capacitySourceChanged runs on every capacity source write, possibly with
// p.mu held, so it only posts to the mailbox.
func (p *Pool) capacitySourceChanged() {
	select {
	case p.capacityChanged <- struct{}{}:
	default:
	}
}

// Load replaces the pool contents with the persisted tickets. It is meant to
// run once at startup, before any actor touches the pool.
func (p *Pool) Load(ctx context.Context) error {
	if p.repo == nil {
		return nil
	}

	tickets, err := p.repo.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("load tickets: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.tickets = p.tickets[:0]
	p.byID = make(map[string]*domain.Ticket, len(tickets))
	p.queues = make(map[string][]*domain.Ticket)
	p.available = 0

	for _, t := range tickets {
		if _, dup := p.byID[t.ID]; dup {
			p.logger.WarnContext(ctx, "skipping duplicate persisted ticket", "ticket_id", t.ID)
			continue
		}
		p.insertLocked(t.Clone())
	}

	// Persisted state wins over a capacity that was lowered while the
	// process was down.
	if limit := p.capacity.MaxCapacity(); p.available > limit {
		p.logger.WarnContext(ctx, "raising max capacity to persisted available count",
			"max_capacity", limit,
			"available", p.available,
		)
		p.capacity.SetMaxCapacity(p.available)
	}

	p.logger.InfoContext(ctx, "ticket pool loaded",
		"tickets", len(p.tickets),
		"available", p.available,
	)
	return nil
}

// AddTicket admits ticket into the pool, blocking while the pool is at
// capacity. It returns false with ErrCancelled if ctx ends while blocked and
// ErrDuplicateTicket if a ticket with the same ID is already pooled.
func (p *Pool) AddTicket(ctx context.Context, ticket *domain.Ticket) (bool, error) {
	if ticket == nil || ticket.ID == "" {
		return false, apperrors.ErrTicketIDRequired
	}
	if ticket.EventName == "" {
		return false, apperrors.ErrEventNameRequired
	}

	t := ticket.Clone()
	t.Status = domain.StatusAvailable
	t.CustomerID = ""

	p.mu.Lock()
	waiting := false
	for {
		if _, dup := p.byID[t.ID]; dup {
			if waiting {
				p.waitingProducers--
			}
			p.mu.Unlock()
			p.logger.WarnContext(ctx, "duplicate ticket id", "ticket_id", t.ID)
			return false, apperrors.ErrDuplicateTicket
		}
		if p.available < p.capacity.MaxCapacity() {
			break
		}

		if !waiting {
			waiting = true
			p.waitingProducers++
			p.logLocked("Waiting to add ticket, pool is full... vendor: " + t.VendorID)
			p.logger.InfoContext(ctx, "waiting to add ticket, pool is full", "vendor_id", t.VendorID)
		}
		ready := p.capacityReady
		p.mu.Unlock()

		select {
		case <-ready:
		case <-p.capacityChanged:
			p.mu.Lock()
			p.signalCapacityLocked()
			continue
		case <-ctx.Done():
			p.mu.Lock()
			p.waitingProducers--
			p.logLocked("Vendor: " + t.VendorID + " interrupted while adding ticket")
			p.mu.Unlock()
			p.logger.InfoContext(ctx, "add ticket cancelled", "vendor_id", t.VendorID, "ticket_id", t.ID)
			return false, fmt.Errorf("%w: %w", apperrors.ErrCancelled, ctx.Err())
		}

		p.mu.Lock()
	}
	if waiting {
		p.waitingProducers--
	}

	// 1. Admit
	p.insertLocked(t)

	// 2. Persist
	p.persistLocked(ctx, t)

	// 3. Wake consumers of this event only
	p.registry.signal(t.EventName)
	p.registry.cleanup()

	// 4. Notify
	p.notifyLocked(fmt.Sprintf("Added ticket for event: %s with ID: %s", t.EventName, t.ID))
	p.mu.Unlock()

	p.logger.InfoContext(ctx, "ticket added",
		"ticket_id", t.ID,
		"event_name", t.EventName,
		"vendor_id", t.VendorID,
	)
	return true, nil
}

// RemoveTicket books the oldest Available ticket of eventName for customerID,
// blocking until one exists. It returns false with ErrCancelled if ctx ends
// while blocked. An unknown event behaves like a sold-out one.
func (p *Pool) RemoveTicket(ctx context.Context, eventName, customerID string) (bool, string, error) {
	if eventName == "" {
		return false, "", apperrors.ErrEventNameRequired
	}
	if customerID == "" {
		return false, "", apperrors.ErrCustomerIDRequired
	}

	p.mu.Lock()
	var entry *waitEntry
	for {
		if t := p.popLocked(eventName); t != nil {
			if entry != nil {
				p.registry.leave(eventName)
			}

			// 1. Book. popLocked only returns Available tickets, so this
			// cannot fail for a non-empty customer ID.
			_ = t.Book(customerID)
			p.available--

			// 2. Persist
			p.persistLocked(ctx, t)

			// 3. Capacity dropped, wake producers
			p.signalCapacityLocked()
			p.registry.cleanup()

			// 4. Notify
			p.notifyLocked(fmt.Sprintf("Booked ticket %s for event: %s by customer: %s", t.ID, eventName, customerID))
			p.mu.Unlock()

			p.logger.InfoContext(ctx, "ticket booked",
				"ticket_id", t.ID,
				"event_name", eventName,
				"customer_id", customerID,
			)
			return true, t.ID, nil
		}

		if entry == nil {
			entry = p.registry.join(eventName)
			p.logLocked("Customer: " + customerID + " waiting for tickets to become available for event: " + eventName)
			p.logger.InfoContext(ctx, "waiting for tickets",
				"event_name", eventName,
				"customer_id", customerID,
			)
		}
		ready := entry.ready
		p.mu.Unlock()

		select {
		case <-ready:
		case <-ctx.Done():
			p.mu.Lock()
			p.registry.leave(eventName)
			p.registry.cleanup()
			p.logLocked("Customer: " + customerID + " interrupted while booking ticket")
			p.mu.Unlock()
			p.logger.InfoContext(ctx, "remove ticket cancelled",
				"event_name", eventName,
				"customer_id", customerID,
			)
			return false, "", fmt.Errorf("%w: %w", apperrors.ErrCancelled, ctx.Err())
		}

		p.mu.Lock()
	}
}

// SetMaxCapacity validates n against the current Available count, writes it
// through to the capacity source and wakes blocked producers.
func (p *Pool) SetMaxCapacity(n int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if n < 0 || n < p.available {
		return fmt.Errorf("%w: requested %d, available %d", apperrors.ErrInvalidCapacity, n, p.available)
	}

	p.capacity.SetMaxCapacity(n)
	p.signalCapacityLocked()

	p.logger.Info("max capacity updated", "max_capacity", n, "available", p.available)
	return nil
}

// MaxCapacity returns the capacity source's current value.
func (p *Pool) MaxCapacity() int {
	return p.capacity.MaxCapacity()
}

func (p *Pool) insertLocked(t *domain.Ticket) {
	p.tickets = append(p.tickets, t)
	p.byID[t.ID] = t
	if t.IsAvailable() {
		p.queues[t.EventName] = append(p.queues[t.EventName], t)
		p.available++
	}
}

// popLocked removes and returns the oldest Available ticket of eventName.
func (p *Pool) popLocked(eventName string) *domain.Ticket {
	queue := p.queues[eventName]
	if len(queue) == 0 {
		return nil
	}

	t := queue[0]
	queue[0] = nil
	if len(queue) == 1 {
		delete(p.queues, eventName)
	} else {
		p.queues[eventName] = queue[1:]
	}
	return t
}

func (p *Pool) signalCapacityLocked() {
	close(p.capacityReady)
	p.capacityReady = make(chan struct{})
}

// persistLocked saves t. Failures are logged; the in-memory pool stays the
// source of truth.
func (p *Pool) persistLocked(ctx context.Context, t *domain.Ticket) {
	if p.repo == nil {
		return
	}
	if err := p.repo.Save(context.WithoutCancel(ctx), t.Clone()); err != nil {
		p.logger.ErrorContext(ctx, "failed to persist ticket",
			"ticket_id", t.ID,
			"status", t.Status.String(),
			"error", fmt.Errorf("%w: %w", apperrors.ErrPersistence, err),
		)
	}
}

func (p *Pool) notifyLocked(message string) {
	if p.broadcaster == nil {
		return
	}
	_ = p.broadcaster.Broadcast(domain.NewPoolUpdatedEvent(p.snapshotLocked()))
	_ = p.broadcaster.Broadcast(domain.NewLogEvent(p.clock.Now(), message))
}

func (p *Pool) logLocked(message string) {
	if p.broadcaster == nil {
		return
	}
	_ = p.broadcaster.Broadcast(domain.NewLogEvent(p.clock.Now(), message))
}
