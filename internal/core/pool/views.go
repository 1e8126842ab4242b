package pool

import (
	"sort"

	"github.com/lorrc/ticketing-system/internal/core/domain"
)

// CountAvailable returns the number of Available tickets.
func (p *Pool) CountAvailable() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.available
}

// CountsByEvent groups every ticket by event name and status, ordered by
// event name then status.
func (p *Pool) CountsByEvent() []domain.EventStatusCount {
	p.mu.Lock()
	type key struct {
		event  string
		status domain.TicketStatus
	}
	counts := make(map[key]int)
	for _, t := range p.tickets {
		counts[key{t.EventName, t.Status}]++
	}
	p.mu.Unlock()

	out := make([]domain.EventStatusCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, domain.EventStatusCount{EventName: k.event, Status: k.status, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].EventName != out[j].EventName {
			return out[i].EventName < out[j].EventName
		}
		return out[i].Status < out[j].Status
	})
	return out
}

// AvailableByVendor counts a vendor's Available tickets per event.
func (p *Pool) AvailableByVendor(vendorID string) map[string]int {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make(map[string]int)
	for _, t := range p.tickets {
		if t.VendorID == vendorID && t.IsAvailable() {
			out[t.EventName]++
		}
	}
	return out
}

// BookedByCustomer counts a customer's Booked tickets per event.
func (p *Pool) BookedByCustomer(customerID string) map[string]int {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make(map[string]int)
	for _, t := range p.tickets {
		if t.CustomerID == customerID && t.IsBooked() {
			out[t.EventName]++
		}
	}
	return out
}

// Snapshot returns every ticket in insertion order.
func (p *Pool) Snapshot() []domain.TicketSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

// Stats reports the current wait bookkeeping.
func (p *Pool) Stats() domain.PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()

	return domain.PoolStats{
		MaxCapacity:      p.capacity.MaxCapacity(),
		Available:        p.available,
		Booked:           len(p.tickets) - p.available,
		WaitingProducers: p.waitingProducers,
		RegistrySize:     p.registry.size(),
		WaitingConsumers: p.registry.waiting(),
	}
}

func (p *Pool) snapshotLocked() []domain.TicketSnapshot {
	out := make([]domain.TicketSnapshot, len(p.tickets))
	for i, t := range p.tickets {
		out[i] = domain.NewTicketSnapshot(t)
	}
	return out
}
