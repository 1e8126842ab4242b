// Package filestore keeps tickets in a JSON file, and accounts and the
// configuration in memory, for running without a database.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	jsoniter "github.com/json-iterator/go"

	"github.com/lorrc/ticketing-system/internal/core/domain"
	"github.com/lorrc/ticketing-system/internal/core/ports"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// TicketStore holds tickets in insertion order and rewrites the whole file on
// every Save. An empty path keeps the tickets in memory only.
type TicketStore struct {
	path string

	mu      sync.Mutex
	tickets []domain.TicketSnapshot
	index   map[string]int
}

var _ ports.TicketRepository = (*TicketStore)(nil)

func NewTicketStore(path string) *TicketStore {
	return &TicketStore{
		path:  path,
		index: make(map[string]int),
	}
}

// NewMemoryTicketStore returns a store that never touches the disk.
func NewMemoryTicketStore() *TicketStore {
	return NewTicketStore("")
}

// LoadAll reads the file. A missing file is an empty pool.
func (s *TicketStore) LoadAll(ctx context.Context) ([]*domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path != "" {
		if err := s.readLocked(); err != nil {
			return nil, err
		}
	}

	tickets := make([]*domain.Ticket, 0, len(s.tickets))
	for _, snap := range s.tickets {
		tickets = append(tickets, fromSnapshot(snap))
	}
	return tickets, nil
}

// Save upserts the ticket, keeping the position of an existing one.
func (s *TicketStore) Save(ctx context.Context, ticket *domain.Ticket) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := domain.NewTicketSnapshot(ticket)
	if i, ok := s.index[ticket.ID]; ok {
		s.tickets[i] = snap
	} else {
		s.index[ticket.ID] = len(s.tickets)
		s.tickets = append(s.tickets, snap)
	}

	if s.path == "" {
		return nil
	}
	return s.writeLocked()
}

func (s *TicketStore) readLocked() error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.tickets = nil
		s.index = make(map[string]int)
		return nil
	}
	if err != nil {
		return fmt.Errorf("read ticket file: %w", err)
	}

	var tickets []domain.TicketSnapshot
	if len(data) > 0 {
		if err := json.Unmarshal(data, &tickets); err != nil {
			return fmt.Errorf("decode ticket file %s: %w", s.path, err)
		}
	}

	s.tickets = tickets
	s.index = make(map[string]int, len(tickets))
	for i, t := range tickets {
		s.index[t.TicketID] = i
	}
	return nil
}

// writeLocked replaces the file through a temp file and rename, so a crash
// leaves either the old or the new content.
func (s *TicketStore) writeLocked() error {
	data, err := json.MarshalIndent(s.tickets, "", "  ")
	if err != nil {
		return fmt.Errorf("encode tickets: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".tickets-*.json")
	if err != nil {
		return fmt.Errorf("create temp ticket file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp ticket file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp ticket file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace ticket file: %w", err)
	}
	return nil
}

func fromSnapshot(snap domain.TicketSnapshot) *domain.Ticket {
	t := &domain.Ticket{
		ID:           snap.TicketID,
		EventName:    snap.EventName,
		Price:        snap.Price,
		TimeDuration: snap.TimeDuration,
		Date:         snap.Date,
		VendorID:     snap.VendorID,
		Status:       domain.TicketStatus(snap.Status),
	}
	if snap.CustomerID != nil {
		t.CustomerID = *snap.CustomerID
	}
	return t
}
