package mocks

import (
	"context"
	"sync"

	"github.com/lorrc/ticketing-system/internal/core/domain"
	"github.com/lorrc/ticketing-system/internal/core/ports"
	"github.com/stretchr/testify/mock"
)

// MockTicketRepository is a mock implementation of ports.TicketRepository
type MockTicketRepository struct {
	mock.Mock
}

var _ ports.TicketRepository = (*MockTicketRepository)(nil)

func NewMockTicketRepository() *MockTicketRepository {
	return &MockTicketRepository{}
}

func (m *MockTicketRepository) LoadAll(ctx context.Context) ([]*domain.Ticket, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Ticket), args.Error(1)
}

func (m *MockTicketRepository) Save(ctx context.Context, ticket *domain.Ticket) error {
	args := m.Called(ctx, ticket)
	return args.Error(0)
}

// MockAccountRepository is a mock implementation of ports.AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

var _ ports.AccountRepository = (*MockAccountRepository)(nil)

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{}
}

func (m *MockAccountRepository) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	args := m.Called(ctx, account)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) GetByID(ctx context.Context, role domain.Role, id string) (*domain.Account, error) {
	args := m.Called(ctx, role, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

// MockConfigurationRepository is a mock implementation of ports.ConfigurationRepository
type MockConfigurationRepository struct {
	mock.Mock
}

var _ ports.ConfigurationRepository = (*MockConfigurationRepository)(nil)

func NewMockConfigurationRepository() *MockConfigurationRepository {
	return &MockConfigurationRepository{}
}

func (m *MockConfigurationRepository) Get(ctx context.Context) (*domain.Configuration, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Configuration), args.Error(1)
}

func (m *MockConfigurationRepository) Save(ctx context.Context, cfg *domain.Configuration) error {
	args := m.Called(ctx, cfg)
	return args.Error(0)
}

// MockEventBroadcaster is a mock implementation of ports.EventBroadcaster
type MockEventBroadcaster struct {
	mock.Mock
}

var _ ports.EventBroadcaster = (*MockEventBroadcaster)(nil)

func NewMockEventBroadcaster() *MockEventBroadcaster {
	return &MockEventBroadcaster{}
}

func (m *MockEventBroadcaster) Broadcast(event domain.Event) error {
	args := m.Called(event)
	return args.Error(0)
}

// RecordingBroadcaster collects every broadcast event. Safe for concurrent use.
type RecordingBroadcaster struct {
	mu     sync.Mutex
	events []domain.Event
}

var _ ports.EventBroadcaster = (*RecordingBroadcaster)(nil)

func NewRecordingBroadcaster() *RecordingBroadcaster {
	return &RecordingBroadcaster{}
}

func (r *RecordingBroadcaster) Broadcast(event domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

// Events returns a copy of the recorded events.
func (r *RecordingBroadcaster) Events() []domain.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Event(nil), r.events...)
}

// OfType returns the recorded events of the given type.
func (r *RecordingBroadcaster) OfType(eventType domain.EventType) []domain.Event {
	var out []domain.Event
	for _, e := range r.Events() {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

// MockTicketPool is a mock implementation of ports.TicketPool
type MockTicketPool struct {
	mock.Mock
}

var _ ports.TicketPool = (*MockTicketPool)(nil)

func NewMockTicketPool() *MockTicketPool {
	return &MockTicketPool{}
}

func (m *MockTicketPool) AddTicket(ctx context.Context, ticket *domain.Ticket) (bool, error) {
	args := m.Called(ctx, ticket)
	return args.Bool(0), args.Error(1)
}

func (m *MockTicketPool) RemoveTicket(ctx context.Context, eventName, customerID string) (bool, string, error) {
	args := m.Called(ctx, eventName, customerID)
	return args.Bool(0), args.String(1), args.Error(2)
}

func (m *MockTicketPool) SetMaxCapacity(n int) error {
	args := m.Called(n)
	return args.Error(0)
}

func (m *MockTicketPool) MaxCapacity() int {
	args := m.Called()
	return args.Int(0)
}

func (m *MockTicketPool) CountAvailable() int {
	args := m.Called()
	return args.Int(0)
}

func (m *MockTicketPool) CountsByEvent() []domain.EventStatusCount {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]domain.EventStatusCount)
}

func (m *MockTicketPool) AvailableByVendor(vendorID string) map[string]int {
	args := m.Called(vendorID)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(map[string]int)
}

func (m *MockTicketPool) BookedByCustomer(customerID string) map[string]int {
	args := m.Called(customerID)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(map[string]int)
}

func (m *MockTicketPool) Snapshot() []domain.TicketSnapshot {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]domain.TicketSnapshot)
}

func (m *MockTicketPool) Stats() domain.PoolStats {
	args := m.Called()
	return args.Get(0).(domain.PoolStats)
}
