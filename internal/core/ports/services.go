package ports

import (
	"context"

	"github.com/lorrc/ticketing-system/internal/core/domain"
)

// CapacitySource supplies the live maximum capacity read before every admission check.
type CapacitySource interface {
	MaxCapacity() int
	SetMaxCapacity(n int)
}

// CapacityNotifier is implemented by capacity sources whose value can change
// outside the pool. fn must not block.
type CapacityNotifier interface {
	OnCapacityChange(fn func())
}

// EventBroadcaster is a fire-and-forget notification sink. Implementations
// must not block the caller.
type EventBroadcaster interface {
	Broadcast(event domain.Event) error
}

// TicketPool is the event-scoped bounded pool shared by all actors.
type TicketPool interface {
	AddTicket(ctx context.Context, ticket *domain.Ticket) (bool, error)
	RemoveTicket(ctx context.Context, eventName, customerID string) (bool, string, error)
	SetMaxCapacity(n int) error
	MaxCapacity() int
	CountAvailable() int
	CountsByEvent() []domain.EventStatusCount
	AvailableByVendor(vendorID string) map[string]int
	BookedByCustomer(customerID string) map[string]int
	Snapshot() []domain.TicketSnapshot
	Stats() domain.PoolStats
}

// ReleaseParams defines the input for starting a vendor release run.
type ReleaseParams struct {
	VendorID     string
	EventName    string
	Price        float64
	TimeDuration string
	Date         string
	BatchSize    int
}

// PurchaseParams defines the input for starting a customer purchase run.
type PurchaseParams struct {
	CustomerID    string
	EventName     string
	TicketsToBook int
}

// UpdateTicketSettingsParams defines the admin-authorised settings change.
type UpdateTicketSettingsParams struct {
	AdminUsername string
	AdminPassword string
	Settings      domain.TicketSettings
}

// UpdateAdminCredentialsParams defines the admin credential rotation.
type UpdateAdminCredentialsParams struct {
	OldUsername string
	OldPassword string
	NewUsername string
	NewPassword string
}

// RunInfo describes one running actor.
type RunInfo struct {
	ID        string      `json:"id"`
	ActorID   string      `json:"actorId"`
	Kind      domain.Role `json:"kind"`
	EventName string      `json:"eventName"`
}

// AccountService defines the port for vendor and customer sign-up/sign-in.
type AccountService interface {
	SignUp(ctx context.Context, role domain.Role, id, password string) (*domain.Account, error)
	SignIn(ctx context.Context, role domain.Role, id, password string) (*domain.Account, error)
}

// VendorService starts and stops ticket release runs.
type VendorService interface {
	StartVendor(ctx context.Context, params ReleaseParams) (RunInfo, error)
	StopVendor(vendorID string) (int, error)
	ActiveRuns(vendorID string) []RunInfo
}

// CustomerService starts and stops ticket purchase runs.
type CustomerService interface {
	StartCustomer(ctx context.Context, params PurchaseParams) (RunInfo, error)
	StopCustomer(customerID string) (int, error)
	ActiveRuns(customerID string) []RunInfo
}

// AdminService exposes the system-wide pause switches.
type AdminService interface {
	StopAll()
	ResumeAll()
	Status() domain.AdminStatus
	Authenticate(ctx context.Context, username, password string) error
}

// ConfigurationService manages the persisted live configuration.
type ConfigurationService interface {
	CapacitySource
	Init(ctx context.Context) error
	Current() domain.Configuration
	View(ctx context.Context) (domain.ConfigurationView, error)
	UpdateTicketSettings(ctx context.Context, params UpdateTicketSettingsParams) (domain.ConfigurationView, error)
	UpdateAdminCredentials(ctx context.Context, params UpdateAdminCredentialsParams) error
	CheckAdmin(username, password string) bool
}

// SimulationService launches batches of synthetic vendors and customers.
type SimulationService interface {
	StartVendors(ctx context.Context, n int) ([]RunInfo, error)
	StartCustomers(ctx context.Context, n int) ([]RunInfo, error)
	Start(ctx context.Context, n int) ([]RunInfo, error)
}
