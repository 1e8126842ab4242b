package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"

	"github.com/lorrc/ticketing-system/internal/core/domain"
	apperrors "github.com/lorrc/ticketing-system/internal/core/errors"
	"github.com/lorrc/ticketing-system/internal/core/ports"
)

// Simulation defaults
const (
	SimulatedBatchSize     = 10
	SimulatedTicketsToBook = 10
	SimulatedTimeDuration  = "2 hours"
	SimulatedDate          = "2024-12-01"
	simulatedMinPrice      = 20.0
	simulatedPriceSpread   = 100.0
)

// SimulatedVendorID returns VEND001, VEND002, ...
func SimulatedVendorID(i int) string {
	return fmt.Sprintf("VEND%03d", i)
}

// SimulatedCustomerID returns cust001, cust002, ...
func SimulatedCustomerID(i int) string {
	return fmt.Sprintf("cust%03d", i)
}

// SimulatedEventName is the event released by vendor i and booked by customer i.
func SimulatedEventName(i int) string {
	return "Event_" + SimulatedVendorID(i)
}

// SimulationService launches numbered synthetic vendors and customers.
type SimulationService struct {
	vendors   *VendorService
	customers *CustomerService
	accounts  ports.AccountService
	admin     *PauseControl
	logger    *slog.Logger
}

var _ ports.SimulationService = (*SimulationService)(nil)

// NewSimulationService creates a simulation service. accounts may be nil, in
// which case simulated actors run without signing up first.
func NewSimulationService(
	vendors *VendorService,
	customers *CustomerService,
	accounts ports.AccountService,
	admin *PauseControl,
	logger *slog.Logger,
) *SimulationService {
	return &SimulationService{
		vendors:   vendors,
		customers: customers,
		accounts:  accounts,
		admin:     admin,
		logger:    logger.With("component", "simulation_service"),
	}
}

// StartVendors signs up and starts vendors 1..n, each releasing one batch.
func (s *SimulationService) StartVendors(ctx context.Context, n int) ([]ports.RunInfo, error) {
	if n < 1 || n > domain.MaxSimulationSize {
		return nil, apperrors.ErrInvalidSimulationSize
	}
	if s.admin.Stopped(domain.RoleVendor) {
		return nil, apperrors.ErrStoppedByAdmin
	}

	s.logger.InfoContext(ctx, "starting vendor simulation", "vendors", n)

	runs := make([]ports.RunInfo, 0, n)
	for i := 1; i <= n; i++ {
		vendorID := SimulatedVendorID(i)
		if err := s.signUp(ctx, domain.RoleVendor, vendorID, i); err != nil {
			return runs, err
		}

		run, err := s.vendors.release(ctx, ports.ReleaseParams{
			VendorID:     vendorID,
			EventName:    SimulatedEventName(i),
			Price:        simulatedPrice(),
			TimeDuration: SimulatedTimeDuration,
			Date:         SimulatedDate,
			BatchSize:    SimulatedBatchSize,
		})
		if err != nil {
			return runs, err
		}
		runs = append(runs, run)
	}
	return runs, nil
}

// StartCustomers signs up and starts customers 1..n; customer i books the
// event of vendor i.
func (s *SimulationService) StartCustomers(ctx context.Context, n int) ([]ports.RunInfo, error) {
	if n < 1 || n > domain.MaxSimulationSize {
		return nil, apperrors.ErrInvalidSimulationSize
	}
	if s.admin.Stopped(domain.RoleCustomer) {
		return nil, apperrors.ErrStoppedByAdmin
	}

	s.logger.InfoContext(ctx, "starting customer simulation", "customers", n)

	runs := make([]ports.RunInfo, 0, n)
	for i := 1; i <= n; i++ {
		customerID := SimulatedCustomerID(i)
		if err := s.signUp(ctx, domain.RoleCustomer, customerID, i); err != nil {
			return runs, err
		}

		run, err := s.customers.purchase(ctx, ports.PurchaseParams{
			CustomerID:    customerID,
			EventName:     SimulatedEventName(i),
			TicketsToBook: SimulatedTicketsToBook,
		})
		if err != nil {
			return runs, err
		}
		runs = append(runs, run)
	}
	return runs, nil
}

// Start runs n vendors and n customers. A kind whose admin switch is set is
// skipped; both set is refused.
func (s *SimulationService) Start(ctx context.Context, n int) ([]ports.RunInfo, error) {
	if n < 1 || n > domain.MaxSimulationSize {
		return nil, apperrors.ErrInvalidSimulationSize
	}
	if s.admin.AllStopped() {
		return nil, apperrors.ErrAllActivityStopped
	}

	var runs []ports.RunInfo
	if !s.admin.Stopped(domain.RoleVendor) {
		vendorRuns, err := s.StartVendors(ctx, n)
		runs = append(runs, vendorRuns...)
		if err != nil {
			return runs, err
		}
	}
	if !s.admin.Stopped(domain.RoleCustomer) {
		customerRuns, err := s.StartCustomers(ctx, n)
		runs = append(runs, customerRuns...)
		if err != nil {
			return runs, err
		}
	}
	return runs, nil
}

func (s *SimulationService) signUp(ctx context.Context, role domain.Role, id string, i int) error {
	if s.accounts == nil {
		return nil
	}
	_, err := s.accounts.SignUp(ctx, role, id, fmt.Sprintf("password%d", i))
	if err != nil && !errors.Is(err, apperrors.ErrAccountExists) {
		return fmt.Errorf("sign up %s: %w", id, err)
	}
	return nil
}

func simulatedPrice() float64 {
	p := rand.Float64()*simulatedPriceSpread + simulatedMinPrice
	return math.Round(p*100) / 100
}
