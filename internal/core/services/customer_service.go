package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/lorrc/ticketing-system/internal/clock"
	"github.com/lorrc/ticketing-system/internal/core/domain"
	apperrors "github.com/lorrc/ticketing-system/internal/core/errors"
	"github.com/lorrc/ticketing-system/internal/core/ports"
)

// CustomerService runs ticket purchase loops against the pool.
type CustomerService struct {
	pool        ports.TicketPool
	accountRepo ports.AccountRepository
	config      ports.ConfigurationService
	admin       *PauseControl
	clock       clock.Clock
	logger      *slog.Logger
	runs        *runSet
}

var _ ports.CustomerService = (*CustomerService)(nil)

// NewCustomerService creates a new customer service
func NewCustomerService(
	pool ports.TicketPool,
	accountRepo ports.AccountRepository,
	config ports.ConfigurationService,
	admin *PauseControl,
	clk clock.Clock,
	logger *slog.Logger,
) *CustomerService {
	return &CustomerService{
		pool:        pool,
		accountRepo: accountRepo,
		config:      config,
		admin:       admin,
		clock:       clk,
		logger:      logger.With("component", "customer_service"),
		runs:        newRunSet(),
	}
}

// StartCustomer starts a purchase run for a signed-up customer.
func (s *CustomerService) StartCustomer(ctx context.Context, params ports.PurchaseParams) (ports.RunInfo, error) {
	if _, err := s.accountRepo.GetByID(ctx, domain.RoleCustomer, params.CustomerID); err != nil {
		return ports.RunInfo{}, err
	}
	return s.purchase(ctx, params)
}

func (s *CustomerService) purchase(ctx context.Context, params ports.PurchaseParams) (ports.RunInfo, error) {
	if s.admin.Stopped(domain.RoleCustomer) {
		return ports.RunInfo{}, apperrors.ErrStoppedByAdmin
	}

	errs := apperrors.NewValidationErrors()
	if params.CustomerID == "" {
		errs.Add("customerId", apperrors.ErrCustomerIDRequired.Error())
	}
	if params.EventName == "" {
		errs.Add("eventName", apperrors.ErrEventNameRequired.Error())
	}
	if params.TicketsToBook <= 0 {
		errs.Add("ticketsToBook", apperrors.ErrInvalidTicketsToBook.Error())
	}
	if errs.HasErrors() {
		return ports.RunInfo{}, errs
	}

	rate := time.Duration(s.config.Current().RetrievalRateMs) * time.Millisecond

	actor := NewActor(ActorConfig{
		ActorID:    params.CustomerID,
		Kind:       domain.RoleCustomer,
		EventName:  params.EventName,
		Iterations: params.TicketsToBook,
		Rate:       rate,
		Admin:      s.admin,
		Clock:      s.clock,
		Logger:     s.logger,
		Step: func(ctx context.Context, _ int) error {
			_, _, err := s.pool.RemoveTicket(ctx, params.EventName, params.CustomerID)
			return err
		},
	})
	s.runs.launch(ctx, actor)

	s.logger.InfoContext(ctx, "customer run started",
		"customer_id", params.CustomerID,
		"event_name", params.EventName,
		"tickets_to_book", params.TicketsToBook,
	)
	return actor.Info(), nil
}

// StopCustomer stops every run of customerID.
func (s *CustomerService) StopCustomer(customerID string) (int, error) {
	n := s.runs.stop(customerID)
	if n == 0 {
		return 0, apperrors.ErrNoActiveRuns
	}
	s.logger.Info("customer runs stopped", "customer_id", customerID, "runs", n)
	return n, nil
}

func (s *CustomerService) ActiveRuns(customerID string) []ports.RunInfo {
	return s.runs.list(customerID)
}

// Shutdown stops all runs and waits for them to return.
func (s *CustomerService) Shutdown() {
	s.runs.shutdown()
}
