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

// VendorService runs ticket release loops against the pool.
type VendorService struct {
	pool        ports.TicketPool
	accountRepo ports.AccountRepository
	config      ports.ConfigurationService
	admin       *PauseControl
	clock       clock.Clock
	logger      *slog.Logger
	runs        *runSet
}

var _ ports.VendorService = (*VendorService)(nil)

// NewVendorService creates a new vendor service
func NewVendorService(
	pool ports.TicketPool,
	accountRepo ports.AccountRepository,
	config ports.ConfigurationService,
	admin *PauseControl,
	clk clock.Clock,
	logger *slog.Logger,
) *VendorService {
	return &VendorService{
		pool:        pool,
		accountRepo: accountRepo,
		config:      config,
		admin:       admin,
		clock:       clk,
		logger:      logger.With("component", "vendor_service"),
		runs:        newRunSet(),
	}
}

// StartVendor starts a release run for a signed-up vendor.
func (s *VendorService) StartVendor(ctx context.Context, params ports.ReleaseParams) (ports.RunInfo, error) {
	// 1. Vendor must exist
	if _, err := s.accountRepo.GetByID(ctx, domain.RoleVendor, params.VendorID); err != nil {
		return ports.RunInfo{}, err
	}

	// 2. Launch
	return s.release(ctx, params)
}

// release builds the batch and launches the run without an account check.
func (s *VendorService) release(ctx context.Context, params ports.ReleaseParams) (ports.RunInfo, error) {
	if s.admin.Stopped(domain.RoleVendor) {
		return ports.RunInfo{}, apperrors.ErrStoppedByAdmin
	}

	tickets, err := domain.NewTicketBatch(domain.BatchParams{
		VendorID:     params.VendorID,
		EventName:    params.EventName,
		Price:        params.Price,
		TimeDuration: params.TimeDuration,
		Date:         params.Date,
		BatchSize:    params.BatchSize,
	})
	if err != nil {
		return ports.RunInfo{}, err
	}

	rate := time.Duration(s.config.Current().ReleaseRateMs) * time.Millisecond

	actor := NewActor(ActorConfig{
		ActorID:    params.VendorID,
		Kind:       domain.RoleVendor,
		EventName:  params.EventName,
		Iterations: len(tickets),
		Rate:       rate,
		Admin:      s.admin,
		Clock:      s.clock,
		Logger:     s.logger,
		Step: func(ctx context.Context, i int) error {
			_, err := s.pool.AddTicket(ctx, tickets[i])
			return err
		},
	})
	s.runs.launch(ctx, actor)

	s.logger.InfoContext(ctx, "vendor run started",
		"vendor_id", params.VendorID,
		"event_name", params.EventName,
		"batch_size", params.BatchSize,
	)
	return actor.Info(), nil
}

// StopVendor stops every run of vendorID.
func (s *VendorService) StopVendor(vendorID string) (int, error) {
	n := s.runs.stop(vendorID)
	if n == 0 {
		return 0, apperrors.ErrNoActiveRuns
	}
	s.logger.Info("vendor runs stopped", "vendor_id", vendorID, "runs", n)
	return n, nil
}

func (s *VendorService) ActiveRuns(vendorID string) []ports.RunInfo {
	return s.runs.list(vendorID)
}

// Shutdown stops all runs and waits for them to return.
func (s *VendorService) Shutdown() {
	s.runs.shutdown()
}
