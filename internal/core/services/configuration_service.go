package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/lorrc/ticketing-system/internal/core/domain"
	apperrors "github.com/lorrc/ticketing-system/internal/core/errors"
	"github.com/lorrc/ticketing-system/internal/core/ports"
)

// ConfigurationService keeps the live configuration in memory and persists
// every change. It is also the pool's capacity source.
type ConfigurationService struct {
	repo   ports.ConfigurationRepository
	logger *slog.Logger

	// updateMu serializes admin updates so a failed save can restore the
	// previous values.
	updateMu sync.Mutex

	mu        sync.RWMutex
	cfg       domain.Configuration
	persisted domain.Configuration
	pool      ports.TicketPool
	listeners []func()
}

var (
	_ ports.ConfigurationService = (*ConfigurationService)(nil)
	_ ports.CapacityNotifier     = (*ConfigurationService)(nil)
)

// NewConfigurationService creates a configuration service. repo may be nil,
// in which case changes live in memory only.
func NewConfigurationService(repo ports.ConfigurationRepository, logger *slog.Logger) *ConfigurationService {
	return &ConfigurationService{
		repo:   repo,
		logger: logger.With("component", "configuration_service"),
		cfg: domain.Configuration{
			ReleaseRateMs:   domain.DefaultReleaseRateMs,
			RetrievalRateMs: domain.DefaultRetrievalRateMs,
			MaxCapacity:     domain.DefaultMaxCapacity,
			AdminUsername:   domain.DefaultAdminUsername,
		},
	}
}

// BindPool attaches the pool whose capacity this service controls. The pool
// is built with this service as its capacity source, so binding happens
// after both exist.
func (s *ConfigurationService) BindPool(pool ports.TicketPool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pool = pool
}

// Init loads the stored configuration, creating the defaults on first start.
func (s *ConfigurationService) Init(ctx context.Context) error {
	var cfg *domain.Configuration
	var err error

	if s.repo != nil {
		cfg, err = s.repo.Get(ctx)
		if err != nil && !errors.Is(err, apperrors.ErrConfigurationNotFound) {
			return fmt.Errorf("load configuration: %w", err)
		}
	}

	if cfg == nil {
		cfg, err = domain.NewDefaultConfiguration()
		if err != nil {
			return fmt.Errorf("default configuration: %w", err)
		}
		if s.repo != nil {
			if err := s.repo.Save(ctx, cfg); err != nil {
				return fmt.Errorf("save default configuration: %w", err)
			}
		}
		s.logger.InfoContext(ctx, "default configuration created")
	}

	s.mu.Lock()
	s.cfg = *cfg
	s.persisted = *cfg
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "configuration loaded",
		"release_rate_ms", cfg.ReleaseRateMs,
		"retrieval_rate_ms", cfg.RetrievalRateMs,
		"max_capacity", cfg.MaxCapacity,
	)
	return nil
}

func (s *ConfigurationService) MaxCapacity() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.MaxCapacity
}

// SetMaxCapacity writes the in-memory value without validation and notifies
// the registered listeners. Validated changes go through the pool; Sync
// persists a value set here.
func (s *ConfigurationService) SetMaxCapacity(n int) {
	s.mu.Lock()
	s.cfg.MaxCapacity = n
	listeners := s.listeners
	s.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}

// OnCapacityChange registers fn to run after every SetMaxCapacity.
func (s *ConfigurationService) OnCapacityChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners[:len(s.listeners):len(s.listeners)], fn)
}

// Sync persists the in-memory configuration if it drifted from the stored
// one, as when Pool.Load raises the capacity to the persisted available
// count.
func (s *ConfigurationService) Sync(ctx context.Context) error {
	s.updateMu.Lock()
	defer s.updateMu.Unlock()

	s.mu.RLock()
	cfg, persisted := s.cfg, s.persisted
	s.mu.RUnlock()
	if cfg == persisted {
		return nil
	}

	if err := s.save(ctx, &cfg); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "configuration synced", "max_capacity", cfg.MaxCapacity)
	return nil
}

func (s *ConfigurationService) Current() domain.Configuration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

func (s *ConfigurationService) CheckAdmin(username, password string) bool {
	cfg := s.Current()
	return cfg.CheckAdmin(username, password)
}

func (s *ConfigurationService) View(ctx context.Context) (domain.ConfigurationView, error) {
	cfg := s.Current()

	s.mu.RLock()
	pool := s.pool
	s.mu.RUnlock()

	available := 0
	if pool != nil {
		available = pool.CountAvailable()
	}

	return domain.ConfigurationView{
		ReleaseRateMs:    cfg.ReleaseRateMs,
		RetrievalRateMs:  cfg.RetrievalRateMs,
		MaxCapacity:      cfg.MaxCapacity,
		AvailableTickets: available,
		AdminUsername:    cfg.AdminUsername,
	}, nil
}

// UpdateTicketSettings changes rates and capacity. Rates apply to runs
// started afterwards; capacity applies immediately. If the change cannot be
// persisted the previous settings are restored.
func (s *ConfigurationService) UpdateTicketSettings(ctx context.Context, params ports.UpdateTicketSettingsParams) (domain.ConfigurationView, error) {
	s.updateMu.Lock()
	defer s.updateMu.Unlock()

	// 1. Admin check
	if !s.CheckAdmin(params.AdminUsername, params.AdminPassword) {
		return domain.ConfigurationView{}, apperrors.ErrInvalidCredentials
	}

	// 2. Validate
	if err := params.Settings.Validate(); err != nil {
		return domain.ConfigurationView{}, err
	}

	s.mu.RLock()
	pool := s.pool
	s.mu.RUnlock()
	if pool == nil {
		return domain.ConfigurationView{}, fmt.Errorf("%w: ticket pool not bound", apperrors.ErrInternal)
	}

	previous := s.Current()

	// 3. Capacity goes through the pool so it is checked against the
	// available count under the pool lock.
	if err := pool.SetMaxCapacity(params.Settings.MaxCapacity); err != nil {
		return domain.ConfigurationView{}, err
	}

	// 4. Rates
	s.mu.Lock()
	s.cfg.ReleaseRateMs = params.Settings.ReleaseRateMs
	s.cfg.RetrievalRateMs = params.Settings.RetrievalRateMs
	cfg := s.cfg
	s.mu.Unlock()

	// 5. Persist
	if err := s.save(ctx, &cfg); err != nil {
		s.restoreTicketSettings(ctx, pool, previous)
		return domain.ConfigurationView{}, err
	}

	s.logger.InfoContext(ctx, "ticket settings updated",
		"release_rate_ms", cfg.ReleaseRateMs,
		"retrieval_rate_ms", cfg.RetrievalRateMs,
		"max_capacity", cfg.MaxCapacity,
	)
	return s.View(ctx)
}

// UpdateAdminCredentials replaces the admin username and password.
func (s *ConfigurationService) UpdateAdminCredentials(ctx context.Context, params ports.UpdateAdminCredentialsParams) error {
	s.updateMu.Lock()
	defer s.updateMu.Unlock()

	if !s.CheckAdmin(params.OldUsername, params.OldPassword) {
		return apperrors.ErrInvalidCredentials
	}

	errs := apperrors.NewValidationErrors()
	if params.NewUsername == "" {
		errs.Add("newUsername", "New username is required")
	}
	if !domain.IsValidPassword(params.NewPassword) {
		errs.Add("newPassword", apperrors.ErrPasswordLength.Error())
	}
	if errs.HasErrors() {
		return errs
	}

	hash, err := domain.HashPassword(params.NewPassword)
	if err != nil {
		return err
	}

	s.mu.Lock()
	previous := s.cfg
	s.cfg.AdminUsername = params.NewUsername
	s.cfg.AdminPasswordHash = hash
	cfg := s.cfg
	s.mu.Unlock()

	if err := s.save(ctx, &cfg); err != nil {
		s.mu.Lock()
		s.cfg.AdminUsername = previous.AdminUsername
		s.cfg.AdminPasswordHash = previous.AdminPasswordHash
		s.mu.Unlock()
		return err
	}

	s.logger.InfoContext(ctx, "admin credentials updated", "admin_username", params.NewUsername)
	return nil
}

// restoreTicketSettings rolls back rates and capacity after a failed save.
// The capacity cannot go below tickets released since the change, in which
// case the new capacity stays live and Sync persists it later.
func (s *ConfigurationService) restoreTicketSettings(ctx context.Context, pool ports.TicketPool, previous domain.Configuration) {
	s.mu.Lock()
	s.cfg.ReleaseRateMs = previous.ReleaseRateMs
	s.cfg.RetrievalRateMs = previous.RetrievalRateMs
	s.mu.Unlock()

	if err := pool.SetMaxCapacity(previous.MaxCapacity); err != nil {
		s.logger.WarnContext(ctx, "could not restore max capacity after failed save",
			"max_capacity", previous.MaxCapacity,
			"error", err,
		)
	}
}

// save persists cfg and records it as the stored configuration. Callers
// hold updateMu.
func (s *ConfigurationService) save(ctx context.Context, cfg *domain.Configuration) error {
	if s.repo != nil {
		if err := s.repo.Save(ctx, cfg); err != nil {
			return fmt.Errorf("save configuration: %w", err)
		}
	}
	s.mu.Lock()
	s.persisted = *cfg
	s.mu.Unlock()
	return nil
}
