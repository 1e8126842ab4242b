package services

import (
	"context"
	"log/slog"

	"github.com/lorrc/ticketing-system/internal/core/domain"
	apperrors "github.com/lorrc/ticketing-system/internal/core/errors"
	"github.com/lorrc/ticketing-system/internal/core/ports"
)

// AdminService flips the system-wide pause switches. Running actors see the
// change at their next flag check; blocked pool calls are left alone.
type AdminService struct {
	admin  *PauseControl
	config ports.ConfigurationService
	logger *slog.Logger
}

var _ ports.AdminService = (*AdminService)(nil)

func NewAdminService(admin *PauseControl, config ports.ConfigurationService, logger *slog.Logger) *AdminService {
	return &AdminService{
		admin:  admin,
		config: config,
		logger: logger.With("component", "admin_service"),
	}
}

func (s *AdminService) StopAll() {
	s.admin.StopAll()
	s.logger.Info("all vendor and customer activity stopped")
}

func (s *AdminService) ResumeAll() {
	s.admin.ResumeAll()
	s.logger.Info("all vendor and customer activity resumed")
}

func (s *AdminService) Status() domain.AdminStatus {
	return s.admin.Status()
}

// Authenticate checks admin credentials against the live configuration.
func (s *AdminService) Authenticate(ctx context.Context, username, password string) error {
	if !s.config.CheckAdmin(username, password) {
		s.logger.WarnContext(ctx, "admin sign-in failed", "admin_username", username)
		return apperrors.ErrInvalidCredentials
	}
	return nil
}
