package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/lorrc/ticketing-system/internal/core/domain"
	apperrors "github.com/lorrc/ticketing-system/internal/core/errors"
	"github.com/lorrc/ticketing-system/internal/core/mocks"
	"github.com/lorrc/ticketing-system/internal/core/pool"
	"github.com/lorrc/ticketing-system/internal/core/ports"
	"github.com/lorrc/ticketing-system/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestConfigurationService_Init(t *testing.T) {
	ctx := context.Background()

	t.Run("creates defaults on first start", func(t *testing.T) {
		repo := mocks.NewMockConfigurationRepository()
		repo.On("Get", ctx).Return(nil, apperrors.ErrConfigurationNotFound)
		repo.On("Save", ctx, mock.MatchedBy(func(cfg *domain.Configuration) bool {
			return cfg.MaxCapacity == domain.DefaultMaxCapacity && cfg.AdminUsername == "admin"
		})).Return(nil)

		svc := services.NewConfigurationService(repo, testLogger)
		require.NoError(t, svc.Init(ctx))

		assert.Equal(t, domain.DefaultMaxCapacity, svc.MaxCapacity())
		assert.Equal(t, domain.DefaultReleaseRateMs, svc.Current().ReleaseRateMs)
		assert.True(t, svc.CheckAdmin("admin", "admin123"))
		repo.AssertExpectations(t)
	})

	t.Run("loads stored configuration", func(t *testing.T) {
		hash, err := domain.HashPassword("secret99")
		require.NoError(t, err)

		repo := mocks.NewMockConfigurationRepository()
		repo.On("Get", ctx).Return(&domain.Configuration{
			ReleaseRateMs:     250,
			RetrievalRateMs:   500,
			MaxCapacity:       12,
			AdminUsername:     "root",
			AdminPasswordHash: hash,
		}, nil)

		svc := services.NewConfigurationService(repo, testLogger)
		require.NoError(t, svc.Init(ctx))

		assert.Equal(t, 12, svc.MaxCapacity())
		assert.Equal(t, 250, svc.Current().ReleaseRateMs)
		assert.True(t, svc.CheckAdmin("root", "secret99"))
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("storage error", func(t *testing.T) {
		repo := mocks.NewMockConfigurationRepository()
		repo.On("Get", ctx).Return(nil, errors.New("connection refused"))

		svc := services.NewConfigurationService(repo, testLogger)

		assert.Error(t, svc.Init(ctx))
	})
}

func newConfiguredPool(t *testing.T, repo ports.ConfigurationRepository) (*services.ConfigurationService, *pool.Pool) {
	t.Helper()
	svc := services.NewConfigurationService(repo, testLogger)
	require.NoError(t, svc.Init(context.Background()))
	p := pool.New(pool.Config{Capacity: svc, Logger: testLogger})
	svc.BindPool(p)
	return svc, p
}

func TestConfigurationService_UpdateTicketSettings(t *testing.T) {
	ctx := context.Background()
	settings := domain.TicketSettings{ReleaseRateMs: 200, RetrievalRateMs: 300, MaxCapacity: 5}

	t.Run("success", func(t *testing.T) {
		repo := mocks.NewMockConfigurationRepository()
		repo.On("Get", ctx).Return(nil, apperrors.ErrConfigurationNotFound)
		repo.On("Save", ctx, mock.AnythingOfType("*domain.Configuration")).Return(nil)
		svc, p := newConfiguredPool(t, repo)

		view, err := svc.UpdateTicketSettings(ctx, ports.UpdateTicketSettingsParams{
			AdminUsername: "admin",
			AdminPassword: "admin123",
			Settings:      settings,
		})

		require.NoError(t, err)
		assert.Equal(t, 5, view.MaxCapacity)
		assert.Equal(t, 200, view.ReleaseRateMs)
		assert.Equal(t, 300, view.RetrievalRateMs)
		assert.Equal(t, 5, p.MaxCapacity())
		repo.AssertNumberOfCalls(t, "Save", 2) // defaults + update
	})

	t.Run("invalid admin credentials", func(t *testing.T) {
		svc, _ := newConfiguredPool(t, nil)

		_, err := svc.UpdateTicketSettings(ctx, ports.UpdateTicketSettingsParams{
			AdminUsername: "admin",
			AdminPassword: "wrong",
			Settings:      settings,
		})

		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
		assert.Equal(t, domain.DefaultMaxCapacity, svc.MaxCapacity())
	})

	t.Run("capacity below available count", func(t *testing.T) {
		svc, p := newConfiguredPool(t, nil)
		for _, id := range []string{"a", "b", "c"} {
			_, err := p.AddTicket(ctx, &domain.Ticket{ID: id, EventName: "Concert", VendorID: "VEND001"})
			require.NoError(t, err)
		}

		_, err := svc.UpdateTicketSettings(ctx, ports.UpdateTicketSettingsParams{
			AdminUsername: "admin",
			AdminPassword: "admin123",
			Settings:      domain.TicketSettings{ReleaseRateMs: 1, RetrievalRateMs: 1, MaxCapacity: 2},
		})

		assert.ErrorIs(t, err, apperrors.ErrInvalidCapacity)
		cfg := svc.Current()
		assert.Equal(t, domain.DefaultMaxCapacity, cfg.MaxCapacity)
		assert.Equal(t, domain.DefaultReleaseRateMs, cfg.ReleaseRateMs, "configuration unchanged")

		view, err := svc.View(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, view.AvailableTickets)
	})

	t.Run("negative rates", func(t *testing.T) {
		svc, _ := newConfiguredPool(t, nil)

		_, err := svc.UpdateTicketSettings(ctx, ports.UpdateTicketSettingsParams{
			AdminUsername: "admin",
			AdminPassword: "admin123",
			Settings:      domain.TicketSettings{ReleaseRateMs: -1, MaxCapacity: 5},
		})

		var validationErr *apperrors.ValidationErrors
		assert.ErrorAs(t, err, &validationErr)
	})

	t.Run("pool not bound", func(t *testing.T) {
		svc := services.NewConfigurationService(nil, testLogger)
		require.NoError(t, svc.Init(ctx))

		_, err := svc.UpdateTicketSettings(ctx, ports.UpdateTicketSettingsParams{
			AdminUsername: "admin",
			AdminPassword: "admin123",
			Settings:      settings,
		})

		assert.ErrorIs(t, err, apperrors.ErrInternal)
	})
}

func TestConfigurationService_UpdateAdminCredentials(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		svc, _ := newConfiguredPool(t, nil)

		err := svc.UpdateAdminCredentials(ctx, ports.UpdateAdminCredentialsParams{
			OldUsername: "admin",
			OldPassword: "admin123",
			NewUsername: "boss",
			NewPassword: "n3wpassw0rd",
		})

		require.NoError(t, err)
		assert.True(t, svc.CheckAdmin("boss", "n3wpassw0rd"))
		assert.False(t, svc.CheckAdmin("admin", "admin123"))
	})

	t.Run("wrong old credentials", func(t *testing.T) {
		svc, _ := newConfiguredPool(t, nil)

		err := svc.UpdateAdminCredentials(ctx, ports.UpdateAdminCredentialsParams{
			OldUsername: "admin",
			OldPassword: "nope",
			NewUsername: "boss",
			NewPassword: "n3wpassw0rd",
		})

		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})

	t.Run("invalid new credentials", func(t *testing.T) {
		svc, _ := newConfiguredPool(t, nil)

		err := svc.UpdateAdminCredentials(ctx, ports.UpdateAdminCredentialsParams{
			OldUsername: "admin",
			OldPassword: "admin123",
			NewPassword: "short",
		})

		var validationErr *apperrors.ValidationErrors
		require.ErrorAs(t, err, &validationErr)
		assert.Contains(t, validationErr.Errors, "newUsername")
		assert.Contains(t, validationErr.Errors, "newPassword")
	})
}

func TestConfigurationService_FailedSaveRestoresSettings(t *testing.T) {
	ctx := context.Background()

	t.Run("ticket settings", func(t *testing.T) {
		repo := mocks.NewMockConfigurationRepository()
		repo.On("Get", ctx).Return(nil, apperrors.ErrConfigurationNotFound)
		repo.On("Save", ctx, mock.Anything).Return(nil).Once()
		repo.On("Save", ctx, mock.Anything).Return(errors.New("disk full"))
		svc, p := newConfiguredPool(t, repo)

		_, err := svc.UpdateTicketSettings(ctx, ports.UpdateTicketSettingsParams{
			AdminUsername: "admin",
			AdminPassword: "admin123",
			Settings:      domain.TicketSettings{ReleaseRateMs: 200, RetrievalRateMs: 300, MaxCapacity: 5},
		})

		require.Error(t, err)
		cfg := svc.Current()
		assert.Equal(t, domain.DefaultMaxCapacity, cfg.MaxCapacity)
		assert.Equal(t, domain.DefaultReleaseRateMs, cfg.ReleaseRateMs)
		assert.Equal(t, domain.DefaultRetrievalRateMs, cfg.RetrievalRateMs)
		assert.Equal(t, domain.DefaultMaxCapacity, p.MaxCapacity())
	})

	t.Run("admin credentials", func(t *testing.T) {
		repo := mocks.NewMockConfigurationRepository()
		repo.On("Get", ctx).Return(nil, apperrors.ErrConfigurationNotFound)
		repo.On("Save", ctx, mock.Anything).Return(nil).Once()
		repo.On("Save", ctx, mock.Anything).Return(errors.New("disk full"))
		svc, _ := newConfiguredPool(t, repo)

		err := svc.UpdateAdminCredentials(ctx, ports.UpdateAdminCredentialsParams{
			OldUsername: "admin",
			OldPassword: "admin123",
			NewUsername: "boss",
			NewPassword: "n3wpassw0rd",
		})

		require.Error(t, err)
		assert.True(t, svc.CheckAdmin("admin", "admin123"))
		assert.False(t, svc.CheckAdmin("boss", "n3wpassw0rd"))
	})
}

func TestConfigurationService_SyncPersistsLoadedCapacity(t *testing.T) {
	ctx := context.Background()

	repo := mocks.NewMockConfigurationRepository()
	repo.On("Get", ctx).Return(&domain.Configuration{
		ReleaseRateMs:   100,
		RetrievalRateMs: 100,
		MaxCapacity:     2,
		AdminUsername:   "admin",
	}, nil)
	repo.On("Save", ctx, mock.MatchedBy(func(cfg *domain.Configuration) bool {
		return cfg.MaxCapacity == 4
	})).Return(nil).Once()

	tickets := mocks.NewMockTicketRepository()
	var stored []*domain.Ticket
	for _, id := range []string{"a", "b", "c", "d"} {
		stored = append(stored, &domain.Ticket{ID: id, EventName: "Concert", VendorID: "VEND001", Status: domain.StatusAvailable})
	}
	tickets.On("LoadAll", ctx).Return(stored, nil)

	svc := services.NewConfigurationService(repo, testLogger)
	require.NoError(t, svc.Init(ctx))
	p := pool.New(pool.Config{Capacity: svc, Repository: tickets, Logger: testLogger})
	svc.BindPool(p)

	require.NoError(t, p.Load(ctx))
	assert.Equal(t, 4, svc.MaxCapacity())

	require.NoError(t, svc.Sync(ctx))
	require.NoError(t, svc.Sync(ctx), "nothing left to persist")

	repo.AssertNumberOfCalls(t, "Save", 1)
}

func TestConfigurationService_SetMaxCapacityNotifies(t *testing.T) {
	svc := services.NewConfigurationService(nil, testLogger)

	calls := 0
	svc.OnCapacityChange(func() { calls++ })
	svc.SetMaxCapacity(7)

	assert.Equal(t, 7, svc.MaxCapacity())
	assert.Equal(t, 1, calls)
}
