package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/lorrc/ticketing-system/internal/core/domain"
	apperrors "github.com/lorrc/ticketing-system/internal/core/errors"
	"github.com/lorrc/ticketing-system/internal/core/mocks"
	"github.com/lorrc/ticketing-system/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSimulatedIDs(t *testing.T) {
	assert.Equal(t, "VEND001", services.SimulatedVendorID(1))
	assert.Equal(t, "cust012", services.SimulatedCustomerID(12))
	assert.Equal(t, "Event_VEND003", services.SimulatedEventName(3))
	assert.True(t, domain.IsValidAccountID(services.SimulatedVendorID(999)))
	assert.True(t, domain.IsValidAccountID(services.SimulatedCustomerID(1)))
}

func TestSimulationService_Start(t *testing.T) {
	ctx := context.Background()

	t.Run("vendors and customers drain each other", func(t *testing.T) {
		s := newStack(t, 100)
		sim := services.NewSimulationService(s.vendors, s.customers, nil, s.admin, testLogger)

		runs, err := sim.Start(ctx, 2)

		require.NoError(t, err)
		assert.Len(t, runs, 4)

		require.Eventually(t, func() bool {
			return s.pool.BookedByCustomer("cust001")["Event_VEND001"] == services.SimulatedTicketsToBook &&
				s.pool.BookedByCustomer("cust002")["Event_VEND002"] == services.SimulatedTicketsToBook
		}, waitTimeout, time.Millisecond)
		assert.Equal(t, 0, s.pool.CountAvailable())

		for _, snap := range s.pool.Snapshot() {
			assert.GreaterOrEqual(t, snap.Price, 20.0)
			assert.LessOrEqual(t, snap.Price, 120.0)
			assert.Equal(t, services.SimulatedDate, snap.Date)
		}
	})

	t.Run("signs up simulated accounts", func(t *testing.T) {
		s := newStack(t, 100)
		accounts := mocks.NewMockAccountRepository()
		accounts.On("GetByID", mock.Anything, domain.RoleVendor, "VEND001").Return(nil, apperrors.ErrAccountNotFound)
		accounts.On("Create", mock.Anything, mock.AnythingOfType("*domain.Account")).Return(&domain.Account{ID: "VEND001"}, nil)

		sim := services.NewSimulationService(s.vendors, s.customers, services.NewAccountService(accounts), s.admin, testLogger)

		runs, err := sim.StartVendors(ctx, 1)

		require.NoError(t, err)
		require.Len(t, runs, 1)
		assert.Equal(t, "VEND001", runs[0].ActorID)
		accounts.AssertExpectations(t)
	})

	t.Run("existing accounts are reused", func(t *testing.T) {
		s := newStack(t, 100)
		accounts := mocks.NewMockAccountRepository()
		accounts.On("GetByID", mock.Anything, domain.RoleCustomer, "cust001").Return(&domain.Account{ID: "cust001"}, nil)

		sim := services.NewSimulationService(s.vendors, s.customers, services.NewAccountService(accounts), s.admin, testLogger)

		runs, err := sim.StartCustomers(ctx, 1)

		require.NoError(t, err)
		assert.Len(t, runs, 1)
		accounts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("refused when everything is stopped", func(t *testing.T) {
		s := newStack(t, 100)
		s.admin.StopAll()
		sim := services.NewSimulationService(s.vendors, s.customers, nil, s.admin, testLogger)

		_, err := sim.Start(ctx, 1)

		assert.ErrorIs(t, err, apperrors.ErrAllActivityStopped)
	})

	t.Run("skips the stopped kind", func(t *testing.T) {
		s := newStack(t, 100)
		s.admin.Stop(domain.RoleCustomer)
		sim := services.NewSimulationService(s.vendors, s.customers, nil, s.admin, testLogger)

		runs, err := sim.Start(ctx, 1)

		require.NoError(t, err)
		require.Len(t, runs, 1)
		assert.Equal(t, domain.RoleVendor, runs[0].Kind)

		_, err = sim.StartCustomers(ctx, 1)
		assert.ErrorIs(t, err, apperrors.ErrStoppedByAdmin)
	})

	t.Run("invalid size", func(t *testing.T) {
		s := newStack(t, 100)
		sim := services.NewSimulationService(s.vendors, s.customers, nil, s.admin, testLogger)

		_, err := sim.Start(ctx, 0)
		assert.ErrorIs(t, err, apperrors.ErrInvalidSimulationSize)
		_, err = sim.StartVendors(ctx, -1)
		assert.ErrorIs(t, err, apperrors.ErrInvalidSimulationSize)
		_, err = sim.StartCustomers(ctx, domain.MaxSimulationSize+1)
		assert.ErrorIs(t, err, apperrors.ErrInvalidSimulationSize)
	})
}

func TestAdminService(t *testing.T) {
	s := newStack(t, 10)
	svc := services.NewAdminService(s.admin, s.config, testLogger)

	svc.StopAll()
	assert.Equal(t, domain.AdminStatus{VendorsStopped: true, CustomersStopped: true}, svc.Status())

	svc.ResumeAll()
	assert.Equal(t, domain.AdminStatus{}, svc.Status())

	assert.NoError(t, svc.Authenticate(context.Background(), "admin", "admin123"))
	assert.ErrorIs(t, svc.Authenticate(context.Background(), "admin", "nope"), apperrors.ErrInvalidCredentials)
}

func TestMultiBroadcaster(t *testing.T) {
	first := mocks.NewRecordingBroadcaster()
	failing := mocks.NewMockEventBroadcaster()
	failing.On("Broadcast", mock.Anything).Return(assert.AnError)
	last := mocks.NewRecordingBroadcaster()

	multi := services.NewMultiBroadcaster(first, nil, failing, last)
	event := domain.NewLogEvent(time.Now(), "hello")

	err := multi.Broadcast(event)

	assert.ErrorIs(t, err, assert.AnError)
	assert.Len(t, first.Events(), 1)
	assert.Len(t, last.Events(), 1)
}
