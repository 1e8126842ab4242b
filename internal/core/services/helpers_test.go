package services_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/lorrc/ticketing-system/internal/clock"
	"github.com/lorrc/ticketing-system/internal/core/domain"
	"github.com/lorrc/ticketing-system/internal/core/mocks"
	"github.com/lorrc/ticketing-system/internal/core/pool"
	"github.com/lorrc/ticketing-system/internal/core/services"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const waitTimeout = 2 * time.Second

var testLogger = slog.New(slog.DiscardHandler)

type stack struct {
	pool      *pool.Pool
	config    *services.ConfigurationService
	admin     *services.PauseControl
	accounts  *mocks.MockAccountRepository
	vendors   *services.VendorService
	customers *services.CustomerService
}

// newStack wires a real pool and services around an in-memory configuration.
// Every account lookup succeeds.
func newStack(t *testing.T, capacity int) *stack {
	t.Helper()

	cfg := services.NewConfigurationService(nil, testLogger)
	require.NoError(t, cfg.Init(context.Background()))

	p := pool.New(pool.Config{Capacity: cfg, Logger: testLogger})
	cfg.BindPool(p)
	require.NoError(t, p.SetMaxCapacity(capacity))

	accounts := mocks.NewMockAccountRepository()
	accounts.On("GetByID", mock.Anything, mock.Anything, mock.Anything).
		Return(&domain.Account{ID: "any"}, nil).Maybe()

	admin := services.NewPauseControl()
	clk := clock.NewFixed(time.Date(2024, 12, 1, 9, 0, 0, 0, time.UTC))

	s := &stack{
		pool:      p,
		config:    cfg,
		admin:     admin,
		accounts:  accounts,
		vendors:   services.NewVendorService(p, accounts, cfg, admin, clk, testLogger),
		customers: services.NewCustomerService(p, accounts, cfg, admin, clk, testLogger),
	}
	t.Cleanup(func() {
		s.vendors.Shutdown()
		s.customers.Shutdown()
	})
	return s
}

func waitDone(t *testing.T, a *services.Actor) services.StopReason {
	t.Helper()
	select {
	case <-a.Done():
		return a.Reason()
	case <-time.After(waitTimeout):
		t.Fatal("actor did not stop")
		return ""
	}
}
