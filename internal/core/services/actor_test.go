package services_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lorrc/ticketing-system/internal/clock"
	"github.com/lorrc/ticketing-system/internal/core/domain"
	apperrors "github.com/lorrc/ticketing-system/internal/core/errors"
	"github.com/lorrc/ticketing-system/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPauseControl(t *testing.T) {
	p := services.NewPauseControl()

	assert.False(t, p.Stopped(domain.RoleVendor))
	assert.False(t, p.Stopped(domain.RoleCustomer))

	p.Stop(domain.RoleVendor)
	assert.True(t, p.Stopped(domain.RoleVendor))
	assert.False(t, p.Stopped(domain.RoleCustomer))
	assert.False(t, p.AllStopped())

	p.StopAll()
	assert.True(t, p.AllStopped())
	assert.Equal(t, domain.AdminStatus{VendorsStopped: true, CustomersStopped: true}, p.Status())

	p.ResumeAll()
	assert.Equal(t, domain.AdminStatus{}, p.Status())
	assert.False(t, p.Stopped(domain.RoleAdmin))
}

// spinningActor counts iterations forever until stopped.
func spinningActor(admin *services.PauseControl, kind domain.Role, counter *atomic.Int64) *services.Actor {
	return services.NewActor(services.ActorConfig{
		ActorID:    "actor",
		Kind:       kind,
		Iterations: 1 << 30,
		Rate:       time.Millisecond,
		Admin:      admin,
		Clock:      clock.NewSystem(),
		Logger:     testLogger,
		Step: func(ctx context.Context, i int) error {
			counter.Add(1)
			return nil
		},
	})
}

func TestActor_Completes(t *testing.T) {
	var steps []int
	a := services.NewActor(services.ActorConfig{
		ActorID:    "VEND001",
		Kind:       domain.RoleVendor,
		Iterations: 3,
		Clock:      clock.NewFixed(time.Now()),
		Step: func(ctx context.Context, i int) error {
			steps = append(steps, i)
			return nil
		},
	})

	reason := a.Run(context.Background())

	assert.Equal(t, services.StopCompleted, reason)
	assert.Equal(t, []int{0, 1, 2}, steps)
	assert.Equal(t, 3, a.Completed())
	assert.Equal(t, services.StopCompleted, a.Reason())
}

func TestActor_PauseIndependence(t *testing.T) {
	admin := services.NewPauseControl()

	var countA, countB, countC atomic.Int64
	a := spinningActor(admin, domain.RoleVendor, &countA)
	b := spinningActor(admin, domain.RoleVendor, &countB)
	c := spinningActor(admin, domain.RoleCustomer, &countC)
	go a.Run(context.Background())
	go b.Run(context.Background())
	go c.Run(context.Background())

	require.Eventually(t, func() bool {
		return countA.Load() > 0 && countB.Load() > 0 && countC.Load() > 0
	}, waitTimeout, time.Millisecond)

	// Stopping one actor leaves the others running.
	a.Stop()
	assert.Equal(t, services.StopByActor, waitDone(t, a))
	assert.False(t, b.Stopped())

	before := countB.Load()
	require.Eventually(t, func() bool { return countB.Load() > before }, waitTimeout, time.Millisecond)

	// The vendor admin switch halts b although its own flag is clear, and
	// leaves customers alone.
	admin.Stop(domain.RoleVendor)
	assert.Equal(t, services.StopByAdmin, waitDone(t, b))
	assert.False(t, b.Stopped())

	before = countC.Load()
	require.Eventually(t, func() bool { return countC.Load() > before }, waitTimeout, time.Millisecond)

	admin.StopAll()
	assert.Equal(t, services.StopByAdmin, waitDone(t, c))
}

func TestActor_AdminWinsOverActorFlag(t *testing.T) {
	admin := services.NewPauseControl()
	admin.StopAll()

	var count atomic.Int64
	a := spinningActor(admin, domain.RoleCustomer, &count)
	a.Stop()

	assert.Equal(t, services.StopByAdmin, a.Run(context.Background()))
	assert.Zero(t, count.Load())
}

func TestActor_StopInterruptsBlockedStep(t *testing.T) {
	s := newStack(t, 1)
	_, err := s.pool.AddTicket(context.Background(), &domain.Ticket{ID: "A", EventName: "eventX", VendorID: "VEND001"})
	require.NoError(t, err)

	a := services.NewActor(services.ActorConfig{
		ActorID:    "VEND001",
		Kind:       domain.RoleVendor,
		Iterations: 1,
		Admin:      s.admin,
		Step: func(ctx context.Context, i int) error {
			_, err := s.pool.AddTicket(ctx, &domain.Ticket{ID: "B", EventName: "eventX", VendorID: "VEND001"})
			return err
		},
	})
	go a.Run(context.Background())

	require.Eventually(t, func() bool { return s.pool.Stats().WaitingProducers == 1 }, waitTimeout, time.Millisecond)

	a.Stop()

	assert.Equal(t, services.StopByActor, waitDone(t, a))
	assert.Equal(t, 0, s.pool.Stats().WaitingProducers)
	assert.Equal(t, 0, a.Completed())
}

func TestActor_AdminStopLeavesInFlightCall(t *testing.T) {
	s := newStack(t, 10)

	a := services.NewActor(services.ActorConfig{
		ActorID:    "cust001",
		Kind:       domain.RoleCustomer,
		Iterations: 5,
		Admin:      s.admin,
		Clock:      clock.NewFixed(time.Now()),
		Step: func(ctx context.Context, i int) error {
			_, _, err := s.pool.RemoveTicket(ctx, "eventX", "cust001")
			return err
		},
	})
	go a.Run(context.Background())

	require.Eventually(t, func() bool { return s.pool.Stats().WaitingConsumers["eventX"] == 1 }, waitTimeout, time.Millisecond)

	s.admin.StopAll()
	_, err := s.pool.AddTicket(context.Background(), &domain.Ticket{ID: "A", EventName: "eventX", VendorID: "VEND001"})
	require.NoError(t, err)

	assert.Equal(t, services.StopByAdmin, waitDone(t, a))
	assert.Equal(t, 1, a.Completed(), "the blocked booking still completed")
	assert.Equal(t, map[string]int{"eventX": 1}, s.pool.BookedByCustomer("cust001"))
}

func TestActor_StepErrors(t *testing.T) {
	t.Run("duplicate tickets are skipped", func(t *testing.T) {
		a := services.NewActor(services.ActorConfig{
			Kind:       domain.RoleVendor,
			Iterations: 3,
			Clock:      clock.NewFixed(time.Now()),
			Step: func(ctx context.Context, i int) error {
				if i == 1 {
					return apperrors.ErrDuplicateTicket
				}
				return nil
			},
		})

		assert.Equal(t, services.StopCompleted, a.Run(context.Background()))
		assert.Equal(t, 2, a.Completed())
	})

	t.Run("other errors end the run", func(t *testing.T) {
		a := services.NewActor(services.ActorConfig{
			Kind:       domain.RoleVendor,
			Iterations: 3,
			Clock:      clock.NewFixed(time.Now()),
			Step: func(ctx context.Context, i int) error {
				return errors.New("boom")
			},
		})

		assert.Equal(t, services.StopFailed, a.Run(context.Background()))
		assert.Equal(t, 0, a.Completed())
	})

	t.Run("parent cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		a := services.NewActor(services.ActorConfig{
			Kind:       domain.RoleCustomer,
			Iterations: 3,
			Rate:       time.Hour,
			Clock:      clock.NewSystem(),
			Step: func(ctx context.Context, i int) error {
				return nil
			},
		})

		assert.Equal(t, services.StopCancelled, a.Run(ctx))
		assert.Equal(t, 1, a.Completed())
	})
}
