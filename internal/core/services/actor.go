package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/lorrc/ticketing-system/internal/clock"
	"github.com/lorrc/ticketing-system/internal/core/domain"
	apperrors "github.com/lorrc/ticketing-system/internal/core/errors"
	"github.com/lorrc/ticketing-system/internal/core/ports"
)

// StepFunc performs iteration i of an actor run.
type StepFunc func(ctx context.Context, i int) error

// StopReason tells why an actor run ended.
type StopReason string

const (
	StopCompleted StopReason = "completed"
	StopByActor   StopReason = "stopped"
	StopByAdmin   StopReason = "admin_stopped"
	StopCancelled StopReason = "cancelled"
	StopFailed    StopReason = "failed"
)

// ActorConfig describes one vendor or customer run.
type ActorConfig struct {
	ActorID    string
	Kind       domain.Role
	EventName  string
	Iterations int
	Rate       time.Duration
	Step       StepFunc
	Admin      *PauseControl
	Clock      clock.Clock
	Logger     *slog.Logger
}

// Actor drives a sequence of pool calls at a fixed rate. It owns its stop
// flag; the admin switch for its kind is shared.
type Actor struct {
	id      string
	cfg     ActorConfig
	stopped atomic.Bool

	mu     sync.Mutex
	cancel context.CancelFunc

	done      chan struct{}
	completed atomic.Int64
	reason    StopReason
}

func NewActor(cfg ActorConfig) *Actor {
	if cfg.Clock == nil {
		cfg.Clock = clock.NewSystem()
	}
	if cfg.Admin == nil {
		cfg.Admin = NewPauseControl()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	return &Actor{
		id:   uuid.NewString(),
		cfg:  cfg,
		done: make(chan struct{}),
	}
}

func (a *Actor) ID() string {
	return a.id
}

func (a *Actor) Info() ports.RunInfo {
	return ports.RunInfo{
		ID:        a.id,
		ActorID:   a.cfg.ActorID,
		Kind:      a.cfg.Kind,
		EventName: a.cfg.EventName,
	}
}

// Stop sets the actor's own stop flag and interrupts any blocked pool call.
func (a *Actor) Stop() {
	a.stopped.Store(true)
	a.mu.Lock()
	if a.cancel != nil {
		a.cancel()
	}
	a.mu.Unlock()
}

// Stopped reports the actor's own flag only.
func (a *Actor) Stopped() bool {
	return a.stopped.Load()
}

// Done is closed when Run returns.
func (a *Actor) Done() <-chan struct{} {
	return a.done
}

// Completed returns the number of successful iterations so far.
func (a *Actor) Completed() int {
	return int(a.completed.Load())
}

// Reason is valid once Done is closed.
func (a *Actor) Reason() StopReason {
	<-a.done
	return a.reason
}

// Run executes the plan until it completes, a stop flag is set or ctx ends.
// It must be called at most once.
func (a *Actor) Run(ctx context.Context) StopReason {
	ctx, cancel := context.WithCancel(ctx)
	a.mu.Lock()
	a.cancel = cancel
	a.mu.Unlock()
	defer cancel()
	defer close(a.done)

	logger := a.cfg.Logger.With(
		"run_id", a.id,
		"actor_id", a.cfg.ActorID,
		"kind", string(a.cfg.Kind),
		"event_name", a.cfg.EventName,
	)
	logger.InfoContext(ctx, "actor run started", "iterations", a.cfg.Iterations, "rate_ms", a.cfg.Rate.Milliseconds())

	a.reason = a.loop(ctx, logger)

	logger.InfoContext(ctx, "actor run finished", "reason", string(a.reason), "completed", a.Completed())
	return a.reason
}

func (a *Actor) loop(ctx context.Context, logger *slog.Logger) StopReason {
	for i := 0; i < a.cfg.Iterations; i++ {
		if reason, halted := a.halted(); halted {
			return reason
		}

		if err := a.cfg.Step(ctx, i); err != nil {
			if errors.Is(err, apperrors.ErrCancelled) {
				if reason, halted := a.halted(); halted {
					return reason
				}
				return StopCancelled
			}
			if errors.Is(err, apperrors.ErrDuplicateTicket) {
				logger.WarnContext(ctx, "skipping step", "step", i, "error", err)
				continue
			}
			logger.ErrorContext(ctx, "actor step failed", "step", i, "error", err)
			return StopFailed
		}
		a.completed.Add(1)

		select {
		case <-a.cfg.Clock.After(a.cfg.Rate):
		case <-ctx.Done():
			if reason, halted := a.halted(); halted {
				return reason
			}
			return StopCancelled
		}
	}
	return StopCompleted
}

// halted checks the admin switch first so that it wins over the actor flag.
func (a *Actor) halted() (StopReason, bool) {
	if a.cfg.Admin.Stopped(a.cfg.Kind) {
		return StopByAdmin, true
	}
	if a.stopped.Load() {
		return StopByActor, true
	}
	return "", false
}
