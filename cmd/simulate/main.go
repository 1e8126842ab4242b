// Command simulate runs numbered vendors and customers against an in-process
// ticket pool and logs the pool state when the run ends.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/lorrc/ticketing-system/internal/adapters/secondary/filestore"
	"github.com/lorrc/ticketing-system/internal/clock"
	"github.com/lorrc/ticketing-system/internal/core/domain"
	"github.com/lorrc/ticketing-system/internal/core/pool"
	"github.com/lorrc/ticketing-system/internal/core/ports"
	"github.com/lorrc/ticketing-system/internal/core/services"
	"github.com/lorrc/ticketing-system/internal/infrastructure/logging"
)

type options struct {
	size          int
	capacity      int
	releaseRate   time.Duration
	retrievalRate time.Duration
	duration      time.Duration
	storeFile     string
	logLevel      string
	logFormat     string
}

func main() {
	opts := parseFlags(os.Args[1:])

	logger := logging.NewLogger(logging.Config{
		Level:       opts.logLevel,
		Format:      opts.logFormat,
		Output:      os.Stderr,
		ServiceName: "ticketing-simulate",
		Environment: "local",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, logger); err != nil {
		logger.Error("simulation failed", "error", err)
		os.Exit(1)
	}
}

func parseFlags(args []string) options {
	var opts options

	fs := pflag.NewFlagSet("simulate", pflag.ExitOnError)
	fs.IntVarP(&opts.size, "size", "n", 10, "number of vendors and customers to start")
	fs.IntVarP(&opts.capacity, "capacity", "c", domain.DefaultMaxCapacity, "maximum available tickets in the pool")
	fs.DurationVar(&opts.releaseRate, "release-rate", time.Duration(domain.DefaultReleaseRateMs)*time.Millisecond, "delay between ticket releases")
	fs.DurationVar(&opts.retrievalRate, "retrieval-rate", time.Duration(domain.DefaultRetrievalRateMs)*time.Millisecond, "delay between ticket purchases")
	fs.DurationVarP(&opts.duration, "duration", "d", 30*time.Second, "how long to run before reporting")
	fs.StringVar(&opts.storeFile, "store-file", "", "persist tickets to this JSON file (in-memory when empty)")
	fs.StringVar(&opts.logLevel, "log-level", "info", "debug, info, warn or error")
	fs.StringVar(&opts.logFormat, "log-format", "text", "json or text")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: simulate [flags]\n\n")
		fs.PrintDefaults()
	}
	_ = fs.Parse(args)

	return opts
}

func run(ctx context.Context, opts options, logger *slog.Logger) error {
	if opts.size < 1 || opts.size > domain.MaxSimulationSize {
		return fmt.Errorf("size must be between 1 and %d, got %d", domain.MaxSimulationSize, opts.size)
	}

	var tickets ports.TicketRepository = filestore.NewMemoryTicketStore()
	if opts.storeFile != "" {
		tickets = filestore.NewTicketStore(opts.storeFile)
	}
	accounts := filestore.NewAccountStore()

	configService := services.NewConfigurationService(filestore.NewConfigurationStore(), logger)
	if err := configService.Init(ctx); err != nil {
		return err
	}

	clk := clock.NewSystem()
	ticketPool := pool.New(pool.Config{
		Capacity:   configService,
		Repository: tickets,
		Clock:      clk,
		Logger:     logger,
	})
	configService.BindPool(ticketPool)

	if err := ticketPool.Load(ctx); err != nil {
		return err
	}
	if err := configService.Sync(ctx); err != nil {
		return err
	}

	_, err := configService.UpdateTicketSettings(ctx, ports.UpdateTicketSettingsParams{
		AdminUsername: domain.DefaultAdminUsername,
		AdminPassword: domain.DefaultAdminPassword,
		Settings: domain.TicketSettings{
			ReleaseRateMs:   int(opts.releaseRate.Milliseconds()),
			RetrievalRateMs: int(opts.retrievalRate.Milliseconds()),
			MaxCapacity:     opts.capacity,
		},
	})
	if err != nil {
		return fmt.Errorf("apply settings: %w", err)
	}

	pause := services.NewPauseControl()
	vendors := services.NewVendorService(ticketPool, accounts, configService, pause, clk, logger)
	customers := services.NewCustomerService(ticketPool, accounts, configService, pause, clk, logger)
	simulation := services.NewSimulationService(vendors, customers, services.NewAccountService(accounts), pause, logger)

	runs, err := simulation.Start(ctx, opts.size)
	if err != nil {
		return err
	}
	logger.Info("simulation started", "runs", len(runs), "duration", opts.duration)

	select {
	case <-ctx.Done():
		logger.Info("interrupted")
	case <-time.After(opts.duration):
	}

	vendors.Shutdown()
	customers.Shutdown()

	report(ticketPool, logger)
	return nil
}

func report(p ports.TicketPool, logger *slog.Logger) {
	stats := p.Stats()
	logger.Info("pool state",
		"max_capacity", stats.MaxCapacity,
		"available", stats.Available,
		"booked", stats.Booked,
		"waiting_producers", stats.WaitingProducers,
		"registry_size", stats.RegistrySize,
	)

	for _, c := range p.CountsByEvent() {
		logger.Info("event", "event_name", c.EventName, "status", c.Status, "count", c.Count)
	}
}
