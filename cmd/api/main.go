package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	httpAdapter "github.com/lorrc/ticketing-system/internal/adapters/primary/http"
	mw "github.com/lorrc/ticketing-system/internal/adapters/primary/http/middleware"
	"github.com/lorrc/ticketing-system/internal/adapters/primary/websocket"
	"github.com/lorrc/ticketing-system/internal/adapters/secondary/redisbus"
	"github.com/lorrc/ticketing-system/internal/auth"
	"github.com/lorrc/ticketing-system/internal/clock"
	"github.com/lorrc/ticketing-system/internal/config"
	"github.com/lorrc/ticketing-system/internal/core/pool"
	"github.com/lorrc/ticketing-system/internal/core/ports"
	"github.com/lorrc/ticketing-system/internal/core/services"
	"github.com/lorrc/ticketing-system/internal/infrastructure/logging"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// 2. Initialize Structured Logger
	logger := logging.NewLogger(logging.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Output:      os.Stdout,
		ServiceName: cfg.App.Name,
		Environment: cfg.App.Environment,
	})

	logger.Info("starting service",
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
		"store", cfg.Store.Backend,
	)

	// ctx lives until shutdown and drives the hub and the redis publisher.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Initialize Storage
	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	// 4. Initialize Security & Real-time Components
	tokenManager := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.AccessTokenTTL)
	hub := websocket.NewHub(logger)
	go hub.Run(ctx)

	sinks := []ports.EventBroadcaster{hub}
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() { _ = rdb.Close() }()

		pingCtx, pingCancel := context.WithTimeout(ctx, 2*time.Second)
		err := rdb.Ping(pingCtx).Err()
		pingCancel()
		if err != nil {
			logger.Error("redis ping failed", "addr", cfg.Redis.Addr, "error", err)
			os.Exit(1)
		}

		publisher := redisbus.NewPublisher(rdb,
			redisbus.WithChannelPrefix(cfg.Redis.Channel),
			redisbus.WithLogger(logger),
		)
		go publisher.Run(ctx)
		sinks = append(sinks, publisher)
		logger.Info("redis event publisher enabled", "addr", cfg.Redis.Addr, "channel", cfg.Redis.Channel)
	}

	// 5. Initialize Rate Limiters
	var generalRateLimiter, authRateLimiter *mw.RateLimiter
	if cfg.RateLimit.Enabled {
		generalConfig := mw.DefaultRateLimiterConfig()
		generalConfig.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
		generalConfig.BurstSize = cfg.RateLimit.BurstSize
		generalRateLimiter = mw.NewRateLimiter(generalConfig)
		defer generalRateLimiter.Stop()

		authConfig := mw.AuthRateLimiterConfig()
		authConfig.RequestsPerSecond = cfg.RateLimit.AuthRPS
		authConfig.BurstSize = cfg.RateLimit.AuthBurst
		authRateLimiter = mw.NewRateLimiter(authConfig)
		defer authRateLimiter.Stop()
	}

	// 6. Dependency Injection (Wiring the Hexagon)

	// Configuration is the pool's capacity source, so it loads first.
	configService := services.NewConfigurationService(st.configs, logger)
	if err := configService.Init(ctx); err != nil {
		logger.Error("failed to initialize configuration", "error", err)
		os.Exit(1)
	}

	clk := clock.NewSystem()
	ticketPool := pool.New(pool.Config{
		Capacity:    configService,
		Repository:  st.tickets,
		Broadcaster: services.NewMultiBroadcaster(sinks...),
		Clock:       clk,
		Logger:      logger,
	})
	configService.BindPool(ticketPool)

	if err := ticketPool.Load(ctx); err != nil {
		logger.Error("failed to load persisted tickets", "error", err)
		os.Exit(1)
	}
	if err := configService.Sync(ctx); err != nil {
		logger.Error("failed to persist configuration", "error", err)
		os.Exit(1)
	}

	pause := services.NewPauseControl()
	accountService := services.NewAccountService(st.accounts)
	adminService := services.NewAdminService(pause, configService, logger)
	vendorService := services.NewVendorService(ticketPool, st.accounts, configService, pause, clk, logger)
	customerService := services.NewCustomerService(ticketPool, st.accounts, configService, pause, clk, logger)
	simulationService := services.NewSimulationService(vendorService, customerService, accountService, pause, logger)

	// 7. Setup Router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		TokenManager:    tokenManager,
		Accounts:        accountService,
		Vendors:         vendorService,
		Customers:       customerService,
		Admin:           adminService,
		Configuration:   configService,
		Simulation:      simulationService,
		Pool:            ticketPool,
		WebSocket:       httpAdapter.NewWebSocketHandler(hub, ticketPool, tokenManager, cfg, logger),
		Health:          httpAdapter.NewHealthHandler(st.health, ticketPool, cfg.App.Version),
		RateLimiter:     generalRateLimiter,
		AuthRateLimiter: authRateLimiter,
		CORSOrigins:     cfg.Server.CORSAllowedOrigins,
		Logger:          logger,
	})

	// 8. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("shutdown signal received", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	// Stop every vendor and customer run, then the hub and publisher.
	vendorService.Shutdown()
	customerService.Shutdown()
	cancel()

	logger.Info("server shutdown complete")
}
