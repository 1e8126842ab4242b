package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	mw "github.com/lorrc/ticketing-system/internal/adapters/primary/http/middleware"
	"github.com/lorrc/ticketing-system/internal/auth"
	"github.com/lorrc/ticketing-system/internal/core/domain"
	"github.com/lorrc/ticketing-system/internal/core/ports"
)

// RouterConfig collects everything the REST surface is built from. The rate
// limiters, WebSocket and Health are optional.
type RouterConfig struct {
	TokenManager  *auth.TokenManager
	Accounts      ports.AccountService
	Vendors       ports.VendorService
	Customers     ports.CustomerService
	Admin         ports.AdminService
	Configuration ports.ConfigurationService
	Simulation    ports.SimulationService
	Pool          ports.TicketPool

	WebSocket       http.Handler
	Health          *HealthHandler
	RateLimiter     *mw.RateLimiter
	AuthRateLimiter *mw.RateLimiter
	CORSOrigins     []string

	Logger *slog.Logger
}

// NewRouter builds the chi router with every route under /api/v1 and the
// health probes at the root.
func NewRouter(cfg RouterConfig) chi.Router {
	logger := cfg.Logger
	errorHandler := NewErrorHandler(logger)

	authHandler := NewAuthHandler(cfg.Accounts, cfg.Admin, cfg.TokenManager, errorHandler, logger)
	vendorHandler := NewVendorHandler(cfg.Vendors, cfg.Pool, errorHandler, logger)
	customerHandler := NewCustomerHandler(cfg.Customers, cfg.Pool, errorHandler, logger)
	adminHandler := NewAdminHandler(cfg.Admin, errorHandler, logger)
	configHandler := NewConfigHandler(cfg.Configuration, errorHandler, logger)
	poolHandler := NewPoolHandler(cfg.Pool, logger)
	simulationHandler := NewSimulationHandler(cfg.Simulation, errorHandler, logger)

	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.RequestID)
	r.Use(mw.RequestLogger(logger))
	r.Use(mw.RecoveryLogger(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", mw.RequestIDHeader},
		ExposedHeaders:   []string{mw.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Middleware)
	}

	if cfg.Health != nil {
		cfg.Health.RegisterRoutes(r)
	}

	authLimited := func(r chi.Router) {
		if cfg.AuthRateLimiter != nil {
			r.Use(cfg.AuthRateLimiter.Middleware)
		}
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/vendors", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				authLimited(r)
				authHandler.RegisterAccountRoutes(domain.RoleVendor)(r)
			})
			r.Group(func(r chi.Router) {
				r.Use(mw.JWTMiddleware(cfg.TokenManager))
				vendorHandler.RegisterRoutes(r)
			})
		})

		r.Route("/customers", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				authLimited(r)
				authHandler.RegisterAccountRoutes(domain.RoleCustomer)(r)
			})
			r.Group(func(r chi.Router) {
				r.Use(mw.JWTMiddleware(cfg.TokenManager))
				customerHandler.RegisterRoutes(r)
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				authLimited(r)
				r.Post("/signin", authHandler.HandleAdminSignIn)
			})
			r.Group(func(r chi.Router) {
				r.Use(mw.JWTMiddleware(cfg.TokenManager))
				r.Use(mw.RequireRole(domain.RoleAdmin))
				adminHandler.RegisterRoutes(r)
			})
		})

		r.Route("/simulation", func(r chi.Router) {
			r.Use(mw.JWTMiddleware(cfg.TokenManager))
			r.Use(mw.RequireRole(domain.RoleAdmin))
			simulationHandler.RegisterRoutes(r)
		})

		// Configuration updates authenticate with admin credentials in the body.
		r.Route("/config", func(r chi.Router) {
			configHandler.RegisterRoutes(r)
			r.Group(func(r chi.Router) {
				authLimited(r)
				configHandler.RegisterUpdateRoutes(r)
			})
		})

		r.Route("/ticket-pool", poolHandler.RegisterRoutes)

		if cfg.WebSocket != nil {
			r.Get("/ws", cfg.WebSocket.ServeHTTP)
		}
	})

	return r
}
