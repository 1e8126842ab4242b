package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lorrc/ticketing-system/internal/core/domain"
	"github.com/lorrc/ticketing-system/internal/core/ports"
)

// PoolHandler serves the read-only ticket pool views.
type PoolHandler struct {
	pool   ports.TicketPool
	logger *slog.Logger
}

func NewPoolHandler(pool ports.TicketPool, logger *slog.Logger) *PoolHandler {
	return &PoolHandler{
		pool:   pool,
		logger: logger.With("handler", "ticket_pool"),
	}
}

func (h *PoolHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleSnapshot)
	r.Get("/stats", h.HandleStats)
	r.Get("/events", h.HandleCountsByEvent)
	r.Get("/events/available", h.HandleCountsByStatus(domain.StatusAvailable))
	r.Get("/events/booked", h.HandleCountsByStatus(domain.StatusBooked))
	r.Get("/vendors/{vendorID}/available", h.HandleAvailableByVendor)
	r.Get("/customers/{customerID}/booked", h.HandleBookedByCustomer)
}

type EventCountResponse struct {
	EventName string `json:"eventName"`
	Count     int    `json:"count"`
}

// HandleSnapshot handles GET /ticket-pool
func (h *PoolHandler) HandleSnapshot(w http.ResponseWriter, r *http.Request) {
	WriteList(w, h.pool.Snapshot())
}

// HandleStats handles GET /ticket-pool/stats
func (h *PoolHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, h.pool.Stats())
}

// HandleCountsByEvent handles GET /ticket-pool/events
func (h *PoolHandler) HandleCountsByEvent(w http.ResponseWriter, r *http.Request) {
	WriteList(w, h.pool.CountsByEvent())
}

// HandleCountsByStatus serves the per-event counts of one status.
func (h *PoolHandler) HandleCountsByStatus(status domain.TicketStatus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var counts []EventCountResponse
		for _, row := range h.pool.CountsByEvent() {
			if row.Status == status {
				counts = append(counts, EventCountResponse{EventName: row.EventName, Count: row.Count})
			}
		}
		WriteList(w, counts)
	}
}

// HandleAvailableByVendor handles GET /ticket-pool/vendors/{vendorID}/available
func (h *PoolHandler) HandleAvailableByVendor(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, h.pool.AvailableByVendor(chi.URLParam(r, "vendorID")))
}

// HandleBookedByCustomer handles GET /ticket-pool/customers/{customerID}/booked
func (h *PoolHandler) HandleBookedByCustomer(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, h.pool.BookedByCustomer(chi.URLParam(r, "customerID")))
}
