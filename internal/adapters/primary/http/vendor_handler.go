package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	mw "github.com/lorrc/ticketing-system/internal/adapters/primary/http/middleware"
	"github.com/lorrc/ticketing-system/internal/adapters/primary/validation"
	"github.com/lorrc/ticketing-system/internal/core/domain"
	"github.com/lorrc/ticketing-system/internal/core/ports"
)

type VendorHandler struct {
	vendorService ports.VendorService
	pool          ports.TicketPool
	errorHandler  *ErrorHandler
	logger        *slog.Logger
}

func NewVendorHandler(
	vendorService ports.VendorService,
	pool ports.TicketPool,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *VendorHandler {
	return &VendorHandler{
		vendorService: vendorService,
		pool:          pool,
		errorHandler:  errorHandler,
		logger:        logger.With("handler", "vendor"),
	}
}

// RegisterRoutes mounts the per-vendor routes. Callers put JWTMiddleware in
// front of them.
func (h *VendorHandler) RegisterRoutes(r chi.Router) {
	r.Route("/{vendorID}", func(r chi.Router) {
		r.Use(mw.RequireRole(domain.RoleVendor, domain.RoleAdmin))
		r.Use(mw.RequireSelf("vendorID"))

		r.Get("/runs", h.HandleListRuns)
		r.Post("/runs", h.HandleStartRun)
		r.Post("/runs/stop", h.HandleStopRuns)
		r.Get("/tickets", h.HandleAvailableTickets)
	})
}

type ReleaseRequest struct {
	EventName    string  `json:"eventName"`
	Price        float64 `json:"price"`
	TimeDuration string  `json:"timeDuration"`
	Date         string  `json:"date"`
	BatchSize    int     `json:"batchSize"`
}

func (r *ReleaseRequest) Validate() error {
	v := validation.NewValidator()

	v.Required("eventName", r.EventName).
		MaxLength("eventName", r.EventName, 255).
		MinFloat("price", r.Price, 0).
		Min("batchSize", r.BatchSize, 1)

	if v.HasErrors() {
		return v.Errors()
	}
	return nil
}

type StopRunsResponse struct {
	Stopped int `json:"stopped"`
}

// HandleStartRun handles POST /vendors/{vendorID}/runs
func (h *VendorHandler) HandleStartRun(w http.ResponseWriter, r *http.Request) {
	vendorID := chi.URLParam(r, "vendorID")

	req, err := validation.DecodeAndValidate[ReleaseRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	run, err := h.vendorService.StartVendor(r.Context(), ports.ReleaseParams{
		VendorID:     vendorID,
		EventName:    req.EventName,
		Price:        req.Price,
		TimeDuration: req.TimeDuration,
		Date:         req.Date,
		BatchSize:    req.BatchSize,
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteJSON(w, http.StatusAccepted, run)
}

// HandleStopRuns handles POST /vendors/{vendorID}/runs/stop
func (h *VendorHandler) HandleStopRuns(w http.ResponseWriter, r *http.Request) {
	stopped, err := h.vendorService.StopVendor(chi.URLParam(r, "vendorID"))
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteSuccess(w, StopRunsResponse{Stopped: stopped})
}

// HandleListRuns handles GET /vendors/{vendorID}/runs
func (h *VendorHandler) HandleListRuns(w http.ResponseWriter, r *http.Request) {
	WriteList(w, h.vendorService.ActiveRuns(chi.URLParam(r, "vendorID")))
}

// HandleAvailableTickets handles GET /vendors/{vendorID}/tickets
func (h *VendorHandler) HandleAvailableTickets(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, h.pool.AvailableByVendor(chi.URLParam(r, "vendorID")))
}
