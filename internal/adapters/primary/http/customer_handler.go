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

type CustomerHandler struct {
	customerService ports.CustomerService
	pool            ports.TicketPool
	errorHandler    *ErrorHandler
	logger          *slog.Logger
}

func NewCustomerHandler(
	customerService ports.CustomerService,
	pool ports.TicketPool,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
		pool:            pool,
		errorHandler:    errorHandler,
		logger:          logger.With("handler", "customer"),
	}
}

func (h *CustomerHandler) RegisterRoutes(r chi.Router) {
	r.Route("/{customerID}", func(r chi.Router) {
		r.Use(mw.RequireRole(domain.RoleCustomer, domain.RoleAdmin))
		r.Use(mw.RequireSelf("customerID"))

		r.Get("/runs", h.HandleListRuns)
		r.Post("/runs", h.HandleStartRun)
		r.Post("/runs/stop", h.HandleStopRuns)
		r.Get("/tickets", h.HandleBookedTickets)
	})
}

type PurchaseRequest struct {
	EventName     string `json:"eventName"`
	TicketsToBook int    `json:"ticketsToBook"`
}

func (r *PurchaseRequest) Validate() error {
	v := validation.NewValidator()

	v.Required("eventName", r.EventName).
		MaxLength("eventName", r.EventName, 255).
		Min("ticketsToBook", r.TicketsToBook, 1)

	if v.HasErrors() {
		return v.Errors()
	}
	return nil
}

// HandleStartRun handles POST /customers/{customerID}/runs
func (h *CustomerHandler) HandleStartRun(w http.ResponseWriter, r *http.Request) {
	req, err := validation.DecodeAndValidate[PurchaseRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	run, err := h.customerService.StartCustomer(r.Context(), ports.PurchaseParams{
		CustomerID:    chi.URLParam(r, "customerID"),
		EventName:     req.EventName,
		TicketsToBook: req.TicketsToBook,
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteJSON(w, http.StatusAccepted, run)
}

// HandleStopRuns handles POST /customers/{customerID}/runs/stop
func (h *CustomerHandler) HandleStopRuns(w http.ResponseWriter, r *http.Request) {
	stopped, err := h.customerService.StopCustomer(chi.URLParam(r, "customerID"))
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteSuccess(w, StopRunsResponse{Stopped: stopped})
}

// HandleListRuns handles GET /customers/{customerID}/runs
func (h *CustomerHandler) HandleListRuns(w http.ResponseWriter, r *http.Request) {
	WriteList(w, h.customerService.ActiveRuns(chi.URLParam(r, "customerID")))
}

// HandleBookedTickets handles GET /customers/{customerID}/tickets
func (h *CustomerHandler) HandleBookedTickets(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, h.pool.BookedByCustomer(chi.URLParam(r, "customerID")))
}
