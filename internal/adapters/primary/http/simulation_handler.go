package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lorrc/ticketing-system/internal/adapters/primary/validation"
	"github.com/lorrc/ticketing-system/internal/core/domain"
	"github.com/lorrc/ticketing-system/internal/core/ports"
)

type SimulationHandler struct {
	simulationService ports.SimulationService
	errorHandler      *ErrorHandler
	logger            *slog.Logger
}

func NewSimulationHandler(simulationService ports.SimulationService, errorHandler *ErrorHandler, logger *slog.Logger) *SimulationHandler {
	return &SimulationHandler{
		simulationService: simulationService,
		errorHandler:      errorHandler,
		logger:            logger.With("handler", "simulation"),
	}
}

func (h *SimulationHandler) RegisterRoutes(r chi.Router) {
	r.Post("/vendors", h.HandleStartVendors)
	r.Post("/customers", h.HandleStartCustomers)
	r.Post("/start", h.HandleStart)
}

// parseSize reads ?n= and reports a validation error when it is out of range.
func (h *SimulationHandler) parseSize(r *http.Request) (int, error) {
	n := validation.ParseIntQueryParam(r, "n", 0)

	v := validation.NewValidator()
	v.Range("n", n, 1, domain.MaxSimulationSize)
	if v.HasErrors() {
		return 0, v.Errors()
	}
	return n, nil
}

// HandleStartVendors handles POST /simulation/vendors?n=
func (h *SimulationHandler) HandleStartVendors(w http.ResponseWriter, r *http.Request) {
	h.start(w, r, h.simulationService.StartVendors)
}

// HandleStartCustomers handles POST /simulation/customers?n=
func (h *SimulationHandler) HandleStartCustomers(w http.ResponseWriter, r *http.Request) {
	h.start(w, r, h.simulationService.StartCustomers)
}

// HandleStart handles POST /simulation/start?n=
func (h *SimulationHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	h.start(w, r, h.simulationService.Start)
}

func (h *SimulationHandler) start(
	w http.ResponseWriter,
	r *http.Request,
	launch func(ctx context.Context, n int) ([]ports.RunInfo, error),
) {
	n, err := h.parseSize(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	runs, err := launch(r.Context(), n)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if runs == nil {
		runs = []ports.RunInfo{}
	}
	WriteJSON(w, http.StatusAccepted, ListResponse[ports.RunInfo]{Data: runs, Count: len(runs)})
}
