package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lorrc/ticketing-system/internal/core/ports"
)

type AdminHandler struct {
	adminService ports.AdminService
	errorHandler *ErrorHandler
	logger       *slog.Logger
}

func NewAdminHandler(adminService ports.AdminService, errorHandler *ErrorHandler, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
		errorHandler: errorHandler,
		logger:       logger.With("handler", "admin"),
	}
}

// RegisterRoutes mounts the pause switches. Callers restrict them to the
// admin role.
func (h *AdminHandler) RegisterRoutes(r chi.Router) {
	r.Get("/status", h.HandleStatus)
	r.Post("/stop-all", h.HandleStopAll)
	r.Post("/resume-all", h.HandleResumeAll)
}

// HandleStopAll handles POST /admin/stop-all
func (h *AdminHandler) HandleStopAll(w http.ResponseWriter, r *http.Request) {
	h.adminService.StopAll()
	WriteSuccess(w, h.adminService.Status())
}

// HandleResumeAll handles POST /admin/resume-all
func (h *AdminHandler) HandleResumeAll(w http.ResponseWriter, r *http.Request) {
	h.adminService.ResumeAll()
	WriteSuccess(w, h.adminService.Status())
}

// HandleStatus handles GET /admin/status
func (h *AdminHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, h.adminService.Status())
}
