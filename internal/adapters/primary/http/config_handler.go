package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lorrc/ticketing-system/internal/adapters/primary/validation"
	"github.com/lorrc/ticketing-system/internal/core/domain"
	"github.com/lorrc/ticketing-system/internal/core/ports"
)

// ConfigHandler exposes the live configuration. Updates carry the admin
// credentials in the body instead of a session token.
type ConfigHandler struct {
	configService ports.ConfigurationService
	errorHandler  *ErrorHandler
	logger        *slog.Logger
}

func NewConfigHandler(configService ports.ConfigurationService, errorHandler *ErrorHandler, logger *slog.Logger) *ConfigHandler {
	return &ConfigHandler{
		configService: configService,
		errorHandler:  errorHandler,
		logger:        logger.With("handler", "config"),
	}
}

func (h *ConfigHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleView)
}

// RegisterUpdateRoutes mounts the credential-checked updates separately so
// callers can rate limit them like sign-in.
func (h *ConfigHandler) RegisterUpdateRoutes(r chi.Router) {
	r.Put("/ticket-settings", h.HandleUpdateTicketSettings)
	r.Put("/admin-credentials", h.HandleUpdateAdminCredentials)
}

type UpdateTicketSettingsRequest struct {
	AdminUsername string `json:"adminUsername"`
	AdminPassword string `json:"adminPassword"`
	ReleaseRate   *int   `json:"releaseRate"`
	RetrievalRate *int   `json:"retrievalRate"`
	MaxCapacity   *int   `json:"maxCapacity"`
}

func (r *UpdateTicketSettingsRequest) Validate() error {
	v := validation.NewValidator()

	v.Required("adminUsername", r.AdminUsername).
		Required("adminPassword", r.AdminPassword).
		NotNil("releaseRate", r.ReleaseRate).
		NotNil("retrievalRate", r.RetrievalRate).
		NotNil("maxCapacity", r.MaxCapacity)

	if v.HasErrors() {
		return v.Errors()
	}
	return nil
}

type UpdateAdminCredentialsRequest struct {
	OldUsername string `json:"oldUsername"`
	OldPassword string `json:"oldPassword"`
	NewUsername string `json:"newUsername"`
	NewPassword string `json:"newPassword"`
}

func (r *UpdateAdminCredentialsRequest) Validate() error {
	v := validation.NewValidator()

	v.Required("oldUsername", r.OldUsername).
		Required("oldPassword", r.OldPassword).
		Required("newUsername", r.NewUsername).
		MaxLength("newUsername", r.NewUsername, 64).
		Password("newPassword", r.NewPassword)

	if v.HasErrors() {
		return v.Errors()
	}
	return nil
}

// HandleView handles GET /config
func (h *ConfigHandler) HandleView(w http.ResponseWriter, r *http.Request) {
	view, err := h.configService.View(r.Context())
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteSuccess(w, view)
}

// HandleUpdateTicketSettings handles PUT /config/ticket-settings
func (h *ConfigHandler) HandleUpdateTicketSettings(w http.ResponseWriter, r *http.Request) {
	req, err := validation.DecodeAndValidate[UpdateTicketSettingsRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	view, err := h.configService.UpdateTicketSettings(r.Context(), ports.UpdateTicketSettingsParams{
		AdminUsername: req.AdminUsername,
		AdminPassword: req.AdminPassword,
		Settings: domain.TicketSettings{
			ReleaseRateMs:   *req.ReleaseRate,
			RetrievalRateMs: *req.RetrievalRate,
			MaxCapacity:     *req.MaxCapacity,
		},
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteSuccess(w, view)
}

// HandleUpdateAdminCredentials handles PUT /config/admin-credentials
func (h *ConfigHandler) HandleUpdateAdminCredentials(w http.ResponseWriter, r *http.Request) {
	req, err := validation.DecodeAndValidate[UpdateAdminCredentialsRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	err = h.configService.UpdateAdminCredentials(r.Context(), ports.UpdateAdminCredentialsParams{
		OldUsername: req.OldUsername,
		OldPassword: req.OldPassword,
		NewUsername: req.NewUsername,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteMessage(w, http.StatusOK, "Admin credentials updated")
}
