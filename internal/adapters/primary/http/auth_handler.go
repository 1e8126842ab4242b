package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lorrc/ticketing-system/internal/adapters/primary/validation"
	"github.com/lorrc/ticketing-system/internal/auth"
	"github.com/lorrc/ticketing-system/internal/core/domain"
	"github.com/lorrc/ticketing-system/internal/core/ports"
)

// AuthHandler handles sign-up and sign-in for vendors, customers and the admin.
type AuthHandler struct {
	accounts     ports.AccountService
	admin        ports.AdminService
	tm           *auth.TokenManager
	errorHandler *ErrorHandler
	logger       *slog.Logger
}

func NewAuthHandler(
	accounts ports.AccountService,
	admin ports.AdminService,
	tm *auth.TokenManager,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		accounts:     accounts,
		admin:        admin,
		tm:           tm,
		errorHandler: errorHandler,
		logger:       logger.With("handler", "auth"),
	}
}

// RegisterAccountRoutes mounts signup and signin for role.
func (h *AuthHandler) RegisterAccountRoutes(role domain.Role) func(r chi.Router) {
	return func(r chi.Router) {
		r.Post("/signup", h.HandleSignUp(role))
		r.Post("/signin", h.HandleSignIn(role))
	}
}

type CredentialsRequest struct {
	ID       string `json:"id"`
	Password string `json:"password"`
}

func (r *CredentialsRequest) Validate() error {
	v := validation.NewValidator()

	v.Required("id", r.ID).
		Required("password", r.Password)

	if v.HasErrors() {
		return v.Errors()
	}
	return nil
}

type AdminSignInRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AccountResponse struct {
	ID        string `json:"id"`
	Role      string `json:"role"`
	CreatedAt string `json:"createdAt,omitempty"`
}

type TokenResponse struct {
	Token string `json:"token"`
	ID    string `json:"id"`
	Role  string `json:"role"`
}

// HandleSignUp handles POST /{vendors|customers}/signup
func (h *AuthHandler) HandleSignUp(role domain.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := validation.DecodeAndValidate[CredentialsRequest](r)
		if err != nil {
			h.errorHandler.Handle(w, r, err)
			return
		}

		account, err := h.accounts.SignUp(r.Context(), role, req.ID, req.Password)
		if err != nil {
			h.errorHandler.Handle(w, r, err)
			return
		}

		h.logger.InfoContext(r.Context(), "account signed up", "account_id", account.ID, "role", string(role))

		resp := AccountResponse{ID: account.ID, Role: string(account.Role)}
		if !account.CreatedAt.IsZero() {
			resp.CreatedAt = account.CreatedAt.UTC().Format(time.RFC3339)
		}
		WriteCreated(w, resp)
	}
}

// HandleSignIn handles POST /{vendors|customers}/signin
func (h *AuthHandler) HandleSignIn(role domain.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := validation.DecodeAndValidate[CredentialsRequest](r)
		if err != nil {
			h.errorHandler.Handle(w, r, err)
			return
		}
		if err := req.Validate(); err != nil {
			h.errorHandler.Handle(w, r, err)
			return
		}

		account, err := h.accounts.SignIn(r.Context(), role, req.ID, req.Password)
		if err != nil {
			h.errorHandler.Handle(w, r, err)
			return
		}

		h.writeToken(w, r, account.ID, role)
	}
}

// HandleAdminSignIn handles POST /admin/signin
func (h *AuthHandler) HandleAdminSignIn(w http.ResponseWriter, r *http.Request) {
	req, err := validation.DecodeAndValidate[AdminSignInRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := h.admin.Authenticate(r.Context(), req.Username, req.Password); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.writeToken(w, r, req.Username, domain.RoleAdmin)
}

func (h *AuthHandler) writeToken(w http.ResponseWriter, r *http.Request, id string, role domain.Role) {
	token, err := h.tm.GenerateToken(id, role)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, TokenResponse{Token: token, ID: id, Role: string(role)})
}
