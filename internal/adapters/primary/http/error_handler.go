package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	mw "github.com/lorrc/ticketing-system/internal/adapters/primary/http/middleware"
	apperrors "github.com/lorrc/ticketing-system/internal/core/errors"
)

// GetRequestID retrieves the request ID from context
func GetRequestID(ctx context.Context) string {
	return mw.GetRequestID(ctx)
}

// ErrorResponse is the standard JSON error response format
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Code    string                 `json:"code,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ValidationErrorResponse includes field-level validation errors
type ValidationErrorResponse struct {
	Error  string              `json:"error"`
	Code   string              `json:"code"`
	Fields map[string][]string `json:"fields,omitempty"`
}

// ErrorHandler provides centralized error handling with logging
type ErrorHandler struct {
	logger *slog.Logger
}

// NewErrorHandler creates a new error handler with the given logger
func NewErrorHandler(logger *slog.Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Handle processes an error and writes the appropriate HTTP response
func (h *ErrorHandler) Handle(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperrors.AppError
	var validationErrs *apperrors.ValidationErrors
	if !errors.As(err, &appErr) && errors.As(err, &validationErrs) {
		h.logError(r, http.StatusUnprocessableEntity, err)
		h.writeValidationErrorResponse(w, validationErrs)
		return
	}

	appErr = toAppError(err)
	cause := err
	if appErr.Err != nil {
		cause = appErr.Err
	}
	h.logError(r, appErr.StatusCode, cause)
	h.writeErrorResponse(w, appErr.StatusCode, ErrorResponse{
		Error:   appErr.Message,
		Code:    appErr.Code,
		Details: appErr.Details,
	})
}

// Status returns the HTTP status Handle would write for err.
func (h *ErrorHandler) Status(err error) int {
	var appErr *apperrors.AppError
	var validationErrs *apperrors.ValidationErrors
	if !errors.As(err, &appErr) && errors.As(err, &validationErrs) {
		return http.StatusUnprocessableEntity
	}
	return toAppError(err).StatusCode
}

// toAppError converts domain errors to their HTTP representation. Errors
// that already are an AppError pass through.
func toAppError(err error) *apperrors.AppError {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	// Authentication & Authorization
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		return apperrors.NewUnauthorizedError(err, "INVALID_CREDENTIALS", "Invalid credentials")
	case errors.Is(err, apperrors.ErrUnauthorized):
		return apperrors.NewUnauthorizedError(err, "UNAUTHORIZED", "Authentication required")
	case errors.Is(err, apperrors.ErrForbidden):
		return apperrors.NewForbiddenError("You do not have permission to perform this action")

	// Not Found errors
	case errors.Is(err, apperrors.ErrAccountNotFound):
		return apperrors.NewNotFoundError(err, "ACCOUNT_NOT_FOUND", "Account not found")
	case errors.Is(err, apperrors.ErrNoActiveRuns):
		return apperrors.NewNotFoundError(err, "NO_ACTIVE_RUNS", "No active runs for this account")
	case errors.Is(err, apperrors.ErrNotFound):
		return apperrors.NewNotFoundError(err, "NOT_FOUND", "Resource not found")

	// Conflict errors
	case errors.Is(err, apperrors.ErrAccountExists):
		return apperrors.NewConflictError(err, "ACCOUNT_EXISTS", "An account with this ID already exists")
	case errors.Is(err, apperrors.ErrStoppedByAdmin):
		return apperrors.NewConflictError(err, "STOPPED_BY_ADMIN", err.Error())
	case errors.Is(err, apperrors.ErrAllActivityStopped):
		return apperrors.NewConflictError(err, "ALL_ACTIVITY_STOPPED", err.Error())
	case errors.Is(err, apperrors.ErrDuplicateTicket):
		return apperrors.NewConflictError(err, "DUPLICATE_TICKET", err.Error())

	// Pool rules
	case errors.Is(err, apperrors.ErrInvalidCapacity):
		return apperrors.New(err, http.StatusUnprocessableEntity, "INVALID_CAPACITY", err.Error())
	case errors.Is(err, apperrors.ErrCancelled):
		return apperrors.NewUnavailableError(err, "CANCELLED", "The pool operation was cancelled")

	// Validation errors
	case errors.Is(err, apperrors.ErrEventNameRequired),
		errors.Is(err, apperrors.ErrTicketIDRequired),
		errors.Is(err, apperrors.ErrVendorIDRequired),
		errors.Is(err, apperrors.ErrCustomerIDRequired),
		errors.Is(err, apperrors.ErrInvalidPrice),
		errors.Is(err, apperrors.ErrInvalidBatchSize),
		errors.Is(err, apperrors.ErrInvalidTicketsToBook),
		errors.Is(err, apperrors.ErrInvalidRate),
		errors.Is(err, apperrors.ErrInvalidSimulationSize),
		errors.Is(err, apperrors.ErrInvalidAccountID),
		errors.Is(err, apperrors.ErrPasswordLength):
		return apperrors.NewValidationError(err, err.Error(), nil)
	case errors.Is(err, apperrors.ErrBadRequest):
		return apperrors.NewBadRequestError(err, err.Error())

	// Rate limiting
	case errors.Is(err, apperrors.ErrRateLimited):
		return apperrors.NewRateLimitedError("Too many requests. Please try again later.")

	default:
		return apperrors.NewInternalError(err)
	}
}

// logError logs the error with appropriate context
func (h *ErrorHandler) logError(r *http.Request, statusCode int, err error) {
	logAttrs := []any{
		"method", r.Method,
		"path", r.URL.Path,
		"status_code", statusCode,
		"error", err.Error(),
	}

	// Log at different levels based on status code
	switch {
	case statusCode >= 500:
		h.logger.ErrorContext(r.Context(), "server error", logAttrs...)
	case statusCode >= 400:
		h.logger.WarnContext(r.Context(), "client error", logAttrs...)
	default:
		h.logger.InfoContext(r.Context(), "request error", logAttrs...)
	}
}

// writeErrorResponse writes a JSON error response
func (h *ErrorHandler) writeErrorResponse(w http.ResponseWriter, statusCode int, response ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(response)
}

// writeValidationErrorResponse writes a validation error response
func (h *ErrorHandler) writeValidationErrorResponse(w http.ResponseWriter, errs *apperrors.ValidationErrors) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnprocessableEntity)
	_ = json.NewEncoder(w).Encode(ValidationErrorResponse{
		Error:  "Validation failed",
		Code:   "VALIDATION_ERROR",
		Fields: errs.Errors,
	})
}

// HandleError Helper function to handle errors inline in handlers
// Usage: if HandleError(w, r, err, h.errorHandler) { return }
func HandleError(w http.ResponseWriter, r *http.Request, err error, handler *ErrorHandler) bool {
	if err != nil {
		handler.Handle(w, r, err)
		return true
	}
	return false
}
