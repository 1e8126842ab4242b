package errors

import (
	"errors"
	"fmt"
)

// Domain errors - these represent business rule violations
var (
	// Pool
	ErrInvalidCapacity       = errors.New("max capacity cannot be lower than the current available ticket count")
	ErrCancelled             = errors.New("pool operation cancelled")
	ErrPersistence           = errors.New("ticket persistence failed")
	ErrDuplicateTicket       = errors.New("ticket with this ID is already in the pool")
	ErrTicketAlreadyBooked   = errors.New("ticket is already booked")
	ErrEventNameRequired     = errors.New("event name is required")
	ErrTicketIDRequired      = errors.New("ticket ID is required")
	ErrVendorIDRequired      = errors.New("vendor ID is required")
	ErrCustomerIDRequired    = errors.New("customer ID is required")
	ErrInvalidPrice          = errors.New("ticket price cannot be negative")
	ErrInvalidBatchSize      = errors.New("batch size must be greater than zero")
	ErrInvalidTicketsToBook  = errors.New("tickets to book must be greater than zero")
	ErrInvalidRate           = errors.New("rate cannot be negative")
	ErrStoppedByAdmin        = errors.New("ticket operations have been stopped by admin")
	ErrNoActiveRuns          = errors.New("no active runs for this actor")
	ErrAllActivityStopped    = errors.New("all vendor and customer ticket operations have been stopped by admin")
	ErrInvalidSimulationSize = errors.New("simulation size must be between 1 and 999")

	// Accounts & Authentication
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountExists      = errors.New("account already exists")
	ErrAccountNotFound    = errors.New("account not found")
	ErrInvalidAccountID   = errors.New("account ID must be 4 letters followed by 3 digits")
	ErrPasswordLength     = errors.New("password must be between 8 and 12 characters")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("action forbidden")

	// Configuration
	ErrConfigurationNotFound = errors.New("configuration not found")

	// Generic
	ErrNotFound    = errors.New("resource not found")
	ErrInternal    = errors.New("internal server error")
	ErrBadRequest  = errors.New("bad request")
	ErrRateLimited = errors.New("rate limit exceeded")
)

// AppError wraps errors with additional context for HTTP responses
type AppError struct {
	Err        error  // The underlying error
	Message    string // User-friendly message
	Code       string // Machine-readable error code
	StatusCode int    // HTTP status code
	Details    map[string]interface{}
}

func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err == nil {
		return e.Code
	}
	return e.Err.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New builds an AppError with an explicit status and code. The constructors
// below cover the common statuses.
func New(err error, statusCode int, code, message string) *AppError {
	return &AppError{
		Err:        err,
		Message:    message,
		Code:       code,
		StatusCode: statusCode,
	}
}

// Error constructors for common cases
func NewBadRequestError(err error, message string) *AppError {
	return New(err, 400, "BAD_REQUEST", message)
}

func NewUnauthorizedError(err error, code, message string) *AppError {
	return New(err, 401, code, message)
}

func NewForbiddenError(message string) *AppError {
	return New(ErrForbidden, 403, "FORBIDDEN", message)
}

func NewNotFoundError(err error, code, message string) *AppError {
	return New(err, 404, code, message)
}

func NewConflictError(err error, code, message string) *AppError {
	return New(err, 409, code, message)
}

func NewValidationError(err error, message string, details map[string]interface{}) *AppError {
	appErr := New(err, 422, "VALIDATION_ERROR", message)
	appErr.Details = details
	return appErr
}

func NewRateLimitedError(message string) *AppError {
	return New(ErrRateLimited, 429, "RATE_LIMITED", message)
}

func NewInternalError(err error) *AppError {
	return New(err, 500, "INTERNAL_ERROR", "An unexpected error occurred")
}

func NewUnavailableError(err error, code, message string) *AppError {
	return New(err, 503, code, message)
}

// ValidationErrors holds multiple field validation errors
type ValidationErrors struct {
	Errors map[string][]string `json:"errors"`
}

func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{
		Errors: make(map[string][]string),
	}
}

func (v *ValidationErrors) Add(field, message string) {
	v.Errors[field] = append(v.Errors[field], message)
}

func (v *ValidationErrors) HasErrors() bool {
	return len(v.Errors) > 0
}

func (v *ValidationErrors) Error() string {
	return fmt.Sprintf("validation failed: %d field(s) have errors", len(v.Errors))
}
