package domain

import (
	apperrors "github.com/lorrc/ticketing-system/internal/core/errors"
)

// Defaults applied when no configuration has been stored yet.
const (
	DefaultReleaseRateMs   = 1000
	DefaultRetrievalRateMs = 1000
	DefaultMaxCapacity     = 100
	DefaultAdminUsername   = "admin"
	DefaultAdminPassword   = "admin123"
)

// Configuration is the live, persisted system configuration.
// Rates are the pause between two actor iterations, in milliseconds.
type Configuration struct {
	ReleaseRateMs     int
	RetrievalRateMs   int
	MaxCapacity       int
	AdminUsername     string
	AdminPasswordHash string
}

// TicketSettings is the admin-editable subset of the configuration.
type TicketSettings struct {
	ReleaseRateMs   int
	RetrievalRateMs int
	MaxCapacity     int
}

// Validate validates ticket settings
func (s TicketSettings) Validate() error {
	errs := apperrors.NewValidationErrors()

	if s.ReleaseRateMs < 0 {
		errs.Add("releaseRate", apperrors.ErrInvalidRate.Error())
	}
	if s.RetrievalRateMs < 0 {
		errs.Add("retrievalRate", apperrors.ErrInvalidRate.Error())
	}
	if s.MaxCapacity < 0 {
		errs.Add("maxCapacity", "Max capacity cannot be negative")
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}

// NewDefaultConfiguration builds the first-start configuration.
func NewDefaultConfiguration() (*Configuration, error) {
	hash, err := HashPassword(DefaultAdminPassword)
	if err != nil {
		return nil, err
	}
	return &Configuration{
		ReleaseRateMs:     DefaultReleaseRateMs,
		RetrievalRateMs:   DefaultRetrievalRateMs,
		MaxCapacity:       DefaultMaxCapacity,
		AdminUsername:     DefaultAdminUsername,
		AdminPasswordHash: hash,
	}, nil
}

// CheckAdmin verifies admin credentials against the stored hash.
func (c *Configuration) CheckAdmin(username, password string) bool {
	return username == c.AdminUsername && CheckPasswordHash(c.AdminPasswordHash, password)
}

// ConfigurationView is the externally reported configuration. It never
// carries the admin password hash.
type ConfigurationView struct {
	ReleaseRateMs    int    `json:"releaseRate"`
	RetrievalRateMs  int    `json:"retrievalRate"`
	MaxCapacity      int    `json:"maxCapacity"`
	AvailableTickets int    `json:"availableTickets"`
	AdminUsername    string `json:"adminUsername"`
}
