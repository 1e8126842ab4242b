package domain

import (
	"regexp"
	"time"

	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/lorrc/ticketing-system/internal/core/errors"
)

// Password validation constants
const (
	MinPasswordLength = 8
	MaxPasswordLength = 12
)

var accountIDPattern = regexp.MustCompile(`^[a-zA-Z]{4}\d{3}$`)

// MaxSimulationSize is the highest simulated actor number that still fits the
// three digit account ID.
const MaxSimulationSize = 999

// Role identifies which side of the marketplace an account acts on.
type Role string

const (
	RoleVendor   Role = "vendor"
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

func (r Role) IsValid() bool {
	return r == RoleVendor || r == RoleCustomer || r == RoleAdmin
}

// Account is a signed-up vendor or customer.
type Account struct {
	ID             string
	Role           Role
	HashedPassword string
	CreatedAt      time.Time
}

// AccountParams holds parameters for account sign-up
type AccountParams struct {
	ID       string
	Role     Role
	Password string
}

// Validate validates sign-up parameters
func (p AccountParams) Validate() error {
	errs := apperrors.NewValidationErrors()

	if !IsValidAccountID(p.ID) {
		errs.Add("id", apperrors.ErrInvalidAccountID.Error())
	}
	if p.Role != RoleVendor && p.Role != RoleCustomer {
		errs.Add("role", "Role must be vendor or customer")
	}
	if !IsValidPassword(p.Password) {
		errs.Add("password", apperrors.ErrPasswordLength.Error())
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}

// IsValidAccountID checks the four letters plus three digits format, e.g. VEND001.
func IsValidAccountID(id string) bool {
	return accountIDPattern.MatchString(id)
}

// IsValidPassword checks the password length bounds.
func IsValidPassword(password string) bool {
	return len(password) >= MinPasswordLength && len(password) <= MaxPasswordLength
}

// NewAccount creates a new account with validated parameters
func NewAccount(params AccountParams) (*Account, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	hashedPassword, err := HashPassword(params.Password)
	if err != nil {
		return nil, err
	}

	return &Account{
		ID:             params.ID,
		Role:           params.Role,
		HashedPassword: hashedPassword,
		CreatedAt:      time.Now().UTC(),
	}, nil
}

// CheckPassword verifies if the provided password matches the stored hash
func (a *Account) CheckPassword(password string) bool {
	return CheckPasswordHash(a.HashedPassword, password)
}

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// CheckPasswordHash compares a bcrypt hash with a plain password.
func CheckPasswordHash(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
