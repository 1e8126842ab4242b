package services

import (
	"context"
	"errors"

	"github.com/lorrc/ticketing-system/internal/core/domain"
	apperrors "github.com/lorrc/ticketing-system/internal/core/errors"
	"github.com/lorrc/ticketing-system/internal/core/ports"
)

// AccountService implements vendor and customer sign-up and sign-in
type AccountService struct {
	accountRepo ports.AccountRepository
}

var _ ports.AccountService = (*AccountService)(nil)

// NewAccountService creates a new account service
func NewAccountService(accountRepo ports.AccountRepository) *AccountService {
	return &AccountService{accountRepo: accountRepo}
}

// SignUp creates a new account with validated credentials
func (s *AccountService) SignUp(ctx context.Context, role domain.Role, id, password string) (*domain.Account, error) {
	params := domain.AccountParams{
		ID:       id,
		Role:     role,
		Password: password,
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	// Check if the ID is taken
	_, err := s.accountRepo.GetByID(ctx, role, id)
	if err == nil {
		return nil, apperrors.ErrAccountExists
	}
	if !errors.Is(err, apperrors.ErrAccountNotFound) {
		return nil, err // An actual DB error occurred
	}

	account, err := domain.NewAccount(params)
	if err != nil {
		return nil, err
	}

	return s.accountRepo.Create(ctx, account)
}

// SignIn authenticates an account by ID and password
func (s *AccountService) SignIn(ctx context.Context, role domain.Role, id, password string) (*domain.Account, error) {
	if id == "" || password == "" {
		return nil, apperrors.ErrInvalidCredentials
	}

	account, err := s.accountRepo.GetByID(ctx, role, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrAccountNotFound) {
			// Don't reveal whether the ID exists
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !account.CheckPassword(password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	return account, nil
}
