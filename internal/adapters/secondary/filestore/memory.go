package filestore

import (
	"context"
	"sync"

	"github.com/lorrc/ticketing-system/internal/core/domain"
	apperrors "github.com/lorrc/ticketing-system/internal/core/errors"
	"github.com/lorrc/ticketing-system/internal/core/ports"
)

type accountKey struct {
	role domain.Role
	id   string
}

// AccountStore keeps accounts in memory.
type AccountStore struct {
	mu       sync.RWMutex
	accounts map[accountKey]domain.Account
}

var _ ports.AccountRepository = (*AccountStore)(nil)

func NewAccountStore() *AccountStore {
	return &AccountStore{accounts: make(map[accountKey]domain.Account)}
}

func (s *AccountStore) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := accountKey{role: account.Role, id: account.ID}
	if _, ok := s.accounts[key]; ok {
		return nil, apperrors.ErrAccountExists
	}
	s.accounts[key] = *account

	created := *account
	return &created, nil
}

func (s *AccountStore) GetByID(ctx context.Context, role domain.Role, id string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[accountKey{role: role, id: id}]
	if !ok {
		return nil, apperrors.ErrAccountNotFound
	}
	return &account, nil
}

// ConfigurationStore keeps the configuration in memory.
type ConfigurationStore struct {
	mu  sync.RWMutex
	cfg *domain.Configuration
}

var _ ports.ConfigurationRepository = (*ConfigurationStore)(nil)

func NewConfigurationStore() *ConfigurationStore {
	return &ConfigurationStore{}
}

func (s *ConfigurationStore) Get(ctx context.Context) (*domain.Configuration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.cfg == nil {
		return nil, apperrors.ErrConfigurationNotFound
	}
	cfg := *s.cfg
	return &cfg, nil
}

func (s *ConfigurationStore) Save(ctx context.Context, cfg *domain.Configuration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *cfg
	s.cfg = &stored
	return nil
}
