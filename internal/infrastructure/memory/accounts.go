// Package memory is the reference in-process AccountRepository: a
// mutex-guarded map of deep copies. It backs tests and embedded use; any
// engine satisfying the same contract can replace it.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-membership/internal/domain"
)

// AccountStore keeps accounts keyed by id. Reads and writes exchange clones,
// so a caller never mutates stored state without going through Update.
type AccountStore struct {
	mu       sync.RWMutex
	accounts map[string]*domain.UserAccount
}

func NewAccountStore() *AccountStore {
	return &AccountStore{accounts: make(map[string]*domain.UserAccount)}
}

func (s *AccountStore) Create() *domain.UserAccount {
	return &domain.UserAccount{}
}

func (s *AccountStore) Add(_ context.Context, a *domain.UserAccount) error {
	if a.ID == "" {
		return fmt.Errorf("account has no id: %w", domain.ErrArgument)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[a.ID]; ok {
		return fmt.Errorf("account %s already exists: %w", a.ID, domain.ErrArgument)
	}
	s.accounts[a.ID] = a.Clone()
	return nil
}

func (s *AccountStore) Update(_ context.Context, a *domain.UserAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[a.ID]; !ok {
		return fmt.Errorf("account %s: %w", a.ID, domain.ErrNotFound)
	}
	s.accounts[a.ID] = a.Clone()
	return nil
}

func (s *AccountStore) Remove(_ context.Context, a *domain.UserAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[a.ID]; !ok {
		return fmt.Errorf("account %s: %w", a.ID, domain.ErrNotFound)
	}
	delete(s.accounts, a.ID)
	return nil
}

func (s *AccountStore) GetByID(_ context.Context, id string) (*domain.UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[id]
	if !ok {
		return nil, fmt.Errorf("account %s: %w", id, domain.ErrNotFound)
	}
	return a.Clone(), nil
}

func (s *AccountStore) find(match func(*domain.UserAccount) bool) (*domain.UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.accounts {
		if match(a) {
			return a.Clone(), nil
		}
	}
	return nil, fmt.Errorf("account: %w", domain.ErrNotFound)
}

func (s *AccountStore) GetByUsername(_ context.Context, tenant, username string) (*domain.UserAccount, error) {
	return s.find(func(a *domain.UserAccount) bool {
		return a.Tenant == tenant && a.Username == username
	})
}

func (s *AccountStore) GetByUsernameAny(_ context.Context, username string) (*domain.UserAccount, error) {
	return s.find(func(a *domain.UserAccount) bool {
		return a.Username == username
	})
}

func (s *AccountStore) GetByEmail(_ context.Context, tenant, email string) (*domain.UserAccount, error) {
	return s.find(func(a *domain.UserAccount) bool {
		return a.Tenant == tenant && a.Email == email
	})
}

func (s *AccountStore) GetByVerificationKey(_ context.Context, hashedKey string) (*domain.UserAccount, error) {
	return s.find(func(a *domain.UserAccount) bool {
		return a.VerificationKey != "" && a.VerificationKey == hashedKey
	})
}

func (s *AccountStore) GetByLinkedAccount(_ context.Context, tenant, provider, providerAccountID string) (*domain.UserAccount, error) {
	return s.find(func(a *domain.UserAccount) bool {
		if a.Tenant != tenant {
			return false
		}
		return a.GetLinkedAccount(provider, providerAccountID) != nil
	})
}

func (s *AccountStore) GetByCertificate(_ context.Context, tenant, thumbprint string) (*domain.UserAccount, error) {
	return s.find(func(a *domain.UserAccount) bool {
		return a.Tenant == tenant && a.HasCertificate(thumbprint)
	})
}

func (s *AccountStore) GetByMobilePhone(_ context.Context, tenant, phone string) (*domain.UserAccount, error) {
	return s.find(func(a *domain.UserAccount) bool {
		return a.Tenant == tenant && a.MobilePhoneNumber == phone
	})
}
