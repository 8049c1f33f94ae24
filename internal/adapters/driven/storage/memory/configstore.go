// Package memory provides in-memory store implementations for testing.
package memory

import (
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/gtasks-cli/internal/core/domain"
	"github.com/custodia-labs/gtasks-cli/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore is an in-memory implementation of driven.ConfigStore.
// It mirrors the file store's semantics (insertion order, case-insensitive
// emails, default reassignment on removal) without touching disk.
type ConfigStore struct {
	mu      sync.RWMutex
	created bool
	config  domain.Config

	// UpsertErr, when set, is returned by Upsert. Lets tests simulate
	// storage write failures.
	UpsertErr error
}

// NewConfigStore creates an empty in-memory store.
func NewConfigStore() *ConfigStore {
	return &ConfigStore{}
}

// Exists reports whether any write has happened.
func (s *ConfigStore) Exists() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.created
}

// Load returns a copy of the full configuration.
func (s *ConfigStore) Load() (*domain.Config, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.created {
		return nil, domain.ErrConfigNotFound
	}
	cfg := s.config
	cfg.Accounts = append([]domain.Account(nil), s.config.Accounts...)
	return &cfg, nil
}

// OAuthClient returns the configured OAuth application credentials.
func (s *ConfigStore) OAuthClient() (*domain.OAuthClient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.created {
		return nil, domain.ErrConfigNotFound
	}
	client := s.config.OAuth
	return &client, nil
}

// SetOAuthClient stores OAuth application credentials.
func (s *ConfigStore) SetOAuthClient(client domain.OAuthClient) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.config.OAuth = client
	s.created = true
	return nil
}

// Get returns the account with the given email.
func (s *ConfigStore) Get(email string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.config.FindAccount(email); i >= 0 {
		account := s.config.Accounts[i]
		return &account, nil
	}
	return nil, fmt.Errorf("%s: %w", email, domain.ErrAccountNotFound)
}

// List returns all accounts in insertion order.
func (s *ConfigStore) List() ([]domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Account(nil), s.config.Accounts...), nil
}

// Upsert merges or appends an account.
func (s *ConfigStore) Upsert(account domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.UpsertErr != nil {
		return s.UpsertErr
	}

	if i := s.config.FindAccount(account.Email); i >= 0 {
		existing := &s.config.Accounts[i]
		if account.DisplayName != "" {
			existing.DisplayName = account.DisplayName
		}
		existing.Tokens = account.Tokens
		existing.Status = account.Status
		existing.LastUsed = account.LastUsed
	} else {
		if account.AddedAt.IsZero() {
			account.AddedAt = time.Now()
		}
		s.config.Accounts = append(s.config.Accounts, account)
	}
	s.created = true
	return nil
}

// Remove deletes an account, reassigning the default if needed.
func (s *ConfigStore) Remove(email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.config.FindAccount(email)
	if i < 0 {
		return false, nil
	}

	wasDefault := s.config.Settings.DefaultAccount != "" &&
		domain.NormalizeEmail(s.config.Settings.DefaultAccount) == domain.NormalizeEmail(email)

	s.config.Accounts = append(s.config.Accounts[:i], s.config.Accounts[i+1:]...)

	if wasDefault {
		if len(s.config.Accounts) > 0 {
			s.config.Settings.DefaultAccount = s.config.Accounts[0].Email
		} else {
			s.config.Settings.DefaultAccount = ""
		}
	}
	return true, nil
}

// SetDefault marks an account as the default.
func (s *ConfigStore) SetDefault(email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.config.FindAccount(email) < 0 {
		return fmt.Errorf("%s: %w", email, domain.ErrAccountNotFound)
	}
	s.config.Settings.DefaultAccount = email
	return nil
}

// GetDefault returns the explicit default if present, else the first
// account, else nil.
func (s *ConfigStore) GetDefault() (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.config.Settings.DefaultAccount != "" {
		if i := s.config.FindAccount(s.config.Settings.DefaultAccount); i >= 0 {
			account := s.config.Accounts[i]
			return &account, nil
		}
	}
	if len(s.config.Accounts) > 0 {
		account := s.config.Accounts[0]
		return &account, nil
	}
	return nil, nil
}

// Settings returns the user settings.
func (s *ConfigStore) Settings() (*domain.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	settings := s.config.Settings
	return &settings, nil
}

// Path identifies the store for diagnostics.
func (s *ConfigStore) Path() string {
	return "memory"
}
