package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/gtasks-cli/internal/core/domain"
	"github.com/custodia-labs/gtasks-cli/internal/core/ports/driven"
	"github.com/custodia-labs/gtasks-cli/internal/core/ports/driving"
	"github.com/custodia-labs/gtasks-cli/internal/logger"
)

// Ensure AccountsService implements the interface.
var _ driving.AccountService = (*AccountsService)(nil)

// AccountsService manages connected accounts and default-account resolution.
type AccountsService struct {
	store    driven.ConfigStore
	cipher   driven.TokenCipher
	provider driven.OAuthProvider
}

// NewAccountsService creates an account service.
func NewAccountsService(store driven.ConfigStore, cipher driven.TokenCipher, provider driven.OAuthProvider) *AccountsService {
	return &AccountsService{
		store:    store,
		cipher:   cipher,
		provider: provider,
	}
}

// List returns all accounts in insertion order.
func (s *AccountsService) List() ([]domain.Account, error) {
	return s.store.List()
}

// Get returns one account by email.
func (s *AccountsService) Get(email string) (*domain.Account, error) {
	return s.store.Get(email)
}

// Remove revokes the account's access token with the provider (best
// effort, an already-revoked grant is fine) and deletes the account. If it
// was the default, the store reassigns the default to the next remaining
// account in insertion order.
func (s *AccountsService) Remove(ctx context.Context, email string) (bool, error) {
	account, err := s.store.Get(email)
	if err != nil {
		return false, err
	}

	if access, derr := s.cipher.Decrypt(account.Tokens.AccessToken); derr == nil {
		if rerr := s.provider.Revoke(ctx, access); rerr != nil {
			logger.Warn("failed to revoke token for %s: %v", email, rerr)
		}
	} else {
		logger.Warn("cannot decrypt token for %s, skipping revocation: %v", email, derr)
	}

	return s.store.Remove(email)
}

// SetDefault marks an account as the default.
func (s *AccountsService) SetDefault(email string) error {
	return s.store.SetDefault(email)
}

// Default returns the default account, or nil if none is configured.
func (s *AccountsService) Default() (*domain.Account, error) {
	return s.store.GetDefault()
}

// Resolve picks the account an operation should use: explicit email if
// given, else the configured default, else the first account.
func (s *AccountsService) Resolve(explicit string) (*domain.Account, error) {
	if explicit != "" {
		return s.store.Get(explicit)
	}

	account, err := s.store.GetDefault()
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, fmt.Errorf("add an account with 'gtasks accounts add': %w", domain.ErrNoAccountsConfigured)
	}
	return account, nil
}
