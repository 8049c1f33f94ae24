package driving

import (
	"context"

	"github.com/custodia-labs/gtasks-cli/internal/core/domain"
)

// AccountService manages the set of connected accounts and default-account
// resolution.
type AccountService interface {
	// List returns all accounts in insertion order.
	List() ([]domain.Account, error)

	// Get returns one account by email.
	Get(email string) (*domain.Account, error)

	// Remove revokes the account's tokens with the provider (best effort)
	// and deletes it from the store. Returns true if an account was removed.
	Remove(ctx context.Context, email string) (bool, error)

	// SetDefault marks an account as the default.
	SetDefault(email string) error

	// Default returns the default account, or nil if none is configured.
	Default() (*domain.Account, error)

	// Resolve picks the account an operation should use: the explicit email
	// if non-empty, else the default, else the first account. Returns
	// domain.ErrNoAccountsConfigured if nothing can be resolved.
	Resolve(explicit string) (*domain.Account, error)
}
