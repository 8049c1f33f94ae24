package driven

import "github.com/custodia-labs/gtasks-cli/internal/core/domain"

// ConfigStore is the durable account and settings store. There is no
// in-memory cache across calls: every operation reloads from storage, so
// the file is the single source of truth. Every mutating call performs
// load -> mutate -> atomic replace; a crash mid-write never leaves the
// store unparsable.
type ConfigStore interface {
	// Exists reports whether the config file has been created.
	Exists() bool

	// Load reads the full configuration.
	// Returns domain.ErrConfigNotFound if the file does not exist.
	Load() (*domain.Config, error)

	// OAuthClient returns the configured OAuth application credentials.
	OAuthClient() (*domain.OAuthClient, error)

	// SetOAuthClient stores OAuth application credentials, creating the
	// config file if needed.
	SetOAuthClient(client domain.OAuthClient) error

	// Get returns the account with the given email (case-insensitive).
	// Returns domain.ErrAccountNotFound if absent.
	Get(email string) (*domain.Account, error)

	// List returns all accounts in insertion order.
	List() ([]domain.Account, error)

	// Upsert merges the account into an existing record with the same
	// email, or appends it with AddedAt set to now if new.
	Upsert(account domain.Account) error

	// Remove deletes the account, reassigning the default to the next
	// remaining account in insertion order (or clearing it) if the removed
	// account was the default. Returns true if an account was removed.
	Remove(email string) (bool, error)

	// SetDefault marks an account as the default.
	// Returns domain.ErrAccountNotFound if the email is absent.
	SetDefault(email string) error

	// GetDefault returns the explicit default if set and still present,
	// else the first account in insertion order, else nil.
	GetDefault() (*domain.Account, error)

	// Settings returns the user settings.
	Settings() (*domain.Settings, error)

	// Path returns the config file path, for diagnostics.
	Path() string
}
