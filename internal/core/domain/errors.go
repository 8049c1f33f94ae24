package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrConfigNotFound indicates the config file does not exist yet.
	ErrConfigNotFound = errors.New("config not found")

	// ErrOAuthNotConfigured indicates OAuth client credentials are missing.
	ErrOAuthNotConfigured = errors.New("oauth client not configured")

	// ErrAccountNotFound indicates a requested account does not exist.
	ErrAccountNotFound = errors.New("account not found")

	// ErrNoAccountsConfigured indicates no account exists to resolve to.
	ErrNoAccountsConfigured = errors.New("no accounts configured")

	// ErrDecryptionFailed indicates the authentication tag did not verify:
	// either the key is wrong or the blob was tampered with or corrupted.
	// The credential is unusable; this is not a retryable transient error.
	ErrDecryptionFailed = errors.New("decryption failed")

	// ErrStorageWrite indicates the durable store could not be written.
	// The previous valid state remains authoritative.
	ErrStorageWrite = errors.New("storage write failed")

	// ErrTimeout indicates a provider-facing operation exceeded its deadline.
	ErrTimeout = errors.New("operation timed out")

	// Credential lifecycle errors.

	// ErrAccessRevoked indicates the provider reported the grant as invalid
	// or revoked. Terminal: the account must be removed and re-added.
	ErrAccessRevoked = errors.New("access revoked")

	// ErrCredentialExpired indicates the provider rejected the session as
	// unauthorised. Recovery requires a fresh authorization.
	ErrCredentialExpired = errors.New("credential expired")

	// ErrProviderError indicates a transient provider failure (network,
	// rate limit, server fault). The only error class eligible for
	// caller-side retry with backoff.
	ErrProviderError = errors.New("provider error")

	// Provider-level classifications, wrapped by connector implementations
	// so the lifecycle manager can map them onto status transitions.

	// ErrGrantRevoked is returned by a provider when the refresh grant has
	// been invalidated (e.g. the user withdrew consent).
	ErrGrantRevoked = errors.New("grant revoked")

	// ErrUnauthorised is returned by a provider when no valid session
	// exists at all (HTTP 401).
	ErrUnauthorised = errors.New("unauthorised")
)
