package driving

import (
	"context"

	"github.com/custodia-labs/gtasks-cli/internal/core/domain"
)

// CredentialService is the credential lifecycle manager: it decides whether
// a stored credential is usable, refreshes it through the provider when
// needed, and tracks connection status as a side effect of every provider
// interaction.
type CredentialService interface {
	// GetValidCredential returns a plaintext credential guaranteed not to
	// expire within the refresh buffer, refreshing through the provider if
	// necessary. Calls for the same account are serialized.
	//
	// Error kinds: domain.ErrAccountNotFound, domain.ErrAccessRevoked
	// (terminal, re-authorize), domain.ErrCredentialExpired (re-authorize),
	// domain.ErrProviderError (retryable), domain.ErrDecryptionFailed.
	GetValidCredential(ctx context.Context, email string) (*domain.Credential, error)

	// StoreNewCredential encrypts and persists a token pair obtained from
	// a successful authorization-code exchange, creating the account if
	// absent. Always sets status to active.
	StoreNewCredential(ctx context.Context, email, displayName string, tokens domain.Credential) error

	// TestConnectivity performs a trivial authenticated call and maps the
	// outcome into the same status transitions as refresh.
	TestConnectivity(ctx context.Context, email string) error
}
