package driven

import (
	"context"

	"github.com/custodia-labs/gtasks-cli/internal/core/domain"
)

// OAuthProvider is the abstract identity-provider capability: everything
// the credential lifecycle needs from the external OAuth service.
//
// Implementations classify provider failures by wrapping the domain
// sentinels so the lifecycle manager can drive status transitions:
//   - domain.ErrGrantRevoked: the grant is invalid or revoked (terminal)
//   - domain.ErrUnauthorised: no valid session at all (HTTP 401)
//   - anything else: transient provider failure
type OAuthProvider interface {
	// AuthCodeURL returns the URL the user visits to authorize access.
	AuthCodeURL(state, redirectURI string) string

	// Exchange trades a one-time authorization code for a token pair.
	Exchange(ctx context.Context, code, redirectURI string) (*domain.Credential, error)

	// Refresh obtains a new access token using the refresh token.
	// Providers may rotate the refresh token; when they do, the returned
	// credential carries the new one.
	Refresh(ctx context.Context, refreshToken string) (*domain.Credential, error)

	// Revoke invalidates the token with the provider. An already-revoked
	// token is not an error.
	Revoke(ctx context.Context, accessToken string) error

	// FetchIdentity returns the email and display name of the authorizing
	// user, via the provider's userinfo endpoint.
	FetchIdentity(ctx context.Context, accessToken string) (*domain.Identity, error)
}

// ResourceAPI is the minimal resource-side capability the lifecycle needs:
// a trivial authenticated call for connectivity testing. Implementations
// classify failures the same way as OAuthProvider.
type ResourceAPI interface {
	// Ping performs a cheap authenticated call with the given access token.
	Ping(ctx context.Context, accessToken string) error
}
