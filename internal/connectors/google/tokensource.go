package google

import (
	"context"

	"golang.org/x/oauth2"

	"github.com/custodia-labs/gtasks-cli/internal/core/ports/driving"
)

// TokenSourceAdapter adapts the credential lifecycle manager to
// oauth2.TokenSource for one account. Every Token call goes through
// GetValidCredential, so the Google API client always holds a token that
// will not expire mid-flight.
type TokenSourceAdapter struct {
	creds driving.CredentialService
	email string
	ctx   context.Context
}

// NewTokenSource creates an oauth2.TokenSource backed by the credential
// lifecycle manager. The returned TokenSource can be used with
// option.WithTokenSource() when creating Google API services.
func NewTokenSource(ctx context.Context, creds driving.CredentialService, email string) oauth2.TokenSource {
	return &TokenSourceAdapter{
		creds: creds,
		email: email,
		ctx:   ctx,
	}
}

// Token implements oauth2.TokenSource.
// Called by Google API clients when they need an access token.
func (t *TokenSourceAdapter) Token() (*oauth2.Token, error) {
	cred, err := t.creds.GetValidCredential(t.ctx, t.email)
	if err != nil {
		return nil, err
	}

	return &oauth2.Token{
		AccessToken: cred.AccessToken,
		TokenType:   "Bearer",
		Expiry:      cred.Expiry,
	}, nil
}
