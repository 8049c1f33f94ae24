package google

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	googleauth "golang.org/x/oauth2/google"

	"github.com/custodia-labs/gtasks-cli/internal/core/domain"
	"github.com/custodia-labs/gtasks-cli/internal/core/ports/driven"
	"github.com/custodia-labs/gtasks-cli/internal/logger"
)

// Ensure Provider implements the interface.
var _ driven.OAuthProvider = (*Provider)(nil)

// Scopes requested for every account authorization.
var Scopes = []string{
	"https://www.googleapis.com/auth/tasks",
	"https://www.googleapis.com/auth/userinfo.email",
}

const (
	userInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
	revokeURL   = "https://oauth2.googleapis.com/revoke"
)

// Provider implements the OAuth protocol against Google: authorization URL
// construction, code exchange, token refresh, and revocation.
type Provider struct {
	client domain.OAuthClient

	// endpoint and overrides exist so tests can point the provider at a
	// local HTTP server.
	endpoint    oauth2.Endpoint
	userInfoURL string
	revokeURL   string
	httpClient  *http.Client
}

// Option configures a Provider.
type Option func(*Provider)

// WithEndpoint overrides the OAuth endpoint. Used in tests.
func WithEndpoint(e oauth2.Endpoint) Option {
	return func(p *Provider) { p.endpoint = e }
}

// WithUserInfoURL overrides the userinfo endpoint. Used in tests.
func WithUserInfoURL(u string) Option {
	return func(p *Provider) { p.userInfoURL = u }
}

// WithRevokeURL overrides the revocation endpoint. Used in tests.
func WithRevokeURL(u string) Option {
	return func(p *Provider) { p.revokeURL = u }
}

// WithHTTPClient overrides the HTTP client used for userinfo and revocation.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) { p.httpClient = c }
}

// NewProvider creates a Provider for the given OAuth application credentials.
func NewProvider(client domain.OAuthClient, opts ...Option) *Provider {
	p := &Provider{
		client:      client,
		endpoint:    googleauth.Endpoint,
		userInfoURL: userInfoURL,
		revokeURL:   revokeURL,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// config builds the oauth2 config for a given redirect URI.
func (p *Provider) config(redirectURI string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     p.client.ClientID,
		ClientSecret: p.client.ClientSecret,
		Endpoint:     p.endpoint,
		RedirectURL:  redirectURI,
		Scopes:       Scopes,
	}
}

// AuthCodeURL returns the URL the user visits to authorize access.
// Offline access and the consent prompt are forced so Google issues a
// refresh token even for accounts that authorized before.
func (p *Provider) AuthCodeURL(state, redirectURI string) string {
	return p.config(redirectURI).AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
}

// Exchange trades a one-time authorization code for a token pair.
func (p *Provider) Exchange(ctx context.Context, code, redirectURI string) (*domain.Credential, error) {
	token, err := p.config(redirectURI).Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", classifyTokenError(err))
	}
	return credentialFromToken(token), nil
}

// Refresh obtains a new access token using the refresh token.
func (p *Provider) Refresh(ctx context.Context, refreshToken string) (*domain.Credential, error) {
	src := p.config("").TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	token, err := src.Token()
	if err != nil {
		return nil, classifyTokenError(err)
	}

	cred := credentialFromToken(token)
	// oauth2 echoes the old refresh token back; only report a rotation
	// when Google actually issued a new one.
	if cred.RefreshToken == refreshToken {
		cred.RefreshToken = ""
	}
	return cred, nil
}

// Revoke invalidates the token with Google. A token that is already invalid
// is not an error: revocation is about reaching the terminal state, and
// "already there" counts.
func (p *Provider) Revoke(ctx context.Context, accessToken string) error {
	data := url.Values{}
	data.Set("token", accessToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.revokeURL, strings.NewReader(data.Encode()))
	if err != nil {
		return fmt.Errorf("create revoke request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusBadRequest:
		// Google returns 400 invalid_token for tokens it no longer knows.
		logger.Debug("revocation returned 400, token already invalid")
		return nil
	default:
		return fmt.Errorf("revoke token: status %d", resp.StatusCode)
	}
}

// UserInfo is the Google userinfo response.
type UserInfo struct {
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// FetchIdentity returns the email and display name of the authorizing user.
// The email serves as the account identity key.
func (p *Provider) FetchIdentity(ctx context.Context, accessToken string) (*domain.Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create userinfo request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, fmt.Errorf("userinfo: %w", domain.ErrUnauthorised)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo request failed with status %d", resp.StatusCode)
	}

	var info UserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w", err)
	}
	if info.Email == "" {
		return nil, fmt.Errorf("userinfo response missing email")
	}

	return &domain.Identity{
		Email: domain.NormalizeEmail(info.Email),
		Name:  info.Name,
	}, nil
}

// credentialFromToken converts an oauth2 token into a domain credential.
func credentialFromToken(token *oauth2.Token) *domain.Credential {
	scope, _ := token.Extra("scope").(string)
	return &domain.Credential{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		Expiry:       token.Expiry,
		Scope:        scope,
	}
}
