package domain

import (
	"strings"
	"time"
)

// AccountStatus tracks the connection health of an account.
// Transitions are driven by provider interactions: a successful auth or
// refresh moves to active; a 401 moves to expired; a revoked grant moves
// to revoked; any other provider failure moves to error. Revoked is
// terminal for the refresh path - only a brand-new authorization (remove
// and re-add) recovers the account.
type AccountStatus string

const (
	// StatusUnknown is the zero value for records that predate status tracking.
	StatusUnknown AccountStatus = "unknown"
	// StatusActive indicates the last provider interaction succeeded.
	StatusActive AccountStatus = "active"
	// StatusExpired indicates the provider rejected the session as unauthorised.
	StatusExpired AccountStatus = "expired"
	// StatusRevoked indicates the provider reported the grant as revoked.
	StatusRevoked AccountStatus = "revoked"
	// StatusError indicates a transient provider failure (network, rate limit, 5xx).
	StatusError AccountStatus = "error"
)

// Valid returns true if the status is one of the known values.
func (s AccountStatus) Valid() bool {
	switch s {
	case StatusUnknown, StatusActive, StatusExpired, StatusRevoked, StatusError:
		return true
	}
	return false
}

// EncryptedBlob is an opaque, self-describing ciphertext produced by the
// token cipher from one plaintext string. The encoded layout is
// base64(nonce | authTag | ciphertext).
type EncryptedBlob string

// TokenBundle is one account's credential material as persisted. Both token
// fields are always stored encrypted; plaintext tokens exist only transiently
// in memory during an API call or a refresh exchange.
type TokenBundle struct {
	AccessToken  EncryptedBlob `json:"accessToken"`
	RefreshToken EncryptedBlob `json:"refreshToken"`
	// ExpiresAt is the access token expiry as Unix epoch milliseconds.
	ExpiresAt int64  `json:"expiresAt"`
	Scope     string `json:"scope,omitempty"`
}

// Expiry returns the access token expiry as a time.Time.
// Returns the zero time if no expiry is recorded.
func (t TokenBundle) Expiry() time.Time {
	if t.ExpiresAt == 0 {
		return time.Time{}
	}
	return time.UnixMilli(t.ExpiresAt)
}

// NeedsRefresh reports whether the bundle should be refreshed before use.
// A bundle with no recorded expiry always needs a refresh. The buffer keeps
// a token from being handed out when it could expire mid-flight during the
// caller's own network round trip.
func (t TokenBundle) NeedsRefresh(now time.Time, buffer time.Duration) bool {
	expiry := t.Expiry()
	if expiry.IsZero() {
		return true
	}
	return !now.Before(expiry.Add(-buffer))
}

// Credential is a decrypted, in-memory token set. It is what the lifecycle
// manager hands to API callers and what the OAuth provider returns from an
// exchange or refresh. Never persisted.
type Credential struct {
	AccessToken  string
	RefreshToken string
	Expiry       time.Time
	Scope        string
}

// Identity is the provider's view of who authorized.
type Identity struct {
	Email string
	Name  string
}

// Account is one connected Google account. Email is the unique identity key,
// compared case-insensitively.
type Account struct {
	Email       string        `json:"email"`
	DisplayName string        `json:"displayName,omitempty"`
	Tokens      TokenBundle   `json:"tokens"`
	AddedAt     time.Time     `json:"addedAt"`
	LastUsed    time.Time     `json:"lastUsed"`
	Status      AccountStatus `json:"status"`
}

// EmailEquals compares an email against the account's identity key,
// case-insensitively.
func (a Account) EmailEquals(email string) bool {
	return strings.EqualFold(a.Email, email)
}

// NormalizeEmail canonicalizes an email for use as an identity key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
