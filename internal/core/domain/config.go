package domain

// OAuthClient holds the OAuth 2.0 application credentials used for all
// account authorizations. One client serves every connected account.
type OAuthClient struct {
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
	RedirectURI  string `json:"redirectUri,omitempty"`
}

// DefaultRedirectURI is used when the OAuth client has no explicit redirect.
const DefaultRedirectURI = "http://localhost:3000/oauth/callback"

// Configured returns true if the client credentials are usable.
func (c OAuthClient) Configured() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// Redirect returns the configured redirect URI, falling back to the default.
func (c OAuthClient) Redirect() string {
	if c.RedirectURI != "" {
		return c.RedirectURI
	}
	return DefaultRedirectURI
}

// Settings holds user preferences.
type Settings struct {
	// DefaultAccount is the email of the account used when a command does
	// not name one. Empty means "first account in insertion order".
	DefaultAccount string `json:"defaultAccount,omitempty"`
	// OutputFormat is the default output format (table, json, minimal).
	OutputFormat string `json:"outputFormat,omitempty"`
}

// Config is the process-wide durable aggregate. Exactly one instance exists
// on disk; it is loaded per operation and persisted atomically after every
// mutation, so the file is always the single source of truth.
type Config struct {
	OAuth    OAuthClient `json:"oauth"`
	Accounts []Account   `json:"accounts"`
	Settings Settings    `json:"settings"`
}

// FindAccount returns the index of the account with the given email,
// or -1 if absent. Comparison is case-insensitive.
func (c *Config) FindAccount(email string) int {
	for i := range c.Accounts {
		if c.Accounts[i].EmailEquals(email) {
			return i
		}
	}
	return -1
}
