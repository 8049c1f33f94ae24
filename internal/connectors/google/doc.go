// Package google implements the provider-facing side of the CLI: the OAuth
// authorization and refresh protocol, and the Google Tasks API client.
//
// The package contains:
//   - Provider: OAuth code exchange, token refresh, revocation, and the
//     userinfo identity lookup
//   - TasksAPI: the per-account Tasks resource client
//   - TokenSource adapter bridging the credential lifecycle manager to
//     oauth2.TokenSource
//   - Error classification for Google API failures (401, 403, 404, 429)
//   - Rate limiting to respect Google API quotas
//
// # OAuth2 Scopes
//
// The CLI requests these scopes:
//   - https://www.googleapis.com/auth/tasks
//   - https://www.googleapis.com/auth/userinfo.email (non-sensitive)
package google
