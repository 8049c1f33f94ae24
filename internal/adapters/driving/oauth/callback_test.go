package oauth

import (
	"fmt"
	"net"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/gtasks-cli/internal/core/domain"
)

func startServer(t *testing.T, state string) *CallbackServer {
	t.Helper()
	s := NewCallbackServer(0, state)
	require.NoError(t, s.Start())
	t.Cleanup(func() { _ = s.Stop() })
	return s
}

func callbackURL(s *CallbackServer, params url.Values) string {
	return fmt.Sprintf("http://127.0.0.1:%d%s?%s", s.Port(), CallbackPath, params.Encode())
}

func TestCallbackServer_ReceivesCode(t *testing.T) {
	s := startServer(t, "expected-state")

	resp, err := http.Get(callbackURL(s, url.Values{
		"state": {"expected-state"},
		"code":  {"auth-code-123"},
	}))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	code, err := s.WaitForCode(time.Second)
	require.NoError(t, err)
	assert.Equal(t, "auth-code-123", code)
}

func TestCallbackServer_StateMismatch(t *testing.T) {
	s := startServer(t, "expected-state")

	resp, err := http.Get(callbackURL(s, url.Values{
		"state": {"forged-state"},
		"code":  {"auth-code-123"},
	}))
	require.NoError(t, err)
	resp.Body.Close()

	_, err = s.WaitForCode(time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "state mismatch")
}

func TestCallbackServer_ProviderError(t *testing.T) {
	s := startServer(t, "expected-state")

	resp, err := http.Get(callbackURL(s, url.Values{
		"error":             {"access_denied"},
		"error_description": {"The user denied the request."},
	}))
	require.NoError(t, err)
	resp.Body.Close()

	_, err = s.WaitForCode(time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access_denied")
}

func TestCallbackServer_MissingCode(t *testing.T) {
	s := startServer(t, "expected-state")

	resp, err := http.Get(callbackURL(s, url.Values{
		"state": {"expected-state"},
	}))
	require.NoError(t, err)
	resp.Body.Close()

	_, err = s.WaitForCode(time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no authorization code")
}

func TestCallbackServer_Timeout(t *testing.T) {
	s := startServer(t, "expected-state")

	_, err := s.WaitForCode(50 * time.Millisecond)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTimeout)
}

func TestCallbackServer_RedirectURI(t *testing.T) {
	s := startServer(t, "state")
	assert.Equal(t, fmt.Sprintf("http://localhost:%d/oauth/callback", s.Port()), s.RedirectURI())
}

func TestGenerateState_Unique(t *testing.T) {
	assert.NotEqual(t, GenerateState(), GenerateState())
	assert.NotEmpty(t, GenerateState())
}

func TestFindAvailablePort_SkipsBusyPort(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	busy := ln.Addr().(*net.TCPAddr).Port

	port, err := FindAvailablePort(busy, busy+10)
	require.NoError(t, err)
	assert.Greater(t, port, busy)
	assert.LessOrEqual(t, port, busy+10)
}

func TestFindAvailablePort_NoneFree(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	busy := ln.Addr().(*net.TCPAddr).Port

	_, err = FindAvailablePort(busy, busy)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no available port")
}
