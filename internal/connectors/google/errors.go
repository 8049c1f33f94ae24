package google

import (
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"

	"github.com/custodia-labs/gtasks-cli/internal/core/domain"
)

// Common Google API errors.
var (
	// ErrForbidden indicates insufficient permissions.
	ErrForbidden = errors.New("google: forbidden (insufficient permissions)")

	// ErrNotFound indicates the requested resource was not found.
	ErrNotFound = errors.New("google: resource not found")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("google: rate limit exceeded")
)

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusNotFound
	}
	return false
}

// IsRateLimited returns true if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		if gerr.Code == http.StatusTooManyRequests {
			return true
		}
		for _, e := range gerr.Errors {
			if e.Reason == "rateLimitExceeded" || e.Reason == "userRateLimitExceeded" {
				return true
			}
		}
	}
	return false
}

// WrapError converts a Google API error to a more specific error type.
// Authorization failures map onto domain sentinels so the credential
// lifecycle can drive status transitions.
func WrapError(err error) error {
	if err == nil {
		return nil
	}

	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return err
	}

	switch gerr.Code {
	case http.StatusUnauthorized:
		return fmt.Errorf("google: %s: %w", gerr.Message, domain.ErrUnauthorised)
	case http.StatusForbidden:
		if IsRateLimited(gerr) {
			return ErrRateLimited
		}
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusTooManyRequests:
		return ErrRateLimited
	default:
		return err
	}
}

// classifyTokenError maps an oauth2 token-endpoint failure onto the domain
// sentinels the lifecycle manager understands. An invalid_grant response
// means the user withdrew consent (or the refresh token aged out); a 401
// means the client credentials themselves were rejected.
func classifyTokenError(err error) error {
	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) {
		if rerr.ErrorCode == "invalid_grant" {
			return fmt.Errorf("google: %s: %w", rerr.ErrorCode, domain.ErrGrantRevoked)
		}
		if rerr.Response != nil && rerr.Response.StatusCode == http.StatusUnauthorized {
			return fmt.Errorf("google: token endpoint: %w", domain.ErrUnauthorised)
		}
	}
	return err
}
