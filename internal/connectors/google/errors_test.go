package google

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/api/googleapi"

	"github.com/custodia-labs/gtasks-cli/internal/core/domain"
)

func apiError(code int, reasons ...string) *googleapi.Error {
	gerr := &googleapi.Error{Code: code, Message: "boom"}
	for _, reason := range reasons {
		gerr.Errors = append(gerr.Errors, googleapi.ErrorItem{Reason: reason})
	}
	return gerr
}

func TestWrapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "nil", err: nil, want: nil},
		{name: "unauthorised", err: apiError(http.StatusUnauthorized), want: domain.ErrUnauthorised},
		{name: "forbidden", err: apiError(http.StatusForbidden), want: ErrForbidden},
		{name: "forbidden rate limit", err: apiError(http.StatusForbidden, "userRateLimitExceeded"), want: ErrRateLimited},
		{name: "not found", err: apiError(http.StatusNotFound), want: ErrNotFound},
		{name: "too many requests", err: apiError(http.StatusTooManyRequests), want: ErrRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WrapError(tt.err)
			if tt.want == nil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tt.want)
		})
	}
}

func TestWrapError_PassesThroughUnknown(t *testing.T) {
	plain := errors.New("connection reset")
	assert.Equal(t, plain, WrapError(plain))

	server := apiError(http.StatusInternalServerError)
	assert.Equal(t, error(server), WrapError(server))
}

func TestIsRateLimited(t *testing.T) {
	assert.True(t, IsRateLimited(apiError(http.StatusTooManyRequests)))
	assert.True(t, IsRateLimited(apiError(http.StatusForbidden, "rateLimitExceeded")))
	assert.False(t, IsRateLimited(apiError(http.StatusForbidden)))
	assert.False(t, IsRateLimited(errors.New("other")))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(apiError(http.StatusNotFound)))
	assert.True(t, IsNotFound(ErrNotFound))
	assert.False(t, IsNotFound(apiError(http.StatusForbidden)))
}
