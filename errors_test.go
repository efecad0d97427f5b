package wink

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAPIError_Error(t *testing.T) {
	tests := []struct {
		name    string
		err     *APIError
		wantMsg string
	}{
		{
			name:    "with request ID",
			err:     &APIError{StatusCode: 500, Message: "boom", RequestID: "abc123"},
			wantMsg: "wink: API error 500: boom (request_id: abc123)",
		},
		{
			name:    "without request ID",
			err:     &APIError{StatusCode: 400, Message: "Bad request"},
			wantMsg: "wink: API error 400: Bad request",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMsg, tt.err.Error())
		})
	}
}

func TestAPIError_Is(t *testing.T) {
	unauthorized := fmt.Errorf("get hub: %w", &APIError{StatusCode: 401})
	missing := &APIError{StatusCode: 404}
	server := &APIError{StatusCode: 500}

	assert.True(t, IsUnauthorized(unauthorized))
	assert.False(t, IsNotFound(unauthorized))
	assert.True(t, IsNotFound(missing))
	assert.False(t, IsUnauthorized(server))
	assert.False(t, IsNotFound(server))
}

func TestAuthError(t *testing.T) {
	err := fmt.Errorf("login: %w", &AuthError{StatusCode: 401, Message: "invalid_grant"})

	assert.True(t, IsAuthError(err))
	assert.False(t, IsAuthError(errors.New("other")))
	assert.Contains(t, err.Error(), "HTTP 401: invalid_grant")
}

func TestTransportError(t *testing.T) {
	err := &TransportError{Op: "GET", URL: "https://x/hubs/1", Err: context.DeadlineExceeded}

	assert.True(t, IsTransportError(err))
	assert.True(t, IsTimeout(err), "deadline exceeded reports Timeout()")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, "wink: GET https://x/hubs/1: context deadline exceeded", err.Error())
}

func TestConfigError(t *testing.T) {
	withOwner := &ConfigError{Owner: "light_bulb", Kind: "dial", Reason: "is not a declared sub-device"}
	noOwner := &ConfigError{Kind: "toaster", Reason: "unknown device kind"}

	assert.Equal(t, "wink: light_bulb: dial is not a declared sub-device", withOwner.Error())
	assert.Equal(t, "wink: toaster: unknown device kind", noOwner.Error())
	assert.True(t, IsConfigError(fmt.Errorf("wrap: %w", withOwner)))
}

func TestStoreError(t *testing.T) {
	err := &StoreError{Op: "save", Location: "/tmp/creds.json", Err: errors.New("disk full")}

	assert.Equal(t, "wink: save credentials at /tmp/creds.json: disk full", err.Error())
	assert.EqualError(t, errors.Unwrap(err), "disk full")
}
