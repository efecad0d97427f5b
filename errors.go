package wink

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors returned by the Wink client.
var (
	// Credential errors
	ErrMissingCredential   = errors.New("wink: required credential field is missing")
	ErrCredentialsNotFound = errors.New("wink: no stored credentials")

	// Resource errors, matched against APIError status codes by errors.Is
	ErrUnauthorized = errors.New("wink: unauthorized (invalid or expired token)")
	ErrNotFound     = errors.New("wink: resource not found")

	// Model errors
	ErrEmptyID = errors.New("wink: document has no identifier")
)

// AuthError is returned when the token endpoint rejects an exchange.
type AuthError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	return fmt.Sprintf("wink: authentication failed with HTTP %d: %s", e.StatusCode, e.Message)
}

// APIError represents a non-2xx response from a resource endpoint.
type APIError struct {
	StatusCode int
	Message    string
	RequestID  string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("wink: API error %d: %s (request_id: %s)", e.StatusCode, e.Message, e.RequestID)
	}
	return fmt.Sprintf("wink: API error %d: %s", e.StatusCode, e.Message)
}

// Is lets errors.Is(err, ErrUnauthorized) and errors.Is(err, ErrNotFound)
// match on the status code.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

// TransportError wraps a network-level failure (DNS, refused connection,
// timeout, unreadable body). It is never retried by the client.
type TransportError struct {
	Op  string
	URL string
	Err error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("wink: %s %s: %v", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ConfigError reports a reference to a device kind, sub-device kind or
// resource kind that the catalog does not declare for the given owner.
type ConfigError struct {
	Owner  string
	Kind   string
	Reason string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Owner == "" {
		return fmt.Sprintf("wink: %s: %s", e.Kind, e.Reason)
	}
	return fmt.Sprintf("wink: %s: %s %s", e.Owner, e.Kind, e.Reason)
}

// StoreError indicates a credential persistence failure.
type StoreError struct {
	Op       string // "load", "save", "delete"
	Location string
	Err      error
}

func (e *StoreError) Error() string {
	msg := "wink: " + e.Op + " credentials"
	if e.Location != "" {
		msg += " at " + e.Location
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// IsAuthError returns true if the error came from the token endpoint.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// IsTransportError returns true if the error is a network-level failure.
func IsTransportError(err error) bool {
	var tErr *TransportError
	return errors.As(err, &tErr)
}

// IsConfigError returns true if the error is a catalog lookup failure.
func IsConfigError(err error) bool {
	var cfgErr *ConfigError
	return errors.As(err, &cfgErr)
}

// IsUnauthorized returns true if the error indicates an authentication failure.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsNotFound returns true if the error indicates the resource was not found.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsTimeout returns true if the error indicates a timeout.
func IsTimeout(err error) bool {
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}
