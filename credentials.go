package wink

import (
	"fmt"
	"time"
)

// Well-known credential fields.
const (
	FieldClientID     = "client_id"
	FieldClientSecret = "client_secret"
	FieldBaseURL      = "base_url"
	FieldUsername     = "username"
	FieldUserID       = "user_id"
	FieldPassword     = "password"
	FieldAccessToken  = "access_token"
	FieldRefreshToken = "refresh_token"
	FieldExpires      = "expires"
)

// ExpiresLayout is the persisted form of the expires field. Values carry
// no zone suffix and are always UTC.
const ExpiresLayout = "2006-01-02 15:04:05"

// Credentials is a flat, string-keyed credential set. It is also the
// persisted format: stores write and read it verbatim.
//
// The Auth Engine never mutates a Credentials value it is given; every
// successful exchange returns a new snapshot.
type Credentials map[string]string

// FormatExpires renders t in the persisted expires layout (UTC).
func FormatExpires(t time.Time) string {
	return t.UTC().Format(ExpiresLayout)
}

// ParseExpires parses a persisted expires value as UTC.
func ParseExpires(s string) (time.Time, error) {
	return time.ParseInLocation(ExpiresLayout, s, time.UTC)
}

// Clone returns an independent copy.
func (c Credentials) Clone() Credentials {
	if c == nil {
		return nil
	}
	out := make(Credentials, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Get returns the value of field and whether it is present and non-empty.
func (c Credentials) Get(field string) (string, bool) {
	v, ok := c[field]
	return v, ok && v != ""
}

// Expires returns the parsed expiry time. It reports false when the field
// is missing, empty or malformed.
func (c Credentials) Expires() (time.Time, bool) {
	s, ok := c.Get(FieldExpires)
	if !ok {
		return time.Time{}, false
	}
	t, err := ParseExpires(s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Validate checks the static fields required for any call.
func (c Credentials) Validate() error {
	return c.require(FieldClientID, FieldClientSecret, FieldBaseURL)
}

func (c Credentials) require(fields ...string) error {
	for _, f := range fields {
		if _, ok := c.Get(f); !ok {
			return fmt.Errorf("%w: %s", ErrMissingCredential, f)
		}
	}
	return nil
}

// NeedsInitialAuth reports whether no access token is present.
func NeedsInitialAuth(c Credentials) bool {
	_, ok := c.Get(FieldAccessToken)
	return !ok
}

// NeedsReauth reports whether the access token is expired or will expire
// within tolerance of now. A missing or unparseable expiry always needs
// reauthentication.
func NeedsReauth(c Credentials, tolerance time.Duration) bool {
	return needsReauthAt(c, tolerance, time.Now())
}

func needsReauthAt(c Credentials, tolerance time.Duration, now time.Time) bool {
	expires, ok := c.Expires()
	if !ok {
		return true
	}
	// Expiry is stored at second precision.
	deadline := now.UTC().Add(tolerance).Truncate(time.Second)
	return !deadline.Before(expires)
}
