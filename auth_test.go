package wink

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tokenServer is a mock token endpoint that records the last request body.
type tokenServer struct {
	*httptest.Server
	calls    atomic.Int32
	lastBody atomic.Value // map[string]any
}

func newTokenServer(t *testing.T, status int, response string) *tokenServer {
	t.Helper()
	ts := &tokenServer{}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ts.calls.Add(1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, DefaultTokenPath, r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		ts.lastBody.Store(body)

		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(ts.Close)
	return ts
}

func (ts *tokenServer) body() map[string]any {
	b, _ := ts.lastBody.Load().(map[string]any)
	return b
}

func baseCredentials(baseURL string) Credentials {
	return Credentials{
		FieldClientID:     "a",
		FieldClientSecret: "b",
		FieldBaseURL:      baseURL,
		FieldUsername:     "u",
		FieldPassword:     "p",
	}
}

func TestNeedsInitialAuth(t *testing.T) {
	tests := []struct {
		name  string
		creds Credentials
		want  bool
	}{
		{"nil set", nil, true},
		{"missing token", Credentials{FieldClientID: "a"}, true},
		{"empty token", Credentials{FieldAccessToken: ""}, true},
		{"token present", Credentials{FieldAccessToken: "T1"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NeedsInitialAuth(tt.creds))
		})
	}
}

func TestNeedsReauth(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		expires string
		omit    bool
		want    bool
	}{
		{name: "missing expires", omit: true, want: true},
		{name: "empty expires", expires: "", want: true},
		{name: "malformed expires", expires: "tomorrow", want: true},
		{name: "already expired", expires: FormatExpires(now.Add(-time.Minute)), want: true},
		{name: "expires now", expires: FormatExpires(now), want: true},
		{name: "inside tolerance", expires: FormatExpires(now.Add(5 * time.Second)), want: true},
		{name: "exactly at tolerance", expires: FormatExpires(now.Add(10 * time.Second)), want: true},
		{name: "just past tolerance", expires: FormatExpires(now.Add(11 * time.Second)), want: false},
		{name: "far future", expires: FormatExpires(now.Add(time.Hour)), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			creds := Credentials{FieldAccessToken: "T1"}
			if !tt.omit {
				creds[FieldExpires] = tt.expires
			}
			assert.Equal(t, tt.want, needsReauthAt(creds, DefaultReauthTolerance, now))

			a := NewAuthenticator(WithClock(func() time.Time { return now }))
			assert.Equal(t, tt.want, a.NeedsReauth(creds, DefaultReauthTolerance))
		})
	}
}

func TestNeedsReauth_WallClock(t *testing.T) {
	assert.True(t, NeedsReauth(Credentials{FieldExpires: FormatExpires(time.Now())}, DefaultReauthTolerance))
	assert.False(t, NeedsReauth(Credentials{FieldExpires: FormatExpires(time.Now().Add(time.Hour))}, DefaultReauthTolerance))
}

func TestAuthenticator_Authenticate(t *testing.T) {
	t.Run("password grant with username", func(t *testing.T) {
		ts := newTokenServer(t, http.StatusCreated,
			`{"data":{"access_token":"T1","refresh_token":"R1","expires_in":"900"}}`)

		input := baseCredentials(ts.URL)
		before := time.Now().UTC().Truncate(time.Second)

		got, err := NewAuthenticator().Authenticate(context.Background(), input)
		require.NoError(t, err)

		assert.Equal(t, "T1", got[FieldAccessToken])
		assert.Equal(t, "R1", got[FieldRefreshToken])
		assert.NotContains(t, got, FieldPassword)
		assert.Equal(t, "u", got[FieldUsername])

		expires, ok := got.Expires()
		require.True(t, ok)
		assert.WithinDuration(t, before.Add(900*time.Second), expires, 2*time.Second)
		assert.True(t, expires.After(before))

		body := ts.body()
		assert.Equal(t, "a", body["client_id"])
		assert.Equal(t, "b", body["client_secret"])
		assert.Equal(t, "password", body["grant_type"])
		assert.Equal(t, "p", body["password"])
		assert.Equal(t, "u", body["username"])
		assert.NotContains(t, body, "user_id")

		assert.Equal(t, "p", input[FieldPassword], "input must not be mutated")
		assert.NotContains(t, input, FieldAccessToken)
	})

	t.Run("user_id used when username absent", func(t *testing.T) {
		ts := newTokenServer(t, http.StatusOK,
			`{"data":{"access_token":"T1","refresh_token":"R1","expires_in":60}}`)

		creds := baseCredentials(ts.URL)
		delete(creds, FieldUsername)
		creds[FieldUserID] = "42"

		_, err := NewAuthenticator().Authenticate(context.Background(), creds)
		require.NoError(t, err)

		body := ts.body()
		assert.Equal(t, "42", body["user_id"])
		assert.NotContains(t, body, "username")
	})

	t.Run("username wins over user_id", func(t *testing.T) {
		ts := newTokenServer(t, http.StatusOK, `{"data":{"access_token":"T1","refresh_token":"R1"}}`)

		creds := baseCredentials(ts.URL)
		creds[FieldUserID] = "42"

		_, err := NewAuthenticator().Authenticate(context.Background(), creds)
		require.NoError(t, err)
		assert.Equal(t, "u", ts.body()["username"])
		assert.NotContains(t, ts.body(), "user_id")
	})

	t.Run("expires_in defaults to 900 seconds", func(t *testing.T) {
		ts := newTokenServer(t, http.StatusOK, `{"data":{"access_token":"T1","refresh_token":"R1"}}`)
		fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

		got, err := NewAuthenticator(WithClock(func() time.Time { return fixed })).
			Authenticate(context.Background(), baseCredentials(ts.URL))
		require.NoError(t, err)
		assert.Equal(t, "2024-01-01 00:15:00", got[FieldExpires])
	})

	t.Run("oversized expires_in is rejected", func(t *testing.T) {
		for _, raw := range []string{`1e20`, `"1e20"`, `-1e20`, `"NaN"`, `"Inf"`} {
			ts := newTokenServer(t, http.StatusOK,
				`{"data":{"access_token":"T1","refresh_token":"R1","expires_in":`+raw+`}}`)

			got, err := NewAuthenticator().Authenticate(context.Background(), baseCredentials(ts.URL))
			require.Error(t, err, raw)
			assert.Nil(t, got, raw)
			assert.Contains(t, err.Error(), "out of range", raw)
		}
	})

	t.Run("largest representable expires_in", func(t *testing.T) {
		ts := newTokenServer(t, http.StatusOK,
			`{"data":{"access_token":"T1","refresh_token":"R1","expires_in":9223372036}}`)
		fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

		got, err := NewAuthenticator(WithClock(func() time.Time { return fixed })).
			Authenticate(context.Background(), baseCredentials(ts.URL))
		require.NoError(t, err)
		expires, ok := got.Expires()
		require.True(t, ok)
		assert.True(t, expires.After(fixed))
	})

	t.Run("rejected credentials", func(t *testing.T) {
		ts := newTokenServer(t, http.StatusUnauthorized, `{"error":"invalid username or password"}`)
		input := baseCredentials(ts.URL)

		got, err := NewAuthenticator().Authenticate(context.Background(), input)
		require.Error(t, err)
		assert.Nil(t, got)

		var authErr *AuthError
		require.True(t, errors.As(err, &authErr))
		assert.Equal(t, http.StatusUnauthorized, authErr.StatusCode)
		assert.Equal(t, "invalid username or password", authErr.Message)
		assert.Equal(t, "p", input[FieldPassword])
	})

	t.Run("non-json error body", func(t *testing.T) {
		ts := newTokenServer(t, http.StatusBadGateway, `upstream down`)

		_, err := NewAuthenticator().Authenticate(context.Background(), baseCredentials(ts.URL))
		var authErr *AuthError
		require.ErrorAs(t, err, &authErr)
		assert.Equal(t, "upstream down", authErr.Message)
	})

	t.Run("missing password makes no request", func(t *testing.T) {
		ts := newTokenServer(t, http.StatusOK, `{}`)
		creds := baseCredentials(ts.URL)
		delete(creds, FieldPassword)

		_, err := NewAuthenticator().Authenticate(context.Background(), creds)
		assert.ErrorIs(t, err, ErrMissingCredential)
		assert.Zero(t, ts.calls.Load())
	})

	t.Run("missing identity", func(t *testing.T) {
		creds := baseCredentials("http://unused")
		delete(creds, FieldUsername)

		_, err := NewAuthenticator().Authenticate(context.Background(), creds)
		assert.ErrorIs(t, err, ErrMissingCredential)
	})

	t.Run("missing static field", func(t *testing.T) {
		creds := baseCredentials("http://unused")
		delete(creds, FieldClientSecret)

		_, err := NewAuthenticator().Authenticate(context.Background(), creds)
		assert.ErrorIs(t, err, ErrMissingCredential)
		assert.Contains(t, err.Error(), FieldClientSecret)
	})

	t.Run("transport failure", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		url := ts.URL
		ts.Close()

		_, err := NewAuthenticator().Authenticate(context.Background(), baseCredentials(url))
		assert.True(t, IsTransportError(err))
	})
}

func TestAuthenticator_Reauthenticate(t *testing.T) {
	ts := newTokenServer(t, http.StatusOK,
		`{"data":{"access_token":"T2","refresh_token":"R2","expires_in":"1800"}}`)

	input := Credentials{
		FieldClientID:     "a",
		FieldClientSecret: "b",
		FieldBaseURL:      ts.URL,
		FieldUsername:     "u",
		FieldAccessToken:  "T1",
		FieldRefreshToken: "R1",
		FieldExpires:      "2000-01-01 00:00:00",
	}
	before := time.Now().UTC().Truncate(time.Second)

	got, err := NewAuthenticator().Reauthenticate(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, "T2", got[FieldAccessToken])
	assert.Equal(t, "R2", got[FieldRefreshToken])
	assert.Equal(t, "u", got[FieldUsername])
	expires, ok := got.Expires()
	require.True(t, ok)
	assert.True(t, expires.After(before))

	body := ts.body()
	assert.Equal(t, "refresh_token", body["grant_type"])
	assert.Equal(t, "R1", body["refresh_token"])
	assert.NotContains(t, body, "password")

	assert.Equal(t, "T1", input[FieldAccessToken], "input must not be mutated")

	t.Run("repeated calls each succeed", func(t *testing.T) {
		again, err := NewAuthenticator().Reauthenticate(context.Background(), got)
		require.NoError(t, err)
		assert.Equal(t, "T2", again[FieldAccessToken])
		assert.Equal(t, "R2", ts.body()["refresh_token"])
	})

	t.Run("missing refresh token", func(t *testing.T) {
		creds := input.Clone()
		delete(creds, FieldRefreshToken)

		_, err := NewAuthenticator().Reauthenticate(context.Background(), creds)
		assert.ErrorIs(t, err, ErrMissingCredential)
	})
}

func TestAuthenticator_TokenPath(t *testing.T) {
	var gotPath string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"data":{"access_token":"T","refresh_token":"R"}}`))
	}))
	defer ts.Close()

	_, err := NewAuthenticator(WithTokenPath("/custom/token")).
		Authenticate(context.Background(), baseCredentials(ts.URL+"/"))
	require.NoError(t, err)
	assert.Equal(t, "/custom/token", gotPath)
}
