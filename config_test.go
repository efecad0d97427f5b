package wink

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := LoadConfig("")
		require.NoError(t, err)
		assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
		assert.Equal(t, DefaultTimeout, cfg.Timeout)
		assert.Equal(t, DefaultReauthTolerance, cfg.ReauthTolerance)
		assert.Nil(t, cfg.Store())
	})

	t.Run("file", func(t *testing.T) {
		path := writeConfig(t, `
client_id: quirky_wink_android_app
client_secret: e749124ad386a5a35c0ab554a4f2c045
username: user@example.com
password: hunter2
timeout: 5s
reauth_tolerance: 1m
log_level: debug
`)
		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "quirky_wink_android_app", cfg.ClientID)
		assert.Equal(t, DefaultBaseURL, cfg.BaseURL, "unset keys keep defaults")
		assert.Equal(t, 5*time.Second, cfg.Timeout)
		assert.Equal(t, time.Minute, cfg.ReauthTolerance)

		creds := cfg.Credentials()
		assert.Equal(t, "user@example.com", creds[FieldUsername])
		assert.Equal(t, "hunter2", creds[FieldPassword])
		assert.NotContains(t, creds, FieldUserID)
		assert.NoError(t, creds.Validate())
	})

	t.Run("environment overrides file", func(t *testing.T) {
		path := writeConfig(t, "client_id: from-file\n")
		t.Setenv("WINK_CLIENT_ID", "from-env")
		t.Setenv("WINK_TIMEOUT", "2s")
		t.Setenv("WINK_USE_KEYRING", "true")

		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "from-env", cfg.ClientID)
		assert.Equal(t, 2*time.Second, cfg.Timeout)
		assert.True(t, cfg.UseKeyring)
	})

	t.Run("invalid values", func(t *testing.T) {
		t.Setenv("WINK_REAUTH_TOLERANCE", "soon")
		_, err := LoadConfig("")
		assert.True(t, IsConfigError(err))
	})

	t.Run("invalid boolean", func(t *testing.T) {
		t.Setenv("WINK_USE_KEYRING", "maybe")
		_, err := LoadConfig("")
		assert.True(t, IsConfigError(err))
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := LoadConfig(writeConfig(t, "client_id: [unterminated\n"))
		assert.True(t, IsConfigError(err))
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestConfig_Store(t *testing.T) {
	keyring.MockInit()

	cfg := &Config{CredentialsFile: filepath.Join(t.TempDir(), "creds.json")}
	assert.IsType(t, &FileCredentialStore{}, cfg.Store())

	cfg = &Config{UseKeyring: true, ClientID: "a", CredentialsFile: "ignored"}
	assert.IsType(t, &KeyringCredentialStore{}, cfg.Store())
}

func TestConfig_NewSession(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI(t)
	credsFile := filepath.Join(t.TempDir(), "credentials.json")

	cfg := &Config{
		ClientID:        "a",
		ClientSecret:    "b",
		BaseURL:         api.URL,
		Username:        "u",
		Password:        "p",
		CredentialsFile: credsFile,
		Timeout:         5 * time.Second,
	}

	s, err := cfg.NewSession(ctx)
	require.NoError(t, err)
	_, err = s.Get(ctx, "/users/me")
	require.NoError(t, err)
	assert.EqualValues(t, 1, api.passwordGrants.Load())

	saved, err := NewFileCredentialStore(credsFile).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "password-access-1", saved[FieldAccessToken])
	assert.NotContains(t, saved, FieldPassword)

	t.Run("second run reuses saved tokens", func(t *testing.T) {
		s, err := cfg.NewSession(ctx)
		require.NoError(t, err)
		assert.Equal(t, "password-access-1", s.Credentials()[FieldAccessToken])

		_, err = s.Get(ctx, "/users/me")
		require.NoError(t, err)
		assert.EqualValues(t, 1, api.passwordGrants.Load(), "no new password grant")

		last := api.recorded()[len(api.recorded())-1]
		assert.Equal(t, "Bearer password-access-1", last.Auth)
	})

	t.Run("unreadable store", func(t *testing.T) {
		require.NoError(t, os.WriteFile(credsFile, []byte("{broken"), 0600))
		_, err := cfg.NewSession(ctx)
		assert.Error(t, err)
	})

	t.Run("bad log level", func(t *testing.T) {
		bad := &Config{ClientID: "a", ClientSecret: "b", BaseURL: api.URL, LogLevel: "chatty"}
		_, err := bad.NewSession(ctx)
		assert.True(t, IsConfigError(err))
	})
}

func TestConfig_NewSession_RefreshKeepsPasswordOutOfStore(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI(t)
	credsFile := filepath.Join(t.TempDir(), "credentials.json")
	store := NewFileCredentialStore(credsFile)
	require.NoError(t, store.Save(ctx, Credentials{
		FieldAccessToken:  "old-access",
		FieldRefreshToken: "old-refresh",
		FieldExpires:      "2000-01-01 00:00:00",
	}))

	cfg := &Config{
		ClientID:        "a",
		ClientSecret:    "b",
		BaseURL:         api.URL,
		Username:        "u",
		Password:        "p",
		CredentialsFile: credsFile,
	}

	s, err := cfg.NewSession(ctx)
	require.NoError(t, err)
	assert.NotContains(t, s.Credentials(), FieldPassword)

	_, err = s.Get(ctx, "/users/me")
	require.NoError(t, err)
	assert.EqualValues(t, 1, api.refreshGrants.Load())
	assert.EqualValues(t, 0, api.passwordGrants.Load())

	saved, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "refresh_token-access-1", saved[FieldAccessToken])
	assert.NotContains(t, saved, FieldPassword)
	assert.Equal(t, "u", saved[FieldUsername])
}
