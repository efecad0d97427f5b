package wink

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Config is the on-disk client configuration. Tokens are not part of it;
// they live in the credential store named by CredentialsFile or UseKeyring.
type Config struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	BaseURL      string `yaml:"base_url"`

	Username string `yaml:"username"`
	UserID   string `yaml:"user_id"`
	Password string `yaml:"password"`

	CredentialsFile string `yaml:"credentials_file"`
	UseKeyring      bool   `yaml:"use_keyring"`

	Timeout         time.Duration `yaml:"timeout"`
	ReauthTolerance time.Duration `yaml:"reauth_tolerance"`
	LogLevel        string        `yaml:"log_level"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:         DefaultBaseURL,
		Timeout:         DefaultTimeout,
		ReauthTolerance: DefaultReauthTolerance,
	}
}

// DefaultConfigDir returns $XDG_CONFIG_HOME/wink, falling back to
// ~/.config/wink.
func DefaultConfigDir() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, _ := os.UserHomeDir()
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, "wink")
}

// LoadConfig reads the YAML file at path, if any, then applies WINK_*
// environment overrides.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path) //nolint:gosec // G304: path is chosen by the caller
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, &ConfigError{Kind: filepath.Base(path), Reason: err.Error()}
		}
	}

	if err := cfg.loadFromEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFromEnv() error {
	strs := map[string]*string{
		"WINK_CLIENT_ID":        &c.ClientID,
		"WINK_CLIENT_SECRET":    &c.ClientSecret,
		"WINK_BASE_URL":         &c.BaseURL,
		"WINK_USERNAME":         &c.Username,
		"WINK_USER_ID":          &c.UserID,
		"WINK_PASSWORD":         &c.Password,
		"WINK_CREDENTIALS_FILE": &c.CredentialsFile,
		"WINK_LOG_LEVEL":        &c.LogLevel,
	}
	for env, field := range strs {
		if v := os.Getenv(env); v != "" {
			*field = v
		}
	}

	if v := os.Getenv("WINK_USE_KEYRING"); v != "" {
		b, ok := parseEnvBool(v)
		if !ok {
			return &ConfigError{Kind: "WINK_USE_KEYRING", Reason: fmt.Sprintf("invalid boolean %q", v)}
		}
		c.UseKeyring = b
	}

	durations := map[string]*time.Duration{
		"WINK_TIMEOUT":          &c.Timeout,
		"WINK_REAUTH_TOLERANCE": &c.ReauthTolerance,
	}
	for env, field := range durations {
		v := os.Getenv(env)
		if v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return &ConfigError{Kind: env, Reason: err.Error()}
		}
		*field = d
	}
	return nil
}

func parseEnvBool(v string) (bool, bool) {
	switch strings.ToLower(v) {
	case "true", "1", "yes":
		return true, true
	case "false", "0", "no":
		return false, true
	default:
		return false, false
	}
}

// Credentials returns the static credential set described by c.
func (c *Config) Credentials() Credentials {
	creds := Credentials{
		FieldClientID:     c.ClientID,
		FieldClientSecret: c.ClientSecret,
		FieldBaseURL:      c.BaseURL,
	}
	if c.Username != "" {
		creds[FieldUsername] = c.Username
	}
	if c.UserID != "" {
		creds[FieldUserID] = c.UserID
	}
	if c.Password != "" {
		creds[FieldPassword] = c.Password
	}
	return creds
}

// Store returns the configured credential store, or nil when tokens are
// kept in memory only.
func (c *Config) Store() CredentialStore {
	switch {
	case c.UseKeyring:
		account := c.Username
		if account == "" {
			account = c.UserID
		}
		if account == "" {
			account = c.ClientID
		}
		return NewKeyringCredentialStore(account)
	case c.CredentialsFile != "":
		return NewFileCredentialStore(c.CredentialsFile)
	default:
		return nil
	}
}

// Logger returns a stderr logger at LogLevel, or a disabled logger when
// no level is set.
func (c *Config) Logger() (zerolog.Logger, error) {
	if c.LogLevel == "" {
		return zerolog.Nop(), nil
	}
	return NewLogger(os.Stderr, c.LogLevel)
}

// NewSession builds a Session from c. Tokens saved by an earlier run are
// loaded from the configured store and merged over the static fields, and
// the same store receives every renewed set. opts are applied last.
func (c *Config) NewSession(ctx context.Context, opts ...Option) (*Session, error) {
	creds := c.Credentials()
	store := c.Store()

	if store != nil {
		saved, err := store.Load(ctx)
		switch {
		case err == nil:
			for _, field := range []string{FieldAccessToken, FieldRefreshToken, FieldExpires} {
				if v, ok := saved.Get(field); ok {
					creds[field] = v
				}
			}
			// Renewed sets are saved whole; keep the password out.
			if _, ok := saved.Get(FieldAccessToken); ok {
				if _, ok := saved.Get(FieldRefreshToken); ok {
					delete(creds, FieldPassword)
				}
			}
		case errors.Is(err, ErrCredentialsNotFound):
		default:
			return nil, err
		}
	}

	logger, err := c.Logger()
	if err != nil {
		return nil, err
	}

	base := []Option{WithLogger(logger)}
	if c.Timeout > 0 {
		base = append(base, WithTimeout(c.Timeout))
	}
	if c.ReauthTolerance > 0 {
		base = append(base, WithReauthTolerance(c.ReauthTolerance))
	}
	if store != nil {
		base = append(base, WithCredentialStore(store))
	}

	return NewSession(creds, append(base, opts...)...)
}
