package wink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	// DefaultTokenPath is appended to base_url to reach the token endpoint.
	DefaultTokenPath = "/oauth2/token"

	// DefaultExpiresIn is assumed when the token endpoint omits expires_in.
	DefaultExpiresIn = 900 * time.Second

	// DefaultReauthTolerance is how far ahead of expiry a token is
	// considered stale, so it cannot expire mid-flight.
	DefaultReauthTolerance = 10 * time.Second

	grantPassword     = "password"
	grantRefreshToken = "refresh_token"
)

// Authenticator performs token exchanges against the Wink token endpoint.
// It holds no credential state: each exchange maps one credential set
// to a new one.
type Authenticator struct {
	httpClient *http.Client
	tokenPath  string
	now        func() time.Time
	logger     zerolog.Logger
}

// AuthOption configures an Authenticator.
type AuthOption func(*Authenticator)

// WithAuthHTTPClient sets the HTTP client used for token exchanges.
func WithAuthHTTPClient(client *http.Client) AuthOption {
	return func(a *Authenticator) {
		a.httpClient = client
	}
}

// WithTokenPath overrides DefaultTokenPath.
func WithTokenPath(path string) AuthOption {
	return func(a *Authenticator) {
		a.tokenPath = path
	}
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) AuthOption {
	return func(a *Authenticator) {
		a.now = now
	}
}

// WithAuthLogger sets the logger for exchange events.
func WithAuthLogger(logger zerolog.Logger) AuthOption {
	return func(a *Authenticator) {
		a.logger = logger
	}
}

// NewAuthenticator creates an Authenticator with the given options.
func NewAuthenticator(opts ...AuthOption) *Authenticator {
	a := &Authenticator{
		httpClient: defaultHTTPClient(),
		tokenPath:  DefaultTokenPath,
		now:        time.Now,
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// NeedsInitialAuth reports whether c carries no access token.
func (a *Authenticator) NeedsInitialAuth(c Credentials) bool {
	return NeedsInitialAuth(c)
}

// NeedsReauth is NeedsReauth evaluated against the Authenticator's clock.
func (a *Authenticator) NeedsReauth(c Credentials, tolerance time.Duration) bool {
	return needsReauthAt(c, tolerance, a.now())
}

// Authenticate performs the password grant. The identity sent is username
// when present, otherwise user_id. The result drops the password.
func (a *Authenticator) Authenticate(ctx context.Context, c Credentials) (Credentials, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	password, ok := c.Get(FieldPassword)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingCredential, FieldPassword)
	}

	body := map[string]string{
		"grant_type":  grantPassword,
		FieldPassword: password,
	}
	if username, ok := c.Get(FieldUsername); ok {
		body[FieldUsername] = username
	} else if userID, ok := c.Get(FieldUserID); ok {
		body[FieldUserID] = userID
	} else {
		return nil, fmt.Errorf("%w: %s or %s", ErrMissingCredential, FieldUsername, FieldUserID)
	}

	result, err := a.exchange(ctx, c, body)
	if err != nil {
		return nil, err
	}
	delete(result, FieldPassword)

	a.logger.Info().Str("grant_type", grantPassword).Str("expires", result[FieldExpires]).Msg("authenticated")
	return result, nil
}

// Reauthenticate exchanges the refresh token for a fresh token triple.
// Fields other than access_token, refresh_token and expires are kept.
func (a *Authenticator) Reauthenticate(ctx context.Context, c Credentials) (Credentials, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	refresh, ok := c.Get(FieldRefreshToken)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingCredential, FieldRefreshToken)
	}

	result, err := a.exchange(ctx, c, map[string]string{
		"grant_type":      grantRefreshToken,
		FieldRefreshToken: refresh,
	})
	if err != nil {
		return nil, err
	}

	a.logger.Info().Str("grant_type", grantRefreshToken).Str("expires", result[FieldExpires]).Msg("reauthenticated")
	return result, nil
}

// tokenResponse is the token endpoint's success envelope.
type tokenResponse struct {
	Data struct {
		AccessToken  string    `json:"access_token"`
		RefreshToken string    `json:"refresh_token"`
		ExpiresIn    expiresIn `json:"expires_in"`
	} `json:"data"`
}

// expiresIn accepts both a JSON number and a numeric string.
type expiresIn struct {
	seconds int64
	set     bool
}

// maxExpiresInSeconds is the largest lifetime a time.Duration can hold.
const maxExpiresInSeconds = float64(math.MaxInt64 / int64(time.Second))

func (e *expiresIn) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid expires_in %q: %w", s, err)
	}
	if math.IsNaN(f) || math.Abs(f) > maxExpiresInSeconds {
		return fmt.Errorf("expires_in %q out of range", s)
	}
	e.seconds = int64(f)
	e.set = true
	return nil
}

func (e expiresIn) duration() time.Duration {
	if !e.set {
		return DefaultExpiresIn
	}
	return time.Duration(e.seconds) * time.Second
}

// exchange posts a grant to the token endpoint and returns c with the
// token triple overwritten. c itself is not modified.
func (a *Authenticator) exchange(ctx context.Context, c Credentials, grant map[string]string) (Credentials, error) {
	payload := map[string]string{
		FieldClientID:     c[FieldClientID],
		FieldClientSecret: c[FieldClientSecret],
	}
	for k, v := range grant {
		payload[k] = v
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal token request: %w", err)
	}

	endpoint := strings.TrimRight(c[FieldBaseURL], "/") + a.tokenPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: http.MethodPost, URL: endpoint, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: http.MethodPost, URL: endpoint, Err: err}
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		a.logger.Warn().Int("status", resp.StatusCode).Str("grant_type", grant["grant_type"]).Msg("token_exchange_rejected")
		return nil, &AuthError{StatusCode: resp.StatusCode, Message: errorMessage(body)}
	}

	var tokens tokenResponse
	if err := json.Unmarshal(body, &tokens); err != nil {
		return nil, fmt.Errorf("failed to parse token response: %w (body: %s)", err, truncatePreview(body))
	}
	if tokens.Data.AccessToken == "" || tokens.Data.RefreshToken == "" {
		return nil, &AuthError{StatusCode: resp.StatusCode, Message: "token response is missing access_token or refresh_token"}
	}

	result := c.Clone()
	result[FieldAccessToken] = tokens.Data.AccessToken
	result[FieldRefreshToken] = tokens.Data.RefreshToken
	result[FieldExpires] = FormatExpires(a.now().UTC().Add(tokens.Data.ExpiresIn.duration()))
	return result, nil
}

// errorMessage extracts the "error" string from an error body, falling
// back to a truncated copy of the raw body.
func errorMessage(body []byte) string {
	var errResp struct {
		Error   any    `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil {
		switch e := errResp.Error.(type) {
		case string:
			if e != "" {
				return e
			}
		case map[string]any:
			if msg, ok := e["message"].(string); ok && msg != "" {
				return msg
			}
		}
		if errResp.Message != "" {
			return errResp.Message
		}
	}
	return truncatePreview(body)
}

// truncatePreview returns a truncated string for error messages.
func truncatePreview(data []byte) string {
	s := string(data)
	if len(s) > 200 {
		return s[:200] + "..."
	}
	return s
}
