package wink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultBaseURL is the Wink API base URL.
	DefaultBaseURL = "https://winkapi.quirky.com"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	requestIDHeader = "X-Request-Id"
)

// Session issues authenticated calls against the Wink API. It owns the
// current credential set and refreshes it lazily at the start of a call.
// A Session is safe for concurrent use.
type Session struct {
	httpClient *http.Client
	auth       *Authenticator
	store      CredentialStore
	logger     zerolog.Logger
	tolerance  time.Duration
	userAgent  string

	mu    sync.RWMutex
	creds Credentials

	refresh singleflight.Group
}

// Option configures a Session.
type Option func(*Session)

// WithHTTPClient sets a custom HTTP client for API and token calls.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Session) {
		s.httpClient = client
	}
}

// WithTimeout sets the HTTP request timeout.
// This option can be applied in any order relative to other options.
func WithTimeout(timeout time.Duration) Option {
	return func(s *Session) {
		if s.httpClient == nil {
			s.httpClient = &http.Client{}
		}
		s.httpClient.Timeout = timeout
	}
}

// WithCredentialStore sets the persistence hook. Save is called after
// every successful (re)authentication.
func WithCredentialStore(store CredentialStore) Option {
	return func(s *Session) {
		s.store = store
	}
}

// WithLogger sets the structured logger used for API traffic and
// credential events.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithReauthTolerance overrides DefaultReauthTolerance.
func WithReauthTolerance(d time.Duration) Option {
	return func(s *Session) {
		s.tolerance = d
	}
}

// WithAuthenticator replaces the Authenticator built from the session's
// HTTP client and logger.
func WithAuthenticator(a *Authenticator) Option {
	return func(s *Session) {
		s.auth = a
	}
}

// WithUserAgent sets the User-Agent header on API calls.
func WithUserAgent(ua string) Option {
	return func(s *Session) {
		s.userAgent = ua
	}
}

// defaultHTTPClient returns the default HTTP client configuration.
func defaultHTTPClient() *http.Client {
	return &http.Client{
		Timeout: DefaultTimeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// NewSession creates a Session for creds. Only the static fields
// (client_id, client_secret, base_url) are required; tokens are obtained
// on the first call.
func NewSession(creds Credentials, opts ...Option) (*Session, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	s := &Session{
		httpClient: defaultHTTPClient(),
		logger:     zerolog.Nop(),
		tolerance:  DefaultReauthTolerance,
		creds:      creds.Clone(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.auth == nil {
		s.auth = NewAuthenticator(WithAuthHTTPClient(s.httpClient), WithAuthLogger(s.logger))
	}

	return s, nil
}

// NewSessionFromStore loads credentials from store and uses the same
// store as the persistence hook.
func NewSessionFromStore(ctx context.Context, store CredentialStore, opts ...Option) (*Session, error) {
	creds, err := store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return NewSession(creds, append([]Option{WithCredentialStore(store)}, opts...)...)
}

// Credentials returns a copy of the current credential set.
func (s *Session) Credentials() Credentials {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds.Clone()
}

// Authenticator returns the engine used for token exchanges.
func (s *Session) Authenticator() *Authenticator {
	return s.auth
}

// Token returns a valid access token, authenticating or reauthenticating
// first when needed. Concurrent callers that find the token stale share a
// single exchange.
func (s *Session) Token(ctx context.Context) (string, error) {
	s.mu.RLock()
	creds := s.creds
	s.mu.RUnlock()

	if grant := s.pendingGrant(creds); grant == "" {
		return creds[FieldAccessToken], nil
	}

	// The shared exchange must not be aborted by one waiter's cancellation;
	// the HTTP client timeout still bounds it.
	flightCtx := context.WithoutCancel(ctx)
	ch := s.refresh.DoChan("credentials", func() (any, error) {
		return s.renew(flightCtx)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// pendingGrant reports which exchange, if any, creds need.
func (s *Session) pendingGrant(creds Credentials) string {
	switch {
	case s.auth.NeedsInitialAuth(creds):
		return grantPassword
	case s.auth.NeedsReauth(creds, s.tolerance):
		return grantRefreshToken
	default:
		return ""
	}
}

// renew runs inside the single flight. The need is re-evaluated against
// the current set so a caller that arrives after a completed refresh
// reuses it instead of refreshing again.
func (s *Session) renew(ctx context.Context) (string, error) {
	s.mu.RLock()
	creds := s.creds
	s.mu.RUnlock()

	var (
		next Credentials
		err  error
	)
	switch s.pendingGrant(creds) {
	case "":
		return creds[FieldAccessToken], nil
	case grantPassword:
		next, err = s.auth.Authenticate(ctx, creds)
	default:
		next, err = s.auth.Reauthenticate(ctx, creds)
	}
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.creds = next
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.Save(ctx, next.Clone()); err != nil {
			// The in-memory set is valid; the next refresh persists again.
			s.logger.Warn().Err(err).Msg("credential_save_failed")
		}
	}

	return next[FieldAccessToken], nil
}

// Call performs an authenticated request against path and returns the
// decoded response. Responses wrapped in a "data" object are unwrapped.
func (s *Session) Call(ctx context.Context, method, path string, body any) (Document, error) {
	token, err := s.Token(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	baseURL := strings.TrimRight(s.creds[FieldBaseURL], "/")
	s.mu.RUnlock()

	return s.do(ctx, token, method, baseURL+path, body)
}

// Get performs a GET request.
func (s *Session) Get(ctx context.Context, path string) (Document, error) {
	return s.Call(ctx, http.MethodGet, path, nil)
}

// Put performs a PUT request.
func (s *Session) Put(ctx context.Context, path string, body any) (Document, error) {
	return s.Call(ctx, http.MethodPut, path, body)
}

// Post performs a POST request.
func (s *Session) Post(ctx context.Context, path string, body any) (Document, error) {
	return s.Call(ctx, http.MethodPost, path, body)
}

// Delete performs a DELETE request.
func (s *Session) Delete(ctx context.Context, path string) (Document, error) {
	return s.Call(ctx, http.MethodDelete, path, nil)
}

// do performs one HTTP request and decodes the response body.
func (s *Session) do(ctx context.Context, token, method, url string, body any) (Document, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	log := s.logger.With().Str("method", method).Str("url", url).Str("request_id", requestID).Logger()
	log.Debug().Msg("api_request")
	start := time.Now()

	resp, err := s.httpClient.Do(req)
	if err != nil {
		log.Error().Err(err).Dur("duration", time.Since(start)).Msg("api_error")
		return nil, &TransportError{Op: method, URL: url, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: method, URL: url, Err: err}
	}

	event := log.Debug()
	if resp.StatusCode >= 400 {
		event = log.Warn()
	}
	event.Int("status", resp.StatusCode).Dur("duration", time.Since(start)).Msg("api_response")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(respBody),
			RequestID:  requestID,
		}
	}

	return decodeDocument(respBody)
}

// decodeDocument parses a response body, unwrapping the API's "data"
// envelope when present.
func decodeDocument(body []byte) (Document, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return Document{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w (body: %s)", err, truncatePreview(body))
	}
	if doc == nil {
		return Document{}, nil
	}
	if data, ok := doc.Map("data"); ok {
		return data, nil
	}
	return doc, nil
}
