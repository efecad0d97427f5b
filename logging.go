package wink

import (
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger returns a JSON logger writing to w at the named level
// ("debug", "info", ...). An empty level means info; a nil w means
// stderr.
func NewLogger(w io.Writer, level string) (zerolog.Logger, error) {
	if w == nil {
		w = os.Stderr
	}

	lvl := zerolog.InfoLevel
	if level != "" {
		var err error
		lvl, err = zerolog.ParseLevel(level)
		if err != nil {
			return zerolog.Nop(), &ConfigError{Kind: "log_level", Reason: err.Error()}
		}
	}

	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}

// LoggingTransport wraps an http.RoundTripper and logs raw HTTP traffic.
// Headers are never logged.
type LoggingTransport struct {
	Base   http.RoundTripper
	Logger zerolog.Logger
}

// RoundTrip implements http.RoundTripper with logging.
func (t *LoggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	start := time.Now()
	t.Logger.Debug().
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Msg("http_request")

	resp, err := base.RoundTrip(req)
	duration := time.Since(start)

	if err != nil {
		t.Logger.Error().
			Str("method", req.Method).
			Str("url", req.URL.String()).
			Dur("duration", duration).
			Err(err).
			Msg("http_error")
		return resp, err
	}

	event := t.Logger.Debug()
	switch {
	case resp.StatusCode >= 500:
		event = t.Logger.Error()
	case resp.StatusCode >= 400:
		event = t.Logger.Warn()
	}
	event.
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Int("status", resp.StatusCode).
		Dur("duration", duration).
		Int64("content_length", resp.ContentLength).
		Msg("http_response")

	return resp, nil
}

// LogRevert writes one event per device in a revert result tree.
func LogRevert(logger zerolog.Logger, result *RevertResult) {
	result.walk(func(r *RevertResult) {
		switch {
		case r.Err != nil:
			logger.Error().Str("kind", string(r.Kind)).Str("id", r.ID).Err(r.Err).Msg("revert_failed")
		case r.Skipped:
			logger.Warn().Str("kind", string(r.Kind)).Str("id", r.ID).Msg("revert_skipped")
		default:
			logger.Info().Str("kind", string(r.Kind)).Str("id", r.ID).Msg("reverted")
		}
	})
}

// NewLoggingSession creates a session whose HTTP traffic, including
// token exchanges, is logged to logger.
//
// Example:
//
//	logger, _ := wink.NewLogger(os.Stderr, "debug")
//	session, err := wink.NewLoggingSession(creds, logger)
func NewLoggingSession(creds Credentials, logger zerolog.Logger, opts ...Option) (*Session, error) {
	transport := &LoggingTransport{
		Base: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			ForceAttemptHTTP2:   true,
		},
		Logger: logger,
	}

	httpClient := &http.Client{
		Timeout:   DefaultTimeout,
		Transport: transport,
	}

	allOpts := append([]Option{WithHTTPClient(httpClient), WithLogger(logger)}, opts...)
	return NewSession(creds, allOpts...)
}
