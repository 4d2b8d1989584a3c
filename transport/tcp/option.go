package tcp

import (
	"time"

	"github.com/rs/zerolog"
)

// Option represents a transport option
type Option func(t *Transport)

// WithDialTimeout bounds each connection attempt.
func WithDialTimeout(timeout time.Duration) Option {
	return func(t *Transport) {
		t.dialTimeout = timeout
	}
}

// WithRedial re-establishes dropped connections automatically with capped
// exponential backoff; each recovery surfaces as an open notification.
func WithRedial() Option {
	return func(t *Transport) {
		t.redial = true
	}
}

// WithLogger sets the diagnostics logger; zerolog.Nop by default.
func WithLogger(logger zerolog.Logger) Option {
	return func(t *Transport) {
		t.logger = logger
	}
}
