package channel

import (
	"time"

	"github.com/rs/zerolog"
)

// Option represents a channel option
type Option func(c *Channel)

// WithTimeout sets the timeout applied to new requests.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Channel) {
		c.timeout = timeout
	}
}

// WithLogger sets the diagnostics logger; zerolog.Nop by default.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Channel) {
		c.logger = logger
	}
}

// CallOption adjusts a single request.
type CallOption func(o *callOptions)

type callOptions struct {
	config  any
	timeout time.Duration
}

// WithConfig attaches caller metadata carried in the envelope's config field.
func WithConfig(config any) CallOption {
	return func(o *callOptions) {
		o.config = config
	}
}

// WithCallTimeout overrides the channel timeout for this request only.
func WithCallTimeout(timeout time.Duration) CallOption {
	return func(o *callOptions) {
		o.timeout = timeout
	}
}
