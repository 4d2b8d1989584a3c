package ws

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Option represents a transport option
type Option func(t *Transport)

// WithHeader adds HTTP headers to the dial request.
func WithHeader(header http.Header) Option {
	return func(t *Transport) {
		for key, values := range header {
			for _, value := range values {
				t.header.Add(key, value)
			}
		}
	}
}

// WithBearerToken sets the Authorization header for the dial request.
func WithBearerToken(token string) Option {
	return func(t *Transport) {
		t.header.Set("Authorization", "Bearer "+token)
	}
}

// WithDialer replaces the default websocket dialer.
func WithDialer(dialer *websocket.Dialer) Option {
	return func(t *Transport) {
		t.dialer = dialer
	}
}

// WithLogger sets the diagnostics logger; zerolog.Nop by default.
func WithLogger(logger zerolog.Logger) Option {
	return func(t *Transport) {
		t.logger = logger
	}
}
