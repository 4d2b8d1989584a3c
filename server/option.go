package server

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/viant/duplex/schema"
)

// Option configures the server.
type Option func(s *Server) error

// WithName sets the server name used in log context.
func WithName(name string) Option {
	return func(s *Server) error {
		s.name = name
		return nil
	}
}

// WithLogger sets the logger; the default discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Server) error {
		s.logger = logger
		return nil
	}
}

// WithHandler registers a handler for one of the wire methods.
func WithHandler(method string, handler HandlerFunc) Option {
	return func(s *Server) error {
		if !schema.IsValidMethod(method) {
			return schema.ErrInvalidMethod
		}
		if handler == nil {
			return errors.New("server: nil handler")
		}
		s.Handle(method, handler)
		return nil
	}
}

// WithBearerAuth requires WebSocket upgrades to present an HS256 bearer
// token signed with secret. TCP sessions are not affected.
func WithBearerAuth(secret string) Option {
	return func(s *Server) error {
		if secret == "" {
			return errors.New("server: empty bearer secret")
		}
		s.jwtSecret = []byte(secret)
		return nil
	}
}

// WithCheckOrigin overrides the WebSocket upgrader origin check.
func WithCheckOrigin(check func(r *http.Request) bool) Option {
	return func(s *Server) error {
		s.upgrader.CheckOrigin = check
		return nil
	}
}

// WithEndpointAddress sets the address HTTP listens on when none is passed.
func WithEndpointAddress(addr string) Option {
	return func(s *Server) error {
		s.addr = addr
		return nil
	}
}

// WithWSURI overrides the WebSocket endpoint path, default "/ws".
func WithWSURI(uri string) Option {
	return func(s *Server) error {
		s.wsURI = uri
		return nil
	}
}

// WithMetricsURI overrides the metrics endpoint path, default "/metrics".
func WithMetricsURI(uri string) Option {
	return func(s *Server) error {
		s.metricsURI = uri
		return nil
	}
}

// WithCustomHTTPHandler registers an additional handler mounted by HTTP.
func WithCustomHTTPHandler(path string, handler http.HandlerFunc) Option {
	return func(s *Server) error {
		if path == "" {
			return errors.New("server: empty handler path")
		}
		if s.customHandlers == nil {
			s.customHandlers = map[string]http.HandlerFunc{}
		}
		s.customHandlers[path] = handler
		return nil
	}
}
