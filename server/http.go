package server

import (
	"context"
	"net/http"
)

// HTTP creates and returns an HTTP server exposing WebSocket sessions and
// Prometheus metrics alongside any custom handlers.
func (s *Server) HTTP(_ context.Context, addr string) *http.Server {
	if addr == "" {
		addr = s.addr
	}
	if addr == "" {
		// Default bind only to localhost to reduce DNS rebinding risk
		addr = "127.0.0.1:5000"
	}
	if s.wsURI == "" {
		s.wsURI = "/ws"
	}
	if s.metricsURI == "" {
		s.metricsURI = "/metrics"
	}
	mux := http.NewServeMux()
	mux.Handle(s.wsURI, s.WS())
	mux.Handle(s.metricsURI, MetricsHandler())
	for path, handler := range s.customHandlers {
		mux.Handle(path, handler)
	}
	return &http.Server{Addr: addr, Handler: mux}
}
