package server

import (
	"net/http"

	"github.com/VictoriaMetrics/metrics"
)

var (
	sessionsOpened    = metrics.NewCounter(`duplex_server_sessions_opened_total`)
	sessionsActive    = metrics.NewCounter(`duplex_server_sessions_active`)
	requestsHandled   = metrics.NewCounter(`duplex_server_requests_handled_total`)
	requestsFailed    = metrics.NewCounter(`duplex_server_requests_failed_total`)
	requestsMalformed = metrics.NewCounter(`duplex_server_requests_malformed_total`)
	authDenied        = metrics.NewCounter(`duplex_server_auth_denied_total`)
)

// MetricsHandler exposes all accumulated counters in Prometheus text format.
func MetricsHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		metrics.WritePrometheus(w, true)
	})
}
