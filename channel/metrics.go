package channel

import "github.com/VictoriaMetrics/metrics"

var (
	requestsIssued   = metrics.NewCounter("duplex_channel_requests_issued_total")
	requestsResolved = metrics.NewCounter("duplex_channel_requests_resolved_total")
	requestsTimedOut = metrics.NewCounter("duplex_channel_requests_timeout_total")
	requestsRejected = metrics.NewCounter("duplex_channel_requests_rejected_total")
	repliesMalformed = metrics.NewCounter("duplex_channel_replies_malformed_total")
	repliesUnmatched = metrics.NewCounter("duplex_channel_replies_unmatched_total")
)
