package schema

import "errors"

var (
	// ErrInvalidMethod rejects envelopes tagged with an unrecognized verb.
	ErrInvalidMethod = errors.New("schema: invalid method")
	// ErrMalformedReply marks inbound payloads that do not parse as a reply
	// or carry no correlation id.
	ErrMalformedReply = errors.New("schema: malformed reply")
	// ErrTimeout settles requests whose reply did not arrive in time.
	ErrTimeout = errors.New("schema: request timed out")
	// ErrTransport settles in-flight requests when the transport reports a failure.
	ErrTransport = errors.New("schema: transport error")
	// ErrCancelled settles requests withdrawn by the caller.
	ErrCancelled = errors.New("schema: request cancelled")
)
