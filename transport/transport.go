// Package transport defines the contract a duplex channel consumes: an
// asynchronous, possibly unreliable, bidirectional message carrier with an
// explicit open/close lifecycle and four notifications (open, close, error,
// data) delivered to a subscribed handler.
//
// Implementations under transport/pipe, transport/tcp and transport/ws satisfy
// this contract; callers may supply their own.
package transport

import "context"

// Handler receives the four transport lifecycle notifications. A transport
// delivers notifications sequentially, never concurrently, and never
// synchronously from within Send.
type Handler interface {
	// OnOpen signals the transport is connected and ready to carry sends.
	OnOpen()
	// OnClose signals the connection dropped without a terminal failure;
	// the transport may reopen later.
	OnClose()
	// OnError signals a connection-level failure fatal to in-flight work.
	OnError(err error)
	// OnData delivers one whole inbound message.
	OnData(data []byte)
}

// Transport is the capability bound to a channel. At most one handler is
// subscribed at a time; subscribing nil detaches the current one.
type Transport interface {
	// Open begins connecting and returns the opened handle, which may be a
	// wrapped instance distinct from the receiver. Implementations must be
	// safe to call on an already-open transport.
	Open(ctx context.Context) (Transport, error)

	// Send hands one outbound message to the connection.
	Send(ctx context.Context, data []byte) error

	// Subscribe registers the handler receiving lifecycle notifications,
	// replacing any prior registration.
	Subscribe(handler Handler)

	// Close releases the connection. A close initiated here still emits the
	// close notification to the subscribed handler.
	Close() error
}
