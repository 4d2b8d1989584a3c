// Package channel turns an asynchronous bidirectional transport into a
// point-to-point RPC-style channel. Each call is tagged with an HTTP-like
// verb, correlated by a random uint32 id, and settles exactly once: resolved
// by a matching reply, rejected on transport failure, or cancelled on timeout.
//
// A channel owns at most one transport at a time. Requests issued while the
// transport is down stay pending and are flushed when it opens; requests
// already sent are re-sent after a reconnect. Swapping the transport via
// SetTransport disposes the previous one.
//
//	ch, err := channel.New(tcp.New("127.0.0.1:4981"))
//	if err != nil { ... }
//	reply, err := ch.Get(map[string]string{"uri": "/hello"}).Await(ctx)
package channel
