// Package server implements the responder side of the duplex wire
// protocol: it accepts verb-tagged request envelopes from any number of
// peers, routes each one to a registered handler and writes back a reply
// correlated by the request id.
//
// A server is transport-agnostic. It can accept framed TCP connections
// (Serve, ListenTCP), upgrade HTTP requests to WebSocket sessions (WS) or
// attach to any transport.Transport directly (Attach). Each inbound
// request is dispatched on its own goroutine; replies may therefore
// interleave in any order, which is what the caller's correlation layer
// expects.
//
//	srv, err := server.New(
//		server.WithHandler(schema.MethodGet, func(ctx context.Context, request *schema.Request) (any, error) {
//			return "pong", nil
//		}),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	listener, err := srv.ListenTCP("127.0.0.1:8391")
package server
