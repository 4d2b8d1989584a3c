// Package duplex turns an asynchronous, unreliable, bidirectional transport
// into verb-tagged request/response calls.
//
// The package glues the correlation layer in channel with concrete
// transports (framed TCP, WebSocket, in-process pipes) and convenience
// configuration structures. In practice it is used as an umbrella package
// that exposes two primary entry points:
//  1. NewClient – returns a caller channel bound to a configured transport and
//  2. NewServer – returns a responder that routes requests to handlers.
//
// Both constructors accept option structures that can be populated from CLI
// flags or configuration files, making it straightforward to spin up a
// caller/responder pair over TCP or WebSocket with bearer-token protection.
//
// Example:
//
//	srv, _ := duplex.NewServer(handlers, &duplex.ServerOptions{ /* … */ })
//	cli, _ := duplex.NewClient(&duplex.ClientOptions{ /* … */ })
package duplex
