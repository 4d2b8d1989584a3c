// Package example contains self-contained snippets and integration tests
// that demonstrate how to wire a duplex caller and responder together.
//
// The tests run the bundled storage and exec services end to end over an
// in-process pipe and over TCP; the snippets show the minimal setup.
package example
