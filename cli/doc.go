// Package cli implements the duplex command line tools. The duplex binary
// issues a single request against a responder and prints the reply value;
// the duplexd binary serves the bundled storage handlers (and optionally
// shell execution) over TCP or WebSocket.
//
// Both tools read .env files before parsing flags and accept a yaml options
// document from any afs-supported location via -f.
package cli
