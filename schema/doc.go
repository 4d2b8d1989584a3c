// Package schema defines the wire types exchanged over a duplex channel:
// the verb-tagged request envelope, the reply shape expected back, and the
// error kinds surfaced to callers.
package schema
