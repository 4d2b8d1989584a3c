package channel

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/viant/duplex/schema"
)

// Call is the deferred result of an issued request. It settles exactly once:
// resolved with the raw reply payload, rejected with an error, or cancelled.
// On settlement an on-settle hook runs once, removing the request from the
// channel's pending table and stopping its expiry timer.
type Call struct {
	envelope *schema.Envelope

	mu       sync.Mutex
	settled  bool
	result   json.RawMessage
	err      error
	done     chan struct{}
	onSettle func()
}

func newCall(envelope *schema.Envelope) *Call {
	return &Call{envelope: envelope, done: make(chan struct{})}
}

// newRejectedCall builds an already-settled Call carrying err, used when a
// request fails before it can be registered.
func newRejectedCall(err error) *Call {
	call := &Call{done: make(chan struct{}), settled: true, err: err}
	close(call.done)
	return call
}

// settle records the terminal state. The first caller wins; later attempts
// are no-ops. The on-settle hook runs outside the call lock so it can
// re-enter the channel.
func (c *Call) settle(result json.RawMessage, err error) bool {
	c.mu.Lock()
	if c.settled {
		c.mu.Unlock()
		return false
	}
	c.settled = true
	c.result = result
	c.err = err
	hook := c.onSettle
	c.mu.Unlock()
	close(c.done)
	if hook != nil {
		hook()
	}
	return true
}

func (c *Call) resolve(result json.RawMessage) bool {
	return c.settle(result, nil)
}

func (c *Call) reject(err error) bool {
	return c.settle(nil, err)
}

// Done returns a channel closed when the call settles.
func (c *Call) Done() <-chan struct{} {
	return c.done
}

// Result returns the settled outcome. Before settlement both returns are
// nil; wait on Done or use Await.
func (c *Call) Result() (json.RawMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result, c.err
}

// Await blocks until the call settles or ctx ends. A ctx failure only stops
// the wait; use Cancel to withdraw the request itself.
func (c *Call) Await(ctx context.Context) (json.RawMessage, error) {
	select {
	case <-c.done:
		return c.Result()
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Cancel withdraws the request. A no-op when the call already settled.
func (c *Call) Cancel() {
	c.reject(schema.ErrCancelled)
}

// Envelope returns the request envelope, nil when the call was rejected
// before issue.
func (c *Call) Envelope() *schema.Envelope {
	return c.envelope
}
