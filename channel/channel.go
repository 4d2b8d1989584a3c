package channel

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/viant/duplex/internal/collection"
	"github.com/viant/duplex/schema"
	"github.com/viant/duplex/transport"
)

// DefaultTimeout bounds each request unless overridden per channel or per call.
const DefaultTimeout = 30 * time.Second

// ErrNoTransport reports an operation that needs a bound transport when the
// channel has none, or an attempt to bind nil.
var ErrNoTransport = errors.New("channel: no transport bound")

type status uint8

const (
	statusPending status = iota
	statusSent
)

// pending ties an issued request to its wire bytes, delivery status, call and
// expiry timer. Owned exclusively by the channel.
type pending struct {
	wire   []byte
	status status
	call   *Call
	timer  *time.Timer
}

// Channel correlates verb-tagged requests with their replies over a single
// bound transport. Safe for concurrent use.
type Channel struct {
	mu        sync.Mutex
	transport transport.Transport
	table     *collection.OrderedMap[uint32, *pending]
	timeout   time.Duration
	logger    zerolog.Logger
}

// New builds a channel bound to t: it subscribes to t's lifecycle
// notifications and opens it. A nil transport is an error.
func New(t transport.Transport, options ...Option) (*Channel, error) {
	ret := &Channel{
		table:   collection.NewOrderedMap[uint32, *pending](),
		timeout: DefaultTimeout,
		logger:  zerolog.Nop(),
	}
	for _, option := range options {
		option(ret)
	}
	if err := ret.SetTransport(t); err != nil {
		return nil, err
	}
	return ret, nil
}

// Get issues a GET request.
func (c *Channel) Get(payload any, options ...CallOption) *Call {
	return c.call(schema.MethodGet, payload, options)
}

// Head issues a HEAD request.
func (c *Channel) Head(payload any, options ...CallOption) *Call {
	return c.call(schema.MethodHead, payload, options)
}

// Post issues a POST request.
func (c *Channel) Post(payload any, options ...CallOption) *Call {
	return c.call(schema.MethodPost, payload, options)
}

// Put issues a PUT request.
func (c *Channel) Put(payload any, options ...CallOption) *Call {
	return c.call(schema.MethodPut, payload, options)
}

// Patch issues a PATCH request.
func (c *Channel) Patch(payload any, options ...CallOption) *Call {
	return c.call(schema.MethodPatch, payload, options)
}

// Delete issues a DELETE request.
func (c *Channel) Delete(payload any, options ...CallOption) *Call {
	return c.call(schema.MethodDelete, payload, options)
}

func (c *Channel) call(method string, payload any, options []CallOption) *Call {
	call, err := c.Issue(method, payload, options...)
	if err != nil {
		return newRejectedCall(err)
	}
	return call
}

// Issue registers a request tagged with method, attempts to send it, arms its
// expiry timer and returns the deferred result. It errors on an unrecognized
// method or an unencodable payload; every later failure reaches the caller
// through the returned Call.
func (c *Channel) Issue(method string, payload any, options ...CallOption) (*Call, error) {
	if !schema.IsValidMethod(method) {
		return nil, fmt.Errorf("%w: %q", schema.ErrInvalidMethod, method)
	}
	opts := &callOptions{timeout: c.Timeout()}
	for _, option := range options {
		option(opts)
	}
	c.mu.Lock()
	id := c.nextIdLocked()
	envelope := &schema.Envelope{Id: id, Config: opts.config, Data: payload, Method: method}
	wire, err := envelope.Encode()
	if err != nil {
		c.mu.Unlock()
		return nil, fmt.Errorf("failed to encode envelope: %w", err)
	}
	call := newCall(envelope)
	call.onSettle = func() { c.complete(id) }
	entry := &pending{wire: wire, status: statusPending, call: call}
	c.table.Put(id, entry)
	c.flushLocked()
	timeout := opts.timeout
	entry.timer = time.AfterFunc(timeout, func() {
		if call.reject(fmt.Errorf("request %v timed out after %s: %w", id, timeout, schema.ErrTimeout)) {
			requestsTimedOut.Inc()
		}
	})
	c.mu.Unlock()
	requestsIssued.Inc()
	return call, nil
}

// nextIdLocked samples a random correlation id. Zero is reserved (it marks a
// reply with no id); a collision with a live id is re-sampled.
func (c *Channel) nextIdLocked() uint32 {
	for {
		id := rand.Uint32()
		if id == 0 {
			continue
		}
		if _, taken := c.table.Get(id); taken {
			continue
		}
		return id
	}
}

// Timeout returns the timeout applied to requests issued from now on.
func (c *Channel) Timeout() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timeout
}

// SetTimeout changes the timeout for requests issued afterwards; timers
// already armed keep their original duration.
func (c *Channel) SetTimeout(timeout time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.timeout = timeout
}

// Transport returns the currently bound transport, nil after Close.
func (c *Channel) Transport() transport.Transport {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transport
}

// SetTransport binds t, disposing any previously bound transport first. The
// channel subscribes to t before opening it and retains the opened handle
// returned by Open, which may differ from t.
func (c *Channel) SetTransport(t transport.Transport) error {
	if t == nil {
		return ErrNoTransport
	}
	c.mu.Lock()
	if previous := c.transport; previous != nil {
		previous.Subscribe(nil)
		if err := previous.Close(); err != nil {
			c.logger.Warn().Err(err).Msg("failed to close previous transport")
		}
		// the detached transport will not deliver its close notification;
		// revert sent entries here so the next open re-sends them
		c.revertSentLocked()
	}
	c.transport = t
	c.mu.Unlock()

	t.Subscribe(c)
	opened, err := t.Open(context.Background())
	if err != nil {
		return fmt.Errorf("failed to open transport: %w", err)
	}
	if opened != nil && opened != t {
		c.mu.Lock()
		c.transport = opened
		c.mu.Unlock()
	}
	return nil
}

// Close disposes the bound transport and clears it; no further sends happen
// until a new transport is bound. Outstanding requests stay in the table and
// fail through their own timers. Closing an unbound channel is an error.
func (c *Channel) Close() error {
	c.mu.Lock()
	t := c.transport
	c.transport = nil
	if t != nil {
		c.revertSentLocked()
	}
	c.mu.Unlock()
	if t == nil {
		return ErrNoTransport
	}
	t.Subscribe(nil)
	return t.Close()
}

// flushLocked sends every pending entry in insertion order and flips it to
// sent. Sent entries are never re-sent here; a failed send keeps the entry
// pending for the next flush. Caller holds c.mu.
func (c *Channel) flushLocked() {
	if c.transport == nil {
		return
	}
	c.table.Range(func(id uint32, entry *pending) bool {
		if entry.status != statusPending {
			return true
		}
		if err := c.transport.Send(context.Background(), entry.wire); err != nil {
			c.logger.Warn().Err(err).Uint32("id", id).Msg("send failed, keeping request pending")
			return true
		}
		entry.status = statusSent
		return true
	})
}

// revertSentLocked flips sent entries back to pending. Caller holds c.mu.
func (c *Channel) revertSentLocked() {
	c.table.Range(func(id uint32, entry *pending) bool {
		if entry.status == statusSent {
			entry.status = statusPending
		}
		return true
	})
}

// complete removes the request from the table and stops its timer; a no-op
// when the entry is already gone.
func (c *Channel) complete(id uint32) {
	c.mu.Lock()
	entry, ok := c.table.Get(id)
	if ok {
		c.table.Delete(id)
	}
	c.mu.Unlock()
	if ok && entry.timer != nil {
		entry.timer.Stop()
	}
}

// outstanding reports the number of unsettled requests.
func (c *Channel) outstanding() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.table.Len()
}
