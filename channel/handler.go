package channel

import (
	"fmt"

	"github.com/viant/duplex/schema"
	"github.com/viant/duplex/transport"
)

// The channel is the handler for its own transport's notifications; external
// event sources may drive these directly.
var _ transport.Handler = (*Channel)(nil)

// OnOpen flushes everything still pending, including requests reverted from
// sent during a prior disconnect.
func (c *Channel) OnOpen() {
	c.mu.Lock()
	c.flushLocked()
	c.mu.Unlock()
}

// OnClose reverts sent entries to pending so the next open re-sends them.
// Nothing settles; timers keep running, so a stalled reconnect still times
// requests out.
func (c *Channel) OnClose() {
	c.mu.Lock()
	c.revertSentLocked()
	c.mu.Unlock()
}

// OnError rejects every outstanding request regardless of status, in
// insertion order, leaving the table empty.
func (c *Channel) OnError(err error) {
	c.mu.Lock()
	entries := c.table.Values()
	c.mu.Unlock()
	cause := error(schema.ErrTransport)
	if err != nil {
		cause = fmt.Errorf("%w: %v", schema.ErrTransport, err)
	}
	for _, entry := range entries {
		if entry.call.reject(cause) {
			requestsRejected.Inc()
		}
	}
}

// OnData resolves the request matching the reply's id with the full raw
// payload. Malformed payloads are logged and dropped; replies matching no
// live request are dropped silently.
func (c *Channel) OnData(data []byte) {
	reply, err := schema.DecodeReply(data)
	if err != nil {
		repliesMalformed.Inc()
		c.logger.Warn().Err(err).Int("size", len(data)).Msg("dropping malformed reply")
		return
	}
	c.mu.Lock()
	entry, ok := c.table.Get(reply.Id)
	c.mu.Unlock()
	if !ok {
		repliesUnmatched.Inc()
		c.logger.Debug().Uint32("id", reply.Id).Msg("dropping unmatched reply")
		return
	}
	if entry.call.resolve(reply.Raw) {
		requestsResolved.Inc()
	}
}
