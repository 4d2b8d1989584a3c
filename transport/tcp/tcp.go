// Package tcp implements the duplex transport contract over a TCP connection
// carrying length-prefixed frames. A reader goroutine delivers inbound frames
// and connection state changes to the subscribed handler; an optional redial
// mode re-establishes dropped connections with capped exponential backoff,
// surfacing each drop and recovery as close and open notifications.
package tcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/viant/duplex/transport"
)

const (
	defaultDialTimeout = 10 * time.Second
	redialMinBackoff   = 100 * time.Millisecond
	redialMaxBackoff   = 5 * time.Second
)

// ErrClosed rejects operations on a closed transport.
var ErrClosed = errors.New("tcp: transport closed")

var errNotConnected = errors.New("tcp: not connected")

// Transport carries frames over a single TCP connection. A closed transport
// cannot be reopened.
type Transport struct {
	address     string
	dialTimeout time.Duration
	redial      bool
	logger      zerolog.Logger

	mu      sync.Mutex
	conn    net.Conn
	handler transport.Handler
	closed  bool

	writeMu  sync.Mutex
	notifyMu sync.Mutex
}

var _ transport.Transport = (*Transport)(nil)

// New builds a transport for address without connecting; Open dials.
func New(address string, options ...Option) *Transport {
	ret := &Transport{
		address:     address,
		dialTimeout: defaultDialTimeout,
		logger:      zerolog.Nop(),
	}
	for _, option := range options {
		option(ret)
	}
	return ret
}

// Open dials the address, announces the connection to the subscribed handler
// and starts the frame reader. Opening an already-open transport is a no-op.
func (t *Transport) Open(ctx context.Context) (transport.Transport, error) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil, ErrClosed
	}
	if t.conn != nil {
		t.mu.Unlock()
		return t, nil
	}
	t.mu.Unlock()

	conn, err := t.dial(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %v: %w", t.address, err)
	}
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		_ = conn.Close()
		return nil, ErrClosed
	}
	t.conn = conn
	t.mu.Unlock()

	t.notifyOpen()
	go t.read(conn)
	return t, nil
}

func (t *Transport) dial(ctx context.Context) (net.Conn, error) {
	dialer := &net.Dialer{Timeout: t.dialTimeout}
	return dialer.DialContext(ctx, "tcp", t.address)
}

// Send writes one frame. A ctx deadline bounds the write.
func (t *Transport) Send(ctx context.Context, data []byte) error {
	t.mu.Lock()
	conn := t.conn
	closed := t.closed
	t.mu.Unlock()
	if closed {
		return ErrClosed
	}
	if conn == nil {
		return errNotConnected
	}
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetWriteDeadline(deadline)
		defer conn.SetWriteDeadline(time.Time{})
	}
	return WriteFrame(conn, data)
}

// Subscribe registers the handler; nil detaches.
func (t *Transport) Subscribe(handler transport.Handler) {
	t.mu.Lock()
	t.handler = handler
	t.mu.Unlock()
}

// Close terminates the connection and any redial attempts, notifying the
// handler. Closing again is a no-op.
func (t *Transport) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	conn := t.conn
	t.conn = nil
	t.mu.Unlock()
	var err error
	if conn != nil {
		err = conn.Close()
		t.notifyClose()
	}
	return err
}

// read delivers inbound frames until the connection fails.
func (t *Transport) read(conn net.Conn) {
	for {
		data, err := ReadFrame(conn)
		if err != nil {
			t.readFailed(conn, err)
			return
		}
		t.notifyData(data)
	}
}

// readFailed classifies a reader exit: a peer disconnect surfaces as close, a
// protocol or I/O fault as error followed by close. Local Close has already
// notified, so the reader leaves silently.
func (t *Transport) readFailed(conn net.Conn, err error) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	if t.conn == conn {
		t.conn = nil
	}
	redial := t.redial
	t.mu.Unlock()

	_ = conn.Close()
	if isDisconnect(err) {
		t.logger.Debug().Err(err).Str("address", t.address).Msg("connection closed by peer")
	} else {
		t.logger.Warn().Err(err).Str("address", t.address).Msg("connection failed")
		t.notifyError(err)
	}
	t.notifyClose()

	if redial {
		go t.redialLoop()
	}
}

func isDisconnect(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, net.ErrClosed)
}

// redialLoop re-establishes the connection with capped exponential backoff
// until it succeeds or the transport closes.
func (t *Transport) redialLoop() {
	backoff := redialMinBackoff
	for {
		if t.isClosed() {
			return
		}
		time.Sleep(backoff)
		if backoff < redialMaxBackoff {
			backoff *= 2
			if backoff > redialMaxBackoff {
				backoff = redialMaxBackoff
			}
		}
		conn, err := t.dial(context.Background())
		if err != nil {
			t.logger.Warn().Err(err).Str("address", t.address).Msg("redial failed")
			continue
		}
		t.mu.Lock()
		if t.closed {
			t.mu.Unlock()
			_ = conn.Close()
			return
		}
		t.conn = conn
		t.mu.Unlock()
		t.logger.Info().Str("address", t.address).Msg("reconnected")
		t.notifyOpen()
		go t.read(conn)
		return
	}
}

func (t *Transport) isClosed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

func (t *Transport) notifyOpen() {
	t.notify(func(handler transport.Handler) { handler.OnOpen() })
}

func (t *Transport) notifyClose() {
	t.notify(func(handler transport.Handler) { handler.OnClose() })
}

func (t *Transport) notifyError(err error) {
	t.notify(func(handler transport.Handler) { handler.OnError(err) })
}

func (t *Transport) notifyData(data []byte) {
	t.notify(func(handler transport.Handler) { handler.OnData(data) })
}

// notify serializes handler callbacks so they are never delivered concurrently.
func (t *Transport) notify(emit func(transport.Handler)) {
	t.notifyMu.Lock()
	defer t.notifyMu.Unlock()
	t.mu.Lock()
	handler := t.handler
	t.mu.Unlock()
	if handler != nil {
		emit(handler)
	}
}
