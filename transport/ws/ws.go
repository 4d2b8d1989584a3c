// Package ws implements the duplex transport contract over a WebSocket
// connection, mirroring the browser-side channel this layer originated with.
// Messages are text frames carrying one JSON document each. Dial headers can
// inject credentials, typically a bearer token for a guarded endpoint.
package ws

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/viant/duplex/transport"
)

const closeGracePeriod = time.Second

// ErrClosed rejects operations on a closed transport.
var ErrClosed = errors.New("ws: transport closed")

var errNotConnected = errors.New("ws: not connected")

// Transport carries messages over a single WebSocket connection. A closed
// transport cannot be reopened.
type Transport struct {
	url    string
	header http.Header
	dialer *websocket.Dialer
	logger zerolog.Logger

	mu      sync.Mutex
	conn    *websocket.Conn
	handler transport.Handler
	closed  bool

	writeMu  sync.Mutex
	notifyMu sync.Mutex
}

var _ transport.Transport = (*Transport)(nil)

// New builds a transport for url (ws:// or wss://) without connecting.
func New(url string, options ...Option) *Transport {
	ret := &Transport{
		url:    url,
		header: http.Header{},
		dialer: websocket.DefaultDialer,
		logger: zerolog.Nop(),
	}
	for _, option := range options {
		option(ret)
	}
	return ret
}

// Open dials the endpoint, announces the connection to the subscribed
// handler and starts the message reader. Opening an already-open transport
// is a no-op.
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

	conn, response, err := t.dialer.DialContext(ctx, t.url, t.header)
	if err != nil {
		if response != nil {
			return nil, fmt.Errorf("failed to dial %v (status %v): %w", t.url, response.StatusCode, err)
		}
		return nil, fmt.Errorf("failed to dial %v: %w", t.url, err)
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

// Send writes one text message.
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
	return conn.WriteMessage(websocket.TextMessage, data)
}

// Subscribe registers the handler; nil detaches.
func (t *Transport) Subscribe(handler transport.Handler) {
	t.mu.Lock()
	t.handler = handler
	t.mu.Unlock()
}

// Close sends a best-effort close frame, terminates the connection and
// notifies the handler. Closing again is a no-op.
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
	if conn == nil {
		return nil
	}
	message := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = conn.WriteControl(websocket.CloseMessage, message, time.Now().Add(closeGracePeriod))
	err := conn.Close()
	t.notifyClose()
	return err
}

// read delivers inbound messages until the connection fails.
func (t *Transport) read(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.readFailed(conn, err)
			return
		}
		t.notifyData(data)
	}
}

// readFailed classifies a reader exit: a peer disconnect surfaces as close, a
// protocol fault as error followed by close. Local Close has already
// notified, so the reader leaves silently.
func (t *Transport) readFailed(conn *websocket.Conn, err error) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	if t.conn == conn {
		t.conn = nil
	}
	t.mu.Unlock()

	_ = conn.Close()
	if isDisconnect(err) {
		t.logger.Debug().Err(err).Str("url", t.url).Msg("connection closed by peer")
	} else {
		t.logger.Warn().Err(err).Str("url", t.url).Msg("connection failed")
		t.notifyError(err)
	}
	t.notifyClose()
}

func isDisconnect(err error) bool {
	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway,
		websocket.CloseNoStatusReceived, websocket.CloseAbnormalClosure) {
		return true
	}
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, net.ErrClosed)
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
