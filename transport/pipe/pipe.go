// Package pipe provides an in-memory transport pair, primarily for tests and
// examples. Messages sent on one side are buffered and delivered to the other
// side's handler from a dispatch goroutine once that side opens.
package pipe

import (
	"context"
	"errors"
	"sync"

	"github.com/viant/duplex/transport"
)

const inboxSize = 128

var (
	// ErrClosed rejects operations on a closed side.
	ErrClosed = errors.New("pipe: closed")
	// ErrInboxFull rejects a send when the receiving side's buffer is full.
	ErrInboxFull = errors.New("pipe: peer inbox full")
	errNotOpen   = errors.New("pipe: not open")
)

// Pipe is one side of an in-memory pair. A closed side cannot be reopened.
type Pipe struct {
	peer *Pipe

	mu      sync.Mutex
	handler transport.Handler
	opened  bool
	closed  bool

	notifyMu sync.Mutex
	inbox    chan []byte
	stop     chan struct{}
}

var _ transport.Transport = (*Pipe)(nil)

// New returns the two connected sides of a pipe.
func New() (*Pipe, *Pipe) {
	a := &Pipe{inbox: make(chan []byte, inboxSize), stop: make(chan struct{})}
	b := &Pipe{inbox: make(chan []byte, inboxSize), stop: make(chan struct{})}
	a.peer, b.peer = b, a
	return a, b
}

// Open marks the side ready and starts delivering buffered inbound messages.
func (p *Pipe) Open(ctx context.Context) (transport.Transport, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrClosed
	}
	if p.opened {
		p.mu.Unlock()
		return p, nil
	}
	p.opened = true
	p.mu.Unlock()
	p.notify(func(handler transport.Handler) { handler.OnOpen() })
	go p.dispatch()
	return p, nil
}

// Send buffers data for the peer. The sending side must be open; the peer
// may open later and will receive buffered messages in order.
func (p *Pipe) Send(ctx context.Context, data []byte) error {
	p.mu.Lock()
	opened, closed := p.opened, p.closed
	p.mu.Unlock()
	if closed {
		return ErrClosed
	}
	if !opened {
		return errNotOpen
	}
	if p.peer.isClosed() {
		return ErrClosed
	}
	message := append([]byte(nil), data...)
	select {
	case p.peer.inbox <- message:
		return nil
	default:
		return ErrInboxFull
	}
}

// Subscribe registers the handler; nil detaches.
func (p *Pipe) Subscribe(handler transport.Handler) {
	p.mu.Lock()
	p.handler = handler
	p.mu.Unlock()
}

// Close shuts down both sides; each open side's handler observes a close
// notification. Closing an already-closed side is a no-op.
func (p *Pipe) Close() error {
	if !p.shutdown() {
		return nil
	}
	p.peer.shutdown()
	return nil
}

// shutdown terminates this side, reporting whether it was the call that did.
func (p *Pipe) shutdown() bool {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return false
	}
	p.closed = true
	wasOpen := p.opened
	p.opened = false
	p.mu.Unlock()
	close(p.stop)
	if wasOpen {
		p.notify(func(handler transport.Handler) { handler.OnClose() })
	}
	return true
}

func (p *Pipe) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// dispatch delivers inbound messages sequentially until the side closes.
func (p *Pipe) dispatch() {
	for {
		select {
		case <-p.stop:
			return
		case data := <-p.inbox:
			p.notify(func(handler transport.Handler) { handler.OnData(data) })
		}
	}
}

func (p *Pipe) notify(emit func(transport.Handler)) {
	p.notifyMu.Lock()
	defer p.notifyMu.Unlock()
	p.mu.Lock()
	handler := p.handler
	p.mu.Unlock()
	if handler != nil {
		emit(handler)
	}
}
