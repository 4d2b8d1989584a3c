package server

import (
	"context"

	"github.com/viant/duplex/transport"
)

// transportSession bridges transport events into a server session.
type transportSession struct {
	server *Server
	sess   *session
}

var _ transport.Handler = (*transportSession)(nil)

func (a *transportSession) OnOpen() {}

func (a *transportSession) OnClose() {
	a.server.unregister(a.sess)
}

func (a *transportSession) OnError(err error) {
	a.sess.logger.Warn().Err(err).Msg("transport error")
}

func (a *transportSession) OnData(data []byte) {
	go a.server.handle(context.Background(), a.sess, data)
}

// Attach serves requests arriving on t, replying on the same transport. It
// opens t and returns once the subscription is in place; the session lasts
// until the transport closes.
func (s *Server) Attach(ctx context.Context, t transport.Transport) error {
	sess := s.register("transport", "",
		func(data []byte) error { return t.Send(context.Background(), data) },
		t.Close)
	t.Subscribe(&transportSession{server: s, sess: sess})
	if _, err := t.Open(ctx); err != nil {
		s.unregister(sess)
		t.Subscribe(nil)
		return err
	}
	return nil
}
