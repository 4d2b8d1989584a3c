package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/viant/duplex/transport/tcp"
)

// Serve accepts length-prefixed TCP connections on listener until it is
// closed. A closed listener is a clean stop and returns nil.
func (s *Server) Serve(listener net.Listener) error {
	s.logger.Info().Str("name", s.name).Str("address", listener.Addr().String()).Msg("serving tcp")
	for {
		conn, err := listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("server: accept failed: %w", err)
		}
		go s.serveConn(conn)
	}
}

// ListenTCP starts serving on address in a background goroutine and returns
// the listener; closing it stops the server loop.
func (s *Server) ListenTCP(address string) (net.Listener, error) {
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("server: listen on %v failed: %w", address, err)
	}
	go func() {
		if err := s.Serve(listener); err != nil {
			s.logger.Error().Err(err).Msg("tcp serve stopped")
		}
	}()
	return listener, nil
}

func (s *Server) serveConn(conn net.Conn) {
	defer conn.Close()
	sess := s.register("tcp", conn.RemoteAddr().String(),
		func(data []byte) error { return tcp.WriteFrame(conn, data) },
		conn.Close)
	defer s.unregister(sess)
	for {
		data, err := tcp.ReadFrame(conn)
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, net.ErrClosed) {
				sess.logger.Warn().Err(err).Msg("read failed")
			}
			return
		}
		go s.handle(context.Background(), sess, data)
	}
}
