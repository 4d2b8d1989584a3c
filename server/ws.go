package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
)

// WS returns an HTTP handler that upgrades requests to WebSocket sessions.
// When bearer auth is configured the upgrade is refused with 401 unless the
// request carries a valid token.
func (s *Server) WS() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := s.authorize(r); err != nil {
			authDenied.Inc()
			s.logger.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("rejecting websocket upgrade")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		conn, err := s.upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade has already written the error response.
			s.logger.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("websocket upgrade failed")
			return
		}
		s.serveWS(r, conn)
	})
}

func (s *Server) serveWS(r *http.Request, conn *websocket.Conn) {
	defer conn.Close()
	sess := s.register("ws", conn.RemoteAddr().String(),
		func(data []byte) error { return conn.WriteMessage(websocket.TextMessage, data) },
		conn.Close)
	defer s.unregister(sess)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
				sess.logger.Debug().Err(err).Msg("read failed")
			}
			return
		}
		go s.handle(r.Context(), sess, data)
	}
}

func (s *Server) authorize(r *http.Request) error {
	if len(s.jwtSecret) == 0 {
		return nil
	}
	raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return errors.New("server: missing bearer token")
	}
	token, err := jwt.Parse(raw, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return fmt.Errorf("server: token rejected: %w", err)
	}
	if !token.Valid {
		return errors.New("server: token invalid")
	}
	return nil
}
