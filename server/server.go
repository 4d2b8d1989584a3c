package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/rs/zerolog"
	"github.com/viant/duplex/schema"
)

// HandlerFunc answers a single request. The returned value travels back to
// the caller in the reply's value field; a non-nil error travels in the
// reply's error field instead.
type HandlerFunc func(ctx context.Context, request *schema.Request) (any, error)

// Server routes inbound request envelopes to handlers registered per method
// and writes back id-correlated replies. All exported methods are safe for
// concurrent use.
type Server struct {
	name      string
	logger    zerolog.Logger
	upgrader  websocket.Upgrader
	jwtSecret []byte

	addr           string
	wsURI          string
	metricsURI     string
	customHandlers map[string]http.HandlerFunc

	mu       sync.RWMutex
	handlers map[string]HandlerFunc

	sessions *xsync.MapOf[string, *session]
}

// New creates a server with the supplied options.
func New(options ...Option) (*Server, error) {
	ret := &Server{
		name:     "duplex",
		logger:   zerolog.Nop(),
		handlers: map[string]HandlerFunc{},
		sessions: xsync.NewMapOf[string, *session](),
	}
	for _, option := range options {
		if err := option(ret); err != nil {
			return nil, err
		}
	}
	return ret, nil
}

// Handle registers handler for the given method, replacing any previous
// registration. Only the methods listed by schema.Methods can ever match
// an inbound request.
func (s *Server) Handle(method string, handler HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[method] = handler
}

func (s *Server) handlerFor(method string) (HandlerFunc, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	handler, ok := s.handlers[method]
	return handler, ok
}

// handle decodes one inbound envelope, runs the matching handler and writes
// the correlated reply back on the originating session.
func (s *Server) handle(ctx context.Context, sess *session, data []byte) {
	request, err := schema.DecodeRequest(data)
	if err != nil {
		requestsMalformed.Inc()
		sess.logger.Warn().Err(err).Msg("dropping malformed request")
		return
	}
	if request.Id == 0 {
		requestsMalformed.Inc()
		sess.logger.Warn().Msg("dropping request without id")
		return
	}
	response := &schema.Response{Id: request.Id}
	if handler, ok := s.handlerFor(request.Method); ok {
		value, err := handler(ctx, request)
		if err != nil {
			requestsFailed.Inc()
			response.Error = err.Error()
		} else {
			response.Value = value
		}
	} else {
		requestsFailed.Inc()
		response.Error = fmt.Sprintf("no handler for method %v", request.Method)
	}
	requestsHandled.Inc()
	if err := sess.reply(response); err != nil {
		sess.logger.Warn().Err(err).Uint32("id", request.Id).Msg("failed to write reply")
	}
}

// register tracks a new session and returns it.
func (s *Server) register(kind, remote string, write func(data []byte) error, close func() error) *session {
	sess := &session{
		id:     uuid.NewString(),
		kind:   kind,
		remote: remote,
		write:  write,
		close:  close,
	}
	sess.logger = s.logger.With().Str("session", sess.id).Str("transport", kind).Logger()
	s.sessions.Store(sess.id, sess)
	sessionsOpened.Inc()
	sessionsActive.Inc()
	sess.logger.Debug().Str("remote", remote).Msg("session opened")
	return sess
}

func (s *Server) unregister(sess *session) {
	if _, ok := s.sessions.LoadAndDelete(sess.id); !ok {
		return
	}
	sessionsActive.Dec()
	sess.logger.Debug().Msg("session closed")
}

// Sessions returns the number of currently attached sessions.
func (s *Server) Sessions() int {
	return s.sessions.Size()
}

// Shutdown closes every attached session. Listeners handed out by
// ListenTCP are owned by the caller and have to be closed separately.
func (s *Server) Shutdown() {
	s.sessions.Range(func(_ string, sess *session) bool {
		if err := sess.shutdown(); err != nil {
			sess.logger.Debug().Err(err).Msg("session close failed")
		}
		return true
	})
}
