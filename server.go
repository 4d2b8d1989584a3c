package duplex

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/viant/duplex/server"
)

// ServerOptions defines options for configuring a duplex responder.
type ServerOptions struct {
	Name      string           `yaml:"name" json:"name"  short:"n" long:"name" description:"server name"`
	Transport *ServerTransport `yaml:"transport" json:"transport"`
}

// ServerTransport defines listener options for a duplex responder.
type ServerTransport struct {
	Type           string                      `yaml:"type" json:"type"  short:"T" long:"transport-type" description:"transport type, e.g., tcp, ws" choice:"tcp" choice:"ws"`
	Address        string                      `yaml:"address" json:"address"  short:"A" long:"address" description:"listen address"`
	WSURI          string                      `yaml:"wsURI,omitempty" json:"wsURI,omitempty"  long:"ws-uri" description:"websocket endpoint path"`
	BearerSecret   string                      `yaml:"bearerSecret,omitempty" json:"bearerSecret,omitempty"  long:"bearer-secret" description:"HS256 secret guarding websocket upgrades"`
	CustomHandlers map[string]http.HandlerFunc `yaml:"-" json:"-"`
}

// NewServer creates a responder routing each wire method to its handler.
func NewServer(handlers map[string]server.HandlerFunc, options *ServerOptions, extra ...server.Option) (*server.Server, error) {
	if len(handlers) == 0 {
		return nil, fmt.Errorf("no handlers specified")
	}
	var serverOptions []server.Option
	for method, handler := range handlers {
		serverOptions = append(serverOptions, server.WithHandler(method, handler))
	}
	if options != nil {
		if options.Name != "" {
			serverOptions = append(serverOptions, server.WithName(options.Name))
		}
		if transportOptions := options.Transport; transportOptions != nil {
			if transportOptions.BearerSecret != "" {
				serverOptions = append(serverOptions, server.WithBearerAuth(transportOptions.BearerSecret))
			}
			if transportOptions.WSURI != "" {
				serverOptions = append(serverOptions, server.WithWSURI(transportOptions.WSURI))
			}
			if transportOptions.Address != "" {
				serverOptions = append(serverOptions, server.WithEndpointAddress(transportOptions.Address))
			}
			for path, handler := range transportOptions.CustomHandlers {
				serverOptions = append(serverOptions, server.WithCustomHTTPHandler(path, handler))
			}
		}
	}
	serverOptions = append(serverOptions, extra...)
	return server.New(serverOptions...)
}

// Serve starts the listener configured in options and blocks until it stops.
func Serve(ctx context.Context, srv *server.Server, options *ServerOptions) error {
	if options == nil || options.Transport == nil {
		return fmt.Errorf("no transport configured")
	}
	transportOptions := options.Transport
	switch transportOptions.Type {
	case "tcp":
		if transportOptions.Address == "" {
			return fmt.Errorf("address is required for tcp transport")
		}
		listener, err := net.Listen("tcp", transportOptions.Address)
		if err != nil {
			return err
		}
		return srv.Serve(listener)
	case "ws":
		return srv.HTTP(ctx, transportOptions.Address).ListenAndServe()
	default:
		return fmt.Errorf("no transport configured")
	}
}
