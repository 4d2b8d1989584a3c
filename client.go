package duplex

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2/clientcredentials"

	"github.com/viant/duplex/channel"
	"github.com/viant/duplex/transport"
	"github.com/viant/duplex/transport/tcp"
	"github.com/viant/duplex/transport/ws"
)

// ClientOptions
//
// defines options for configuring a duplex caller.
type ClientOptions struct {
	Name      string          `yaml:"name" json:"name,omitempty"  short:"n" long:"name" description:"client name"`
	TimeoutMs int             `yaml:"timeoutMs,omitempty" json:"timeoutMs,omitempty"  short:"m" long:"timeout-ms" description:"default request timeout in milliseconds"`
	Transport ClientTransport `yaml:"transport,omitempty" json:"transport,omitempty"  short:"t" long:"transport" description:"transport options"`
	Auth      *ClientAuth     `yaml:"auth,omitempty" json:"auth,omitempty"  short:"a" long:"auth" description:"auth options"`
}

// ClientAuth defines authentication options for a duplex caller; tokens are
// attached to WebSocket upgrades only.
type ClientAuth struct {
	BearerToken  string `yaml:"bearerToken,omitempty" json:"bearerToken,omitempty"  long:"bearer-token" description:"static bearer token"`
	TokenURL     string `yaml:"tokenURL,omitempty" json:"tokenURL,omitempty"  long:"token-url" description:"oauth2 client credentials token URL"`
	ClientID     string `yaml:"clientID,omitempty" json:"clientID,omitempty"  long:"client-id" description:"oauth2 client id"`
	ClientSecret string `yaml:"clientSecret,omitempty" json:"clientSecret,omitempty"  long:"client-secret" description:"oauth2 client secret"`
}

// ClientTransport defines transport options for a duplex caller.
type ClientTransport struct {
	Type          string `yaml:"type" json:"type"  short:"T" long:"transport-type" description:"transport type, e.g., tcp, ws" choice:"tcp" choice:"ws"`
	Address       string `yaml:"address,omitempty" json:"address,omitempty"  short:"A" long:"address" description:"tcp host:port"`
	URL           string `yaml:"url,omitempty" json:"url,omitempty"  short:"u" long:"url" description:"websocket url"`
	DialTimeoutMs int    `yaml:"dialTimeoutMs,omitempty" json:"dialTimeoutMs,omitempty"  long:"dial-timeout-ms" description:"dial timeout in milliseconds"`
	Redial        bool   `yaml:"redial,omitempty" json:"redial,omitempty"  long:"redial" description:"redial tcp after a lost connection"`
}

func (c *ClientOptions) Init() {
	if c.Name == "" {
		c.Name = "duplex"
	}
}

// NewClient creates a caller channel with the transport configured via
// ClientOptions. The transport is opened before the channel is returned.
func NewClient(options *ClientOptions, channelOptions ...channel.Option) (*channel.Channel, error) {
	options.Init()
	t, err := options.getTransport(context.Background())
	if err != nil {
		return nil, err
	}
	var opts []channel.Option
	if options.TimeoutMs > 0 {
		opts = append(opts, channel.WithTimeout(time.Duration(options.TimeoutMs)*time.Millisecond))
	}
	opts = append(opts, channelOptions...)
	return channel.New(t, opts...)
}

// getTransport constructs a transport based on ClientOptions.Transport and
// authentication settings.
func (c *ClientOptions) getTransport(ctx context.Context) (transport.Transport, error) {
	switch c.Transport.Type {
	case "tcp":
		if c.Transport.Address == "" {
			return nil, fmt.Errorf("address is required for tcp transport")
		}
		var opts []tcp.Option
		if c.Transport.DialTimeoutMs > 0 {
			opts = append(opts, tcp.WithDialTimeout(time.Duration(c.Transport.DialTimeoutMs)*time.Millisecond))
		}
		if c.Transport.Redial {
			opts = append(opts, tcp.WithRedial())
		}
		return tcp.New(c.Transport.Address, opts...), nil
	case "ws":
		if c.Transport.URL == "" {
			return nil, fmt.Errorf("URL is required for ws transport")
		}
		token, err := c.Auth.token(ctx)
		if err != nil {
			return nil, err
		}
		var opts []ws.Option
		if token != "" {
			opts = append(opts, ws.WithBearerToken(token))
		}
		return ws.New(c.Transport.URL, opts...), nil
	default:
		return nil, fmt.Errorf("no transport configured")
	}
}

// token resolves a bearer token, fetching one through the OAuth2 client
// credentials flow when a token URL is configured.
func (a *ClientAuth) token(ctx context.Context) (string, error) {
	if a == nil {
		return "", nil
	}
	if a.BearerToken != "" {
		return a.BearerToken, nil
	}
	if a.TokenURL == "" {
		return "", nil
	}
	cfg := clientcredentials.Config{
		ClientID:     a.ClientID,
		ClientSecret: a.ClientSecret,
		TokenURL:     a.TokenURL,
	}
	token, err := cfg.Token(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to fetch oauth2 token: %w", err)
	}
	return token.AccessToken, nil
}
