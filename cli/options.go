package cli

import (
	"github.com/viant/duplex"
)

// CallOptions configures a single request issued from the command line.
type CallOptions struct {
	duplex.ClientOptions
	Method    string `short:"X" long:"request" description:"request method" choice:"GET" choice:"HEAD" choice:"POST" choice:"PUT" choice:"PATCH" choice:"DELETE" default:"GET"`
	Data      string `short:"d" long:"data" description:"request payload, JSON or plain text"`
	Meta      string `long:"request-config" description:"request config, JSON"`
	ConfigURL string `short:"f" long:"config" description:"client options yaml location"`
	Verbose   bool   `short:"v" long:"verbose" description:"enable debug logging"`
}

// ServeOptions configures the standalone responder.
type ServeOptions struct {
	Name         string `short:"n" long:"name" description:"server name"`
	Type         string `short:"T" long:"transport-type" description:"transport type, e.g., tcp, ws" choice:"tcp" choice:"ws"`
	Address      string `short:"A" long:"address" description:"listen address" env:"DUPLEX_ADDRESS"`
	WSURI        string `long:"ws-uri" description:"websocket endpoint path"`
	BearerSecret string `long:"bearer-secret" description:"HS256 secret guarding websocket upgrades" env:"DUPLEX_BEARER_SECRET"`
	BaseURL      string `short:"b" long:"base-url" description:"base location served by the storage handlers" env:"DUPLEX_BASE_URL"`
	AllowExec    bool   `long:"allow-exec" description:"mount the shell execution handler on POST"`
	ConfigURL    string `short:"f" long:"config" description:"server options yaml location"`
	Verbose      bool   `short:"v" long:"verbose" description:"enable debug logging"`
}

// Init applies defaults; the ws address default is left to the server.
func (o *ServeOptions) Init() {
	if o.Type == "" {
		o.Type = "tcp"
	}
	if o.Address == "" && o.Type == "tcp" {
		o.Address = "127.0.0.1:7233"
	}
	if o.BaseURL == "" {
		o.BaseURL = "."
	}
}

// merge fills unset fields from loaded.
func (o *ServeOptions) merge(loaded *ServeOptions) {
	if o.Name == "" {
		o.Name = loaded.Name
	}
	if o.Type == "" {
		o.Type = loaded.Type
	}
	if o.Address == "" {
		o.Address = loaded.Address
	}
	if o.WSURI == "" {
		o.WSURI = loaded.WSURI
	}
	if o.BearerSecret == "" {
		o.BearerSecret = loaded.BearerSecret
	}
	if o.BaseURL == "" {
		o.BaseURL = loaded.BaseURL
	}
	if !o.AllowExec {
		o.AllowExec = loaded.AllowExec
	}
}

// serverOptions maps CLI fields onto the configuration consumed by
// duplex.NewServer and duplex.Serve.
func (o *ServeOptions) serverOptions() *duplex.ServerOptions {
	return &duplex.ServerOptions{
		Name: o.Name,
		Transport: &duplex.ServerTransport{
			Type:         o.Type,
			Address:      o.Address,
			WSURI:        o.WSURI,
			BearerSecret: o.BearerSecret,
		},
	}
}

// mergeClientOptions fills unset target fields from loaded.
func mergeClientOptions(target, loaded *duplex.ClientOptions) {
	if target.Name == "" {
		target.Name = loaded.Name
	}
	if target.TimeoutMs == 0 {
		target.TimeoutMs = loaded.TimeoutMs
	}
	if target.Transport.Type == "" {
		target.Transport.Type = loaded.Transport.Type
	}
	if target.Transport.Address == "" {
		target.Transport.Address = loaded.Transport.Address
	}
	if target.Transport.URL == "" {
		target.Transport.URL = loaded.Transport.URL
	}
	if target.Transport.DialTimeoutMs == 0 {
		target.Transport.DialTimeoutMs = loaded.Transport.DialTimeoutMs
	}
	if !target.Transport.Redial {
		target.Transport.Redial = loaded.Transport.Redial
	}
	// flag parsing may leave an allocated but empty Auth behind
	if target.Auth == nil || *target.Auth == (duplex.ClientAuth{}) {
		target.Auth = loaded.Auth
	}
}
