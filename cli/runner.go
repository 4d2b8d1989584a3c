package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jessevdk/go-flags"
	"github.com/viant/duplex"
	"github.com/viant/duplex/channel"
	"github.com/viant/duplex/schema"
	"github.com/viant/duplex/server"
	"github.com/viant/duplex/service/exec"
	"github.com/viant/duplex/service/fs"
)

// RunCall issues one request against a responder and prints the reply value
// as indented JSON. A reply carrying an error becomes a non-zero exit.
func RunCall(args []string) error {
	loadEnv()
	options := &CallOptions{}
	if _, err := flags.ParseArgs(options, args); err != nil {
		return err
	}
	ctx := context.Background()
	if options.ConfigURL != "" {
		loaded := &duplex.ClientOptions{}
		if err := decodeConfig(ctx, options.ConfigURL, loaded); err != nil {
			return err
		}
		mergeClientOptions(&options.ClientOptions, loaded)
	}
	logger := newLogger("duplex", options.Verbose)

	cli, err := duplex.NewClient(&options.ClientOptions, channel.WithLogger(logger))
	if err != nil {
		return err
	}
	defer cli.Close()

	var callOptions []channel.CallOption
	if options.Meta != "" {
		callOptions = append(callOptions, channel.WithConfig(rawPayload(options.Meta)))
	}
	call, err := cli.Issue(options.Method, rawPayload(options.Data), callOptions...)
	if err != nil {
		return err
	}
	raw, err := call.Await(ctx)
	if err != nil {
		return err
	}
	response := &schema.Response{}
	if err := json.Unmarshal(raw, response); err != nil {
		return fmt.Errorf("malformed reply: %w", err)
	}
	if response.Error != "" {
		return errors.New(response.Error)
	}
	output, err := json.MarshalIndent(response.Value, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(output))
	return nil
}

// RunServe starts a responder serving the storage handlers, plus shell
// execution when enabled, and blocks until the listener stops.
func RunServe(args []string) error {
	loadEnv()
	options := &ServeOptions{}
	if _, err := flags.ParseArgs(options, args); err != nil {
		return err
	}
	ctx := context.Background()
	if options.ConfigURL != "" {
		loaded := &ServeOptions{}
		if err := decodeConfig(ctx, options.ConfigURL, loaded); err != nil {
			return err
		}
		options.merge(loaded)
	}
	options.Init()
	logger := newLogger("duplexd", options.Verbose)

	handlers := fs.New(&fs.Config{BaseURL: options.BaseURL}).Handlers()
	if options.AllowExec {
		execService, err := exec.New(ctx)
		if err != nil {
			return err
		}
		for method, handler := range execService.Handlers() {
			handlers[method] = handler
		}
	}
	srv, err := duplex.NewServer(handlers, options.serverOptions(), server.WithLogger(logger))
	if err != nil {
		return err
	}
	logger.Info().
		Str("transport", options.Type).
		Str("address", options.Address).
		Str("base", options.BaseURL).
		Bool("exec", options.AllowExec).
		Msg("starting")
	return duplex.Serve(ctx, srv, options.serverOptions())
}

// rawPayload treats data as JSON when it parses and plain text otherwise.
func rawPayload(data string) any {
	if data == "" {
		return nil
	}
	raw := json.RawMessage(data)
	if json.Valid(raw) {
		return raw
	}
	return data
}
