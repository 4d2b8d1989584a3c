package example

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/duplex"
	"github.com/viant/duplex/channel"
	"github.com/viant/duplex/schema"
	"github.com/viant/duplex/server"
	"github.com/viant/duplex/service/exec"
	"github.com/viant/duplex/service/fs"
	"github.com/viant/duplex/transport/pipe"
)

// Usage_Example shows the minimal caller/responder wiring over a pipe.
func Usage_Example() {
	left, right := pipe.New()
	srv, err := server.New(server.WithHandler(schema.MethodGet,
		func(_ context.Context, _ *schema.Request) (any, error) {
			return "hello, world", nil
		}))
	if err != nil {
		log.Fatal(err)
	}
	if err := srv.Attach(context.Background(), right); err != nil {
		log.Fatal(err)
	}

	ch, err := channel.New(left)
	if err != nil {
		log.Fatal(err)
	}
	defer ch.Close()

	raw, err := ch.Get(nil).Await(context.Background())
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(string(raw))
}

func await(t *testing.T, call *channel.Call) *schema.Response {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	raw, err := call.Await(ctx)
	require.NoError(t, err)
	response := &schema.Response{}
	require.NoError(t, json.Unmarshal(raw, response))
	return response
}

func TestFileService_Pipe(t *testing.T) {
	srv, err := server.New()
	require.NoError(t, err)
	for method, handler := range fs.New(&fs.Config{BaseURL: t.TempDir()}).Handlers() {
		srv.Handle(method, handler)
	}

	left, right := pipe.New()
	require.NoError(t, srv.Attach(context.Background(), right))
	ch, err := channel.New(left)
	require.NoError(t, err)
	defer ch.Close()

	response := await(t, ch.Put(&fs.Upload{URL: "greeting.txt", Text: "hello duplex"}))
	require.Empty(t, response.Error)

	response = await(t, ch.Get("greeting.txt"))
	require.Empty(t, response.Error)
	content, ok := response.Value.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "hello duplex", content["text"])

	response = await(t, ch.Head("greeting.txt"))
	require.Empty(t, response.Error)
	entry, ok := response.Value.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "greeting.txt", entry["name"])
	assert.Equal(t, float64(len("hello duplex")), entry["size"])

	response = await(t, ch.Get(nil))
	require.Empty(t, response.Error)
	entries, ok := response.Value.([]any)
	require.True(t, ok)
	assert.Len(t, entries, 1)

	response = await(t, ch.Delete("greeting.txt"))
	require.Empty(t, response.Error)

	response = await(t, ch.Get("greeting.txt"))
	assert.Contains(t, response.Error, "failed to locate")
}

func TestExecService_TCP(t *testing.T) {
	ctx := context.Background()
	execService, err := exec.New(ctx)
	require.NoError(t, err)

	srv, err := duplex.NewServer(execService.Handlers(), nil)
	require.NoError(t, err)
	listener, err := srv.ListenTCP("127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()

	cli, err := duplex.NewClient(&duplex.ClientOptions{
		TimeoutMs: 5000,
		Transport: duplex.ClientTransport{Type: "tcp", Address: listener.Addr().String()},
	})
	require.NoError(t, err)
	defer cli.Close()

	response := await(t, cli.Post(&exec.Command{Commands: []string{"echo duplex"}}))
	require.Empty(t, response.Error)
	result, ok := response.Value.(map[string]any)
	require.True(t, ok)
	assert.Contains(t, result["output"], "duplex")
	assert.Equal(t, float64(0), result["code"])

	response = await(t, cli.Get(nil))
	assert.Contains(t, response.Error, "no handler for method GET")
}
