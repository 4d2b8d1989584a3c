package main

import (
	"context"
	"encoding/json"
	"log"

	"github.com/viant/duplex/schema"
	"github.com/viant/duplex/server"
)

func main() {
	// Define a simple handler I/O
	type AddIn struct {
		A int `json:"a"`
		B int `json:"b"`
	}
	type AddOut struct {
		Sum int `json:"sum"`
	}

	// Configure the responder and register the handler
	srv, err := server.New(
		server.WithName("example"),
		server.WithHandler(schema.MethodPost, func(ctx context.Context, request *schema.Request) (any, error) {
			in := &AddIn{}
			if err := json.Unmarshal(request.Data, in); err != nil {
				return nil, err
			}
			return &AddOut{Sum: in.A + in.B}, nil
		}),
	)
	if err != nil {
		log.Fatal(err)
	}

	// Issue requests with the duplex CLI:
	//   duplex -T ws --url ws://localhost:4987/ws -X POST -d '{"a":2,"b":3}'
	log.Fatal(srv.HTTP(context.Background(), ":4987").ListenAndServe())
}
