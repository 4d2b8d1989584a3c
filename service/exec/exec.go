// Package exec runs shell commands submitted over the duplex wire: POST
// carries the commands and the reply carries combined output with the exit
// code. Mount it only on trusted endpoints.
package exec

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/viant/duplex/schema"
	"github.com/viant/duplex/server"
	"github.com/viant/gosh"
	"github.com/viant/gosh/runner/local"
)

// Command lists shell commands executed in order; execution stops at the
// first failing command.
type Command struct {
	Commands []string `json:"commands"`
}

// Result carries combined command output and the final exit code.
type Result struct {
	Output string `json:"output"`
	Code   int    `json:"code"`
}

// Service executes commands on the local host.
type Service struct {
	service *gosh.Service
}

// New creates a local command execution service.
func New(ctx context.Context) (*Service, error) {
	service, err := gosh.New(ctx, local.New())
	if err != nil {
		return nil, fmt.Errorf("failed to create terminal service: %w", err)
	}
	return &Service{service: service}, nil
}

// Handlers maps wire methods to this service's operations.
func (s *Service) Handlers() map[string]server.HandlerFunc {
	return map[string]server.HandlerFunc{
		schema.MethodPost: s.Post,
	}
}

// Post runs the submitted commands joined with " && ".
func (s *Service) Post(ctx context.Context, request *schema.Request) (any, error) {
	input := &Command{}
	if len(request.Data) > 0 {
		if err := json.Unmarshal(request.Data, input); err != nil {
			return nil, fmt.Errorf("invalid command: %w", err)
		}
	}
	if len(input.Commands) == 0 {
		return nil, errors.New("exec: no commands")
	}
	output, code, err := s.service.Run(ctx, strings.Join(input.Commands, " && "))
	if err != nil {
		return nil, err
	}
	return &Result{Output: output, Code: code}, nil
}
