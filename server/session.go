package server

import (
	"sync"

	"github.com/rs/zerolog"
	"github.com/viant/duplex/schema"
)

// session is one attached peer. Replies from concurrent handlers are
// serialized by writeMu so frames never interleave on the wire.
type session struct {
	id     string
	kind   string
	remote string
	logger zerolog.Logger

	writeMu sync.Mutex
	write   func(data []byte) error
	close   func() error
}

func (s *session) reply(response *schema.Response) error {
	data, err := response.Encode()
	if err != nil {
		return err
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.write(data)
}

func (s *session) shutdown() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}
