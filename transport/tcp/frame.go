package tcp

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"
)

// MaxFrameSize bounds a single frame; larger announcements indicate a
// desynced or hostile peer.
const MaxFrameSize = 16 << 20

// WriteFrame writes one frame to the connection with the format:
// - 4 bytes: payload length (uint32, big endian)
// - N bytes: payload
func WriteFrame(conn net.Conn, data []byte) error {
	header := make([]byte, 4)
	binary.BigEndian.PutUint32(header, uint32(len(data)))
	buffers := net.Buffers{header, data}
	_, err := buffers.WriteTo(conn)
	return err
}

// ReadFrame reads one frame from the connection.
func ReadFrame(conn net.Conn) ([]byte, error) {
	header := make([]byte, 4)
	if _, err := io.ReadFull(conn, header); err != nil {
		return nil, err
	}
	length := binary.BigEndian.Uint32(header)
	if length > MaxFrameSize {
		return nil, fmt.Errorf("tcp: frame of %d bytes exceeds %d byte limit", length, MaxFrameSize)
	}
	if length == 0 {
		return []byte{}, nil
	}
	data := make([]byte, length)
	if _, err := io.ReadFull(conn, data); err != nil {
		return nil, err
	}
	return data, nil
}
