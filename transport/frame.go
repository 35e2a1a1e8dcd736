package transport

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"
)

// maxFrameSize bounds a single frame to keep a corrupted length prefix
// from triggering an oversized allocation.
const maxFrameSize = 64 << 20

// WriteFrame writes one frame to the connection with the format:
// - 4 bytes: payload length (uint32, big endian)
// - N bytes: payload
func WriteFrame(conn net.Conn, data []byte) error {
	header := make([]byte, 4)
	binary.BigEndian.PutUint32(header, uint32(len(data)))

	b := net.Buffers{header, data}
	_, err := b.WriteTo(conn)
	return err
}

// ReadFrame reads one length-prefixed frame from the connection.
func ReadFrame(conn net.Conn) ([]byte, error) {
	header := make([]byte, 4)
	if _, err := io.ReadFull(conn, header); err != nil {
		return nil, err
	}

	length := binary.BigEndian.Uint32(header)
	if length > maxFrameSize {
		return nil, fmt.Errorf("frame of %d bytes exceeds limit", length)
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
