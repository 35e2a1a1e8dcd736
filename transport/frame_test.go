package transport

import (
	"bytes"
	"net"
	"sync"
	"testing"
	"time"
)

// framePipe returns both ends of an in-process connection.
func framePipe(t *testing.T) (net.Conn, net.Conn) {
	t.Helper()
	client, server := net.Pipe()
	t.Cleanup(func() {
		client.Close()
		server.Close()
	})
	return client, server
}

func TestFrameRoundTrip(t *testing.T) {
	client, server := framePipe(t)

	payloads := [][]byte{
		[]byte("hello"),
		{},
		bytes.Repeat([]byte{0xab}, 4096),
	}

	go func() {
		for _, p := range payloads {
			if err := WriteFrame(client, p); err != nil {
				t.Errorf("write failed: %v", err)
				return
			}
		}
	}()

	for i, want := range payloads {
		got, err := ReadFrame(server)
		if err != nil {
			t.Fatalf("read %d failed: %v", i, err)
		}
		if !bytes.Equal(got, want) {
			t.Errorf("frame %d mismatch: got %d bytes, want %d", i, len(got), len(want))
		}
	}
}

// TestFrameWritesDoNotInterleave checks that concurrent senders through
// the write path produce whole frames on the wire.
func TestFrameWritesDoNotInterleave(t *testing.T) {
	client, server := framePipe(t)

	const senders = 8
	const framesPerSender = 20

	var mu sync.Mutex
	for i := 0; i < senders; i++ {
		payload := bytes.Repeat([]byte{byte('a' + i)}, 512)
		go func(p []byte) {
			for j := 0; j < framesPerSender; j++ {
				mu.Lock()
				err := WriteFrame(client, p)
				mu.Unlock()
				if err != nil {
					t.Errorf("write failed: %v", err)
					return
				}
			}
		}(payload)
	}

	deadline := time.Now().Add(5 * time.Second)
	server.SetReadDeadline(deadline)
	for i := 0; i < senders*framesPerSender; i++ {
		frame, err := ReadFrame(server)
		if err != nil {
			t.Fatalf("read %d failed: %v", i, err)
		}
		if len(frame) != 512 {
			t.Fatalf("frame %d has %d bytes, want 512", i, len(frame))
		}
		for _, b := range frame[1:] {
			if b != frame[0] {
				t.Fatalf("frame %d interleaved: %q vs %q", i, b, frame[0])
			}
		}
	}
}
