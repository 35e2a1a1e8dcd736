package kvstest

import (
	"net"
	"testing"
	"time"

	"github.com/anna-kv/client/protocol"
	"github.com/anna-kv/client/serializer"
	"github.com/anna-kv/client/transport"
)

// TestCloseUnblocksServingGoroutines leaves a client connection open
// with a request in flight and checks that Close still returns: it must
// close accepted connections itself and wait for the per-frame handler
// goroutines instead of racing them.
func TestCloseUnblocksServingGoroutines(t *testing.T) {
	s := serializer.NewJSONSerializer()
	cluster, err := NewCluster(1, s)
	if err != nil {
		t.Fatalf("failed to start test cluster: %v", err)
	}

	config := cluster.ClientConfig(time.Second)
	conn, err := net.Dial("tcp", config.RoutingEndpoint(0))
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	msg := protocol.NewAddressRequestMessage(&protocol.AddressRequest{
		RequestID: "test:0_1",
		Keys:      []protocol.ClientKey{"k"},
	})
	data, err := s.Serialize(msg)
	if err != nil {
		t.Fatalf("serialize failed: %v", err)
	}
	if err := transport.WriteFrame(conn, data); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if _, err := transport.ReadFrame(conn); err != nil {
		t.Fatalf("read failed: %v", err)
	}

	// The connection stays open; Close must not depend on the peer
	// hanging up.
	done := make(chan struct{})
	go func() {
		cluster.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Close did not return while a connection was open")
	}
}
