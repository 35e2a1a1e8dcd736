package client

import (
	"strings"
	"testing"
	"time"

	"github.com/anna-kv/client/protocol"
)

func testCorrelator() *correlator {
	return newCorrelator(protocol.ClientThread{NodeID: "client-test", ThreadID: 0})
}

func TestNextRequestIDCycles(t *testing.T) {
	co := testCorrelator()

	first := co.nextRequestID()
	if !strings.HasPrefix(first, "client-test:0_") {
		t.Fatalf("unexpected id format: %q", first)
	}

	seen := map[string]bool{first: true}
	for i := 1; i < requestIDModulus; i++ {
		id := co.nextRequestID()
		if seen[id] {
			t.Fatalf("id %q repeated before a full wrap", id)
		}
		seen[id] = true
	}

	// After a full wrap the sequence repeats.
	if id := co.nextRequestID(); !seen[id] {
		t.Errorf("expected wrapped id to repeat, got fresh %q", id)
	}
}

func TestCorrelatorFulfillsRegisteredSlot(t *testing.T) {
	co := testCorrelator()

	id := co.nextRequestID()
	ch := co.registerResponse(id)

	co.HandleResponse(&protocol.ClientResponse{ResponseID: id})

	select {
	case resp := <-ch:
		if resp.ResponseID != id {
			t.Errorf("wrong response delivered: %q", resp.ResponseID)
		}
	case <-time.After(time.Second):
		t.Fatal("slot never fulfilled")
	}

	// The slot is removed on fulfillment: a duplicate response is a no-op.
	co.HandleResponse(&protocol.ClientResponse{ResponseID: id})
	select {
	case <-ch:
		t.Error("slot fulfilled twice")
	default:
	}
}

func TestCorrelatorDropsUncorrelatedResponses(t *testing.T) {
	co := testCorrelator()

	// Unknown id and missing id must both be silently survivable.
	co.HandleResponse(&protocol.ClientResponse{ResponseID: "client-test:0_9999"})
	co.HandleResponse(&protocol.ClientResponse{})
	co.HandleAddressResponse(&protocol.AddressResponse{ResponseID: "client-test:0_9999"})
}

func TestAwaitTimeout(t *testing.T) {
	ch := make(chan *protocol.ClientResponse)

	_, err := await(ch, 20*time.Millisecond, "test request")
	if !protocol.IsCode(err, protocol.ErrCTimeout) {
		t.Fatalf("expected timeout error, got %v", err)
	}
}
