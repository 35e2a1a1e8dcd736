package client

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/anna-kv/client/protocol"
)

// requestIDModulus bounds the per-client sequence number. A collision
// requires a full wrap with the colliding request still in flight, which
// is accepted at the request rates this client sees.
const requestIDModulus = 10000

// correlator owns the pending-request tables and generates request ids.
// It implements transport.InboundHandler: the background receive
// goroutines deliver every decoded response here, and the correlator's
// only contract is "look up the id, fulfill the slot if present, else
// drop".
type correlator struct {
	thread protocol.ClientThread
	seq    atomic.Uint32

	// One-shot completion slots keyed by request id. A slot is removed
	// when fulfilled, so every id is fulfilled at most once.
	addrPending *xsync.MapOf[string, chan *protocol.AddressResponse]
	respPending *xsync.MapOf[string, chan *protocol.ClientResponse]
}

func newCorrelator(thread protocol.ClientThread) *correlator {
	return &correlator{
		thread:      thread,
		addrPending: xsync.NewMapOf[string, chan *protocol.AddressResponse](),
		respPending: xsync.NewMapOf[string, chan *protocol.ClientResponse](),
	}
}

// nextRequestID produces a monotonically cycling identifier scoped to
// this client instance: node id, thread id and a wrapping sequence
// number.
func (co *correlator) nextRequestID() string {
	n := co.seq.Add(1) % requestIDModulus
	return fmt.Sprintf("%s:%d_%d", co.thread.NodeID, co.thread.ThreadID, n)
}

// registerAddress creates the one-shot slot for an address resolution
// round trip. The caller must unregister the id if it gives up waiting.
func (co *correlator) registerAddress(id string) chan *protocol.AddressResponse {
	ch := make(chan *protocol.AddressResponse, 1)
	co.addrPending.Store(id, ch)
	return ch
}

func (co *correlator) unregisterAddress(id string) {
	co.addrPending.Delete(id)
}

// registerResponse creates the one-shot slot for a key operation round
// trip.
func (co *correlator) registerResponse(id string) chan *protocol.ClientResponse {
	ch := make(chan *protocol.ClientResponse, 1)
	co.respPending.Store(id, ch)
	return ch
}

func (co *correlator) unregisterResponse(id string) {
	co.respPending.Delete(id)
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.InboundHandler)
// --------------------------------------------------------------------------

func (co *correlator) HandleAddressResponse(resp *protocol.AddressResponse) {
	if ch, ok := co.addrPending.LoadAndDelete(resp.ResponseID); ok {
		ch <- resp
		return
	}
	Logger.Warningf("Unexpected AddressResponse with id %q, dropping", resp.ResponseID)
	droppedResponses.Inc()
}

func (co *correlator) HandleResponse(resp *protocol.ClientResponse) {
	if resp.ResponseID == "" {
		// Cannot be correlated with any caller.
		Logger.Warningf("Received Response without response id, dropping")
		droppedResponses.Inc()
		return
	}
	if ch, ok := co.respPending.LoadAndDelete(resp.ResponseID); ok {
		ch <- resp
	}
	// An id with no registered slot is a no-op: the caller already timed
	// out or was never registered.
}

// --------------------------------------------------------------------------
// Helper Functions
// --------------------------------------------------------------------------

// await blocks until the slot is fulfilled or the deadline passes. A
// timeout of zero or less disables deadline enforcement entirely: a
// response that never arrives then leaves the caller suspended.
func await[T any](ch <-chan *T, timeout time.Duration, what string) (*T, error) {
	if timeout <= 0 {
		return <-ch, nil
	}
	select {
	case resp := <-ch:
		return resp, nil
	case <-time.After(timeout):
		requestTimeouts.Inc()
		return nil, protocol.NewErrorf(protocol.ErrCTimeout, "%s timed out after %s", what, timeout)
	}
}
