package client

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lni/dragonboat/v4/logger"

	"github.com/anna-kv/client/lattice"
	"github.com/anna-kv/client/protocol"
	"github.com/anna-kv/client/serializer"
	"github.com/anna-kv/client/transport"
)

var Logger = logger.GetLogger("client")

// topicPrefix namespaces the response addresses this client announces.
const topicPrefix = "anna"

// --------------------------------------------------------------------------
// Client
// --------------------------------------------------------------------------

// Client is one client node instance. It owns the address caches, the
// pending-request tables and the connection multiplexer; all of them
// live for the client's lifetime and are shared with the background
// receive goroutines the multiplexer spawns.
type Client struct {
	config protocol.ClientConfig
	thread protocol.ClientThread

	corr     *correlator
	resolver *resolver
	mux      *transport.Mux
}

// New creates a new client node.
func New(config protocol.ClientConfig, s serializer.ISerializer) (*Client, error) {
	return NewWithConnector(config, s, transport.NewTCPConnector())
}

// NewWithConnector creates a new client node dialing through the given
// connector.
func NewWithConnector(config protocol.ClientConfig, s serializer.ISerializer, connector transport.IConnector) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	thread := protocol.ClientThread{
		NodeID:   fmt.Sprintf("client-%s", uuid.New()),
		ThreadID: 0,
	}

	corr := newCorrelator(thread)
	mux := transport.NewMux(connector, s, corr)

	c := &Client{
		config:   config,
		thread:   thread,
		corr:     corr,
		resolver: newResolver(config, thread, corr, mux),
		mux:      mux,
	}

	Logger.Infof("Created client %s:%d (routing %s, %d threads)",
		thread.NodeID, thread.ThreadID, config.RoutingIP, config.RoutingThreads)
	return c, nil
}

// Close tears down all connections. Outstanding operations fail with
// their configured timeout.
func (c *Client) Close() error {
	return c.mux.Close()
}

// clock stamps a write with the current wall time; the client's node id
// breaks timestamp ties between writers deterministically.
func (c *Client) clock() lattice.Clock {
	return lattice.Clock{Time: uint64(time.Now().UnixNano()), Writer: c.thread.NodeID}
}

// --------------------------------------------------------------------------
// Facade Operations
// --------------------------------------------------------------------------

// PutLWW merges a last-writer-wins value into the given key.
func (c *Client) PutLWW(key protocol.ClientKey, value []byte) error {
	return c.putLWWAt(key, value, c.clock())
}

// GetLWW reads the last-writer-wins value of the given key.
func (c *Client) GetLWW(key protocol.ClientKey) ([]byte, error) {
	value, err := c.getValue(key, lattice.KindBytes)
	if err != nil {
		return nil, err
	}
	return value.Bytes, nil
}

// AddSet merges elements into the set value of the given key.
func (c *Client) AddSet(key protocol.ClientKey, set lattice.Set) error {
	return c.mergeValue(protocol.OpSetAdd, key, lattice.SetValue(set), c.clock())
}

// GetSet reads the set value of the given key.
func (c *Client) GetSet(key protocol.ClientKey) (lattice.Set, error) {
	value, err := c.getValue(key, lattice.KindSet)
	if err != nil {
		return nil, err
	}
	return value.Set, nil
}

// AddMap merges fields into the map value of the given key. On
// conflicting fields the later write wins, mirroring LWW at the field
// level.
func (c *Client) AddMap(key protocol.ClientKey, fields map[string][]byte) error {
	return c.mergeValue(protocol.OpMapAdd, key, lattice.MapValue(fields), c.clock())
}

// GetMap reads the map value of the given key.
func (c *Client) GetMap(key protocol.ClientKey) (map[string][]byte, error) {
	value, err := c.getValue(key, lattice.KindMap)
	if err != nil {
		return nil, err
	}
	return value.Map, nil
}

// Inc merges a signed delta into the counter value of the given key and
// returns the merged counter.
func (c *Client) Inc(key protocol.ClientKey, delta int64) (int64, error) {
	payload, err := lattice.Encode(lattice.IntValue(delta))
	if err != nil {
		return 0, err
	}
	req := c.makeRequest(protocol.KeyOperation{Type: protocol.OpInc, Key: key, Payload: payload})
	resp, err := c.sendRequest(req)
	if err != nil {
		return 0, err
	}

	tuple, err := singleTuple(resp)
	if err != nil {
		return 0, err
	}
	value, err := decodePayload(tuple.Payload, lattice.KindInt)
	if err != nil {
		return 0, err
	}
	return value.Int, nil
}

// BeginTransaction starts a transaction satisfying the read committed
// isolation level.
func (c *Client) BeginTransaction() *ReadCommittedTransaction {
	return newReadCommittedTransaction(c)
}

// --------------------------------------------------------------------------
// Request Pipeline
// --------------------------------------------------------------------------

// makeRequest builds a ClientRequest around one key operation, assigning
// a fresh request id and the current write clock.
func (c *Client) makeRequest(op protocol.KeyOperation) *protocol.ClientRequest {
	return c.makeRequestAt(op, c.clock())
}

func (c *Client) makeRequestAt(op protocol.KeyOperation, ts lattice.Clock) *protocol.ClientRequest {
	return &protocol.ClientRequest{
		RequestID:       c.corr.nextRequestID(),
		ResponseAddress: c.thread.ResponseTopic(topicPrefix),
		Operation:       op,
		Timestamp:       ts,
	}
}

// sendRequest resolves the key's storage endpoint, registers the
// completion slot, sends the framed request and awaits the correlated
// response. A response-level error aborts the operation.
func (c *Client) sendRequest(req *protocol.ClientRequest) (*protocol.ClientResponse, error) {
	countRequest(req.Operation.Type)

	endpoint, err := c.resolver.endpointForKey(req.Operation.Key)
	if err != nil {
		return nil, err
	}

	ch := c.corr.registerResponse(req.RequestID)
	defer c.corr.unregisterResponse(req.RequestID)

	if err := c.mux.Send(endpoint, protocol.NewRequestMessage(req)); err != nil {
		return nil, err
	}

	resp, err := await(ch, c.config.Timeout, fmt.Sprintf("%s %q", req.Operation.Type, req.Operation.Key))
	if err != nil {
		return nil, err
	}
	if resp.Err != "" {
		return nil, protocol.NewError(protocol.ErrCStorage, resp.Err)
	}
	return resp, nil
}

// putLWWAt merges a last-writer-wins value carrying an explicit write
// clock. Transactions use this to stamp a whole buffer with one commit
// timestamp.
func (c *Client) putLWWAt(key protocol.ClientKey, value []byte, ts lattice.Clock) error {
	return c.mergeValue(protocol.OpPut, key, lattice.BytesValue(value), ts)
}

// mergeValue encodes a lattice value and sends it as one merge
// operation.
func (c *Client) mergeValue(op protocol.OperationType, key protocol.ClientKey, value lattice.Value, ts lattice.Clock) error {
	payload, err := lattice.Encode(value)
	if err != nil {
		return err
	}
	req := c.makeRequestAt(protocol.KeyOperation{Type: op, Key: key, Payload: payload}, ts)
	_, err = c.sendRequest(req)
	return err
}

// getValue reads the lattice value of a key and decodes it against the
// variant the caller expects.
func (c *Client) getValue(key protocol.ClientKey, expected lattice.Kind) (lattice.Value, error) {
	req := c.makeRequest(protocol.KeyOperation{Type: protocol.OpGet, Key: key})
	resp, err := c.sendRequest(req)
	if err != nil {
		return lattice.Value{}, err
	}

	tuple, err := singleTuple(resp)
	if err != nil {
		return lattice.Value{}, err
	}
	return decodePayload(tuple.Payload, expected)
}

// decodePayload decodes a result payload, translating a variant
// mismatch to UnexpectedValueType and anything undecodable to
// MalformedResponse.
func decodePayload(payload []byte, expected lattice.Kind) (lattice.Value, error) {
	value, err := lattice.DecodeAs(payload, expected)
	if err == nil {
		return value, nil
	}
	var decodeErr *lattice.DecodeError
	if errors.As(err, &decodeErr) {
		return lattice.Value{}, protocol.NewErrorf(protocol.ErrCUnexpectedValueType, "expected %s value, found %s", decodeErr.Expected, decodeErr.Found)
	}
	return lattice.Value{}, protocol.NewErrorf(protocol.ErrCMalformedResponse, "undecodable result payload: %v", err)
}

// singleTuple interprets a response to a single-key operation: exactly
// one result tuple is expected, and a tuple carrying its own error
// aborts with that error.
func singleTuple(resp *protocol.ClientResponse) (*protocol.ResponseTuple, error) {
	if len(resp.Tuples) == 0 {
		return nil, protocol.NewError(protocol.ErrCMalformedResponse, "response has no tuples")
	}

	tuple := &resp.Tuples[0]
	if tuple.Err != "" {
		if tuple.Err == protocol.ErrMsgKeyNotFound {
			return nil, protocol.NewErrorf(protocol.ErrCKeyNotFound, "key %q does not exist", tuple.Key)
		}
		return nil, protocol.NewError(protocol.ErrCStorage, tuple.Err)
	}
	if len(tuple.Payload) == 0 {
		return nil, protocol.NewError(protocol.ErrCMalformedResponse, "result tuple carries neither value nor error")
	}
	return tuple, nil
}
