package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/anna-kv/client/lattice"
)

// --------------------------------------------------------------------------
// Message Envelope
// --------------------------------------------------------------------------

// TcpMessage is the envelope for every frame on a client connection.
// Exactly one payload field is set, selected by MsgType.
type TcpMessage struct {
	MsgType MessageType `json:"msg_type"`

	AddressRequest  *AddressRequest  `json:"address_request,omitempty"`
	AddressResponse *AddressResponse `json:"address_response,omitempty"`
	Request         *ClientRequest   `json:"request,omitempty"`
	Response        *ClientResponse  `json:"response,omitempty"`
}

// --------------------------------------------------------------------------
// Address Resolution Messages
// --------------------------------------------------------------------------

// AddressRequest asks a routing thread which storage threads own the
// given keys and where those threads are reachable.
type AddressRequest struct {
	RequestID       string      `json:"request_id"`
	ResponseAddress string      `json:"response_address"`
	Keys            []ClientKey `json:"keys"`
}

// ThreadSocket maps one storage thread to its transport endpoint.
type ThreadSocket struct {
	Thread  KvsThread `json:"thread"`
	Address string    `json:"address"` // host:port
}

// KeyAddress maps one key to the set of storage threads owning it.
type KeyAddress struct {
	Key     ClientKey   `json:"key"`
	Threads []KvsThread `json:"threads"`
}

// AddressResponse answers an AddressRequest. It may carry more socket and
// key mappings than were requested; callers merge everything into their
// caches.
type AddressResponse struct {
	ResponseID string         `json:"response_id"`
	TcpSockets []ThreadSocket `json:"tcp_sockets,omitempty"`
	Addresses  []KeyAddress   `json:"addresses,omitempty"`
	Err        string         `json:"err,omitempty"`
}

// --------------------------------------------------------------------------
// Key Operation Messages
// --------------------------------------------------------------------------

// OperationType enumerates the key operations a client may issue.
type OperationType uint8

const (
	OpUnknown OperationType = iota
	OpGet                   // read the lattice value of a key
	OpPut                   // merge a last-writer-wins payload
	OpSetAdd                // merge elements into a set value
	OpMapAdd                // merge fields into a map value
	OpInc                   // merge a signed delta into a counter value
)

// String returns the string representation of an OperationType.
func (o OperationType) String() string {
	switch o {
	case OpGet:
		return "get"
	case OpPut:
		return "put"
	case OpSetAdd:
		return "set_add"
	case OpMapAdd:
		return "map_add"
	case OpInc:
		return "inc"
	default:
		return "unknown"
	}
}

// KeyOperation names one operation on one key. Payload carries the
// lattice value to merge, encoded with lattice.Encode; Get carries no
// payload. The storage layer treats the bytes as opaque until it decodes
// them against the operation's expected variant.
type KeyOperation struct {
	Type    OperationType `json:"type"`
	Key     ClientKey     `json:"key"`
	Payload []byte        `json:"payload,omitempty"`
}

// ClientRequest carries one key operation to a storage thread. Timestamp
// is the logical write clock applied storage-side for merge resolution.
type ClientRequest struct {
	RequestID       string        `json:"request_id"`
	ResponseAddress string        `json:"response_address"`
	Operation       KeyOperation  `json:"operation"`
	Timestamp       lattice.Clock `json:"timestamp"`
}

// ResponseTuple is one per-key result inside a ClientResponse. Either
// Payload (an encoded lattice value) or Err is set, never both.
type ResponseTuple struct {
	Key     ClientKey `json:"key"`
	Payload []byte    `json:"payload,omitempty"`
	Err     string    `json:"err,omitempty"`
}

// ClientResponse answers a ClientRequest. Responses support batched
// multi-key requests, so they carry a tuple list even though this client
// only issues single-key operations.
type ClientResponse struct {
	ResponseID string          `json:"response_id,omitempty"`
	Tuples     []ResponseTuple `json:"tuples,omitempty"`
	Err        string          `json:"err,omitempty"`
}

// --------------------------------------------------------------------------
// Message Factory Functions
// --------------------------------------------------------------------------

// NewAddressRequestMessage wraps an AddressRequest into an envelope.
func NewAddressRequestMessage(req *AddressRequest) *TcpMessage {
	return &TcpMessage{MsgType: MsgTAddressRequest, AddressRequest: req}
}

// NewAddressResponseMessage wraps an AddressResponse into an envelope.
func NewAddressResponseMessage(resp *AddressResponse) *TcpMessage {
	return &TcpMessage{MsgType: MsgTAddressResponse, AddressResponse: resp}
}

// NewRequestMessage wraps a ClientRequest into an envelope.
func NewRequestMessage(req *ClientRequest) *TcpMessage {
	return &TcpMessage{MsgType: MsgTRequest, Request: req}
}

// NewResponseMessage wraps a ClientResponse into an envelope.
func NewResponseMessage(resp *ClientResponse) *TcpMessage {
	return &TcpMessage{MsgType: MsgTResponse, Response: resp}
}

// --------------------------------------------------------------------------
// Message Type Definition
// --------------------------------------------------------------------------

// MessageType defines the kind of payload carried by a TcpMessage.
type MessageType uint8

const (
	MsgTUnknown MessageType = iota
	MsgTAddressRequest
	MsgTAddressResponse
	MsgTRequest
	MsgTResponse
)

// String returns the string representation of a MessageType.
func (t MessageType) String() string {
	switch t {
	case MsgTAddressRequest:
		return "address_request"
	case MsgTAddressResponse:
		return "address_response"
	case MsgTRequest:
		return "request"
	case MsgTResponse:
		return "response"
	default:
		return "unknown"
	}
}

// MarshalJSON implements the json.Marshaller interface for MessageType.
// This allows MessageType to be serialized as a string in JSON.
func (t MessageType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface for MessageType.
// This allows MessageType to be deserialized from a string in JSON.
func (t *MessageType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	switch s {
	case "address_request":
		*t = MsgTAddressRequest
	case "address_response":
		*t = MsgTAddressResponse
	case "request":
		*t = MsgTRequest
	case "response":
		*t = MsgTResponse
	default:
		return fmt.Errorf("unknown message type: %s", s)
	}

	return nil
}
