package transport

import (
	"net"

	"github.com/anna-kv/client/protocol"
)

// IConnector defines the interface for transport-specific connection
// operations.
type IConnector interface {
	// Connect establishes a single connection to the given endpoint.
	Connect(endpoint string) (net.Conn, error)

	// GetName returns the name of the transport type (e.g., "tcp").
	GetName() string
}

// InboundHandler receives the messages a connection's receive loop has
// decoded and classified. The handler's only contract is to look up the
// embedded response id and fulfill a pending request if one is
// registered; unknown ids are dropped.
type InboundHandler interface {
	// HandleAddressResponse delivers an address resolution response.
	HandleAddressResponse(resp *protocol.AddressResponse)

	// HandleResponse delivers a key operation response.
	HandleResponse(resp *protocol.ClientResponse)
}
