// Package protocol defines the wire message types and shared data
// structures exchanged between the client, the routing tier and the
// storage tier.
//
// The package is organized around a single envelope type, TcpMessage,
// which tags exactly one of four payloads:
//
//   - AddressRequest: asks a routing thread which storage threads own a
//     set of keys and where those threads are reachable.
//
//   - AddressResponse: the routing reply, carrying thread-to-endpoint
//     sockets and key-to-thread-set mappings. A response may carry more
//     pairs than were asked for; callers merge everything they receive.
//
//   - ClientRequest: one key operation (Get, Put, SetAdd, MapAdd, Inc)
//     with a request id and a response address.
//
//   - ClientResponse: zero or more result tuples, each independently
//     carrying either a lattice value or a per-tuple error.
//
// Requests and responses are correlated purely by request id; no ordering
// is guaranteed between responses for distinct requests.
//
// The package also carries the client configuration surface and the typed
// error taxonomy shared by all layers above the transport.
package protocol
