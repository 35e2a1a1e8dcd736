// Package serializer provides message serialization for the client's
// wire protocol. It defines a common interface and multiple
// implementations for converting TcpMessage envelopes to and from byte
// arrays; the transport layer frames those byte arrays onto the socket.
//
// Key Components:
//
//   - ISerializer: Core interface that all serializer implementations
//     must satisfy.
//
//   - jsonSerializerImpl: JSON encoding, human readable and useful for
//     debugging or interoperability with other systems.
//
//   - gobSerializerImpl: Go's built-in gob encoding, offering good
//     compatibility with Go's type system at the cost of larger
//     serialized sizes.
//
// Thread Safety:
//
//	All serializer implementations are stateless and safe for concurrent
//	use across multiple goroutines without additional synchronization.
package serializer
