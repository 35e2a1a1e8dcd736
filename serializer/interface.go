package serializer

import "github.com/anna-kv/client/protocol"

// ISerializer is the interface for all TcpMessage serializers.
type ISerializer interface {
	// Serialize serializes a TcpMessage into a byte array.
	// It returns the serialized byte array and an error if any.
	Serialize(msg *protocol.TcpMessage) ([]byte, error)
	// Deserialize deserializes a byte array into a TcpMessage.
	// It takes a byte array and a pointer to a TcpMessage as parameters.
	// It returns an error if any.
	Deserialize(b []byte, msg *protocol.TcpMessage) error
}
