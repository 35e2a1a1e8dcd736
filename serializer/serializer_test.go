package serializer

import (
	"reflect"
	"testing"

	"github.com/anna-kv/client/lattice"
	"github.com/anna-kv/client/protocol"
)

// testSerializers is a map of serializer name to factory function
var testSerializers = map[string]func() ISerializer{
	"JSON": NewJSONSerializer,
	"GOB":  NewGOBSerializer,
}

// mustEncode encodes a lattice value or fails the test.
func mustEncode(t *testing.T, v lattice.Value) []byte {
	t.Helper()
	data, err := lattice.Encode(v)
	if err != nil {
		t.Fatalf("failed to encode lattice value: %v", err)
	}
	return data
}

// testMessages creates one envelope per message kind with representative
// payloads.
func testMessages(t *testing.T) []*protocol.TcpMessage {
	return []*protocol.TcpMessage{
		protocol.NewAddressRequestMessage(&protocol.AddressRequest{
			RequestID:       "client-1:0_1",
			ResponseAddress: "anna/client-1:0/address-responses",
			Keys:            []protocol.ClientKey{"time"},
		}),

		protocol.NewAddressResponseMessage(&protocol.AddressResponse{
			ResponseID: "client-1:0_1",
			TcpSockets: []protocol.ThreadSocket{
				{Thread: protocol.KvsThread{NodeID: "kvs-1", ThreadID: 0}, Address: "127.0.0.1:7000"},
			},
			Addresses: []protocol.KeyAddress{
				{Key: "time", Threads: []protocol.KvsThread{{NodeID: "kvs-1", ThreadID: 0}}},
			},
		}),

		protocol.NewRequestMessage(&protocol.ClientRequest{
			RequestID:       "client-1:0_2",
			ResponseAddress: "anna/client-1:0/responses",
			Operation: protocol.KeyOperation{
				Type:    protocol.OpSetAdd,
				Key:     "s",
				Payload: mustEncode(t, lattice.SetValue(map[string]bool{"hello": true, "world": true})),
			},
			Timestamp: lattice.Clock{Time: 1234, Writer: "client-1"},
		}),

		protocol.NewResponseMessage(&protocol.ClientResponse{
			ResponseID: "client-1:0_2",
			Tuples: []protocol.ResponseTuple{
				{Key: "n", Payload: mustEncode(t, lattice.IntValue(42))},
			},
		}),

		protocol.NewResponseMessage(&protocol.ClientResponse{
			ResponseID: "client-1:0_3",
			Tuples: []protocol.ResponseTuple{
				{Key: "missing", Err: protocol.ErrMsgKeyNotFound},
			},
		}),
	}
}

// TestSerializerRoundTrip tests that envelopes survive a serialize and
// deserialize cycle unchanged.
func TestSerializerRoundTrip(t *testing.T) {
	messages := testMessages(t)

	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			s := factory()

			for i, msg := range messages {
				data, err := s.Serialize(msg)
				if err != nil {
					t.Errorf("Failed to serialize message %d: %v", i, err)
					continue
				}

				var result protocol.TcpMessage
				err = s.Deserialize(data, &result)
				if err != nil {
					t.Errorf("Failed to deserialize message %d: %v", i, err)
					continue
				}

				if !reflect.DeepEqual(*msg, result) {
					t.Errorf("Message %d doesn't match after round trip:\nOriginal: %+v\nResult: %+v",
						i, *msg, result)
				}
			}
		})
	}
}
