package lattice

import (
	"encoding/binary"
	"fmt"
)

// --------------------------------------------------------------------------
// Binary Encoding
// --------------------------------------------------------------------------
//
// A value is encoded as a one byte variant tag followed by the variant
// payload. Multi-element variants use 4 byte big endian length prefixes.
// The encoding is a pure function of the value; the storage layer treats
// the result as an opaque payload.

// Encode serializes a value into the opaque byte payload understood by
// the storage layer.
func Encode(v Value) ([]byte, error) {
	switch v.Kind {
	case KindBytes:
		result := make([]byte, 1+len(v.Bytes))
		result[0] = byte(KindBytes)
		copy(result[1:], v.Bytes)
		return result, nil

	case KindInt:
		result := make([]byte, 9)
		result[0] = byte(KindInt)
		binary.BigEndian.PutUint64(result[1:], uint64(v.Int))
		return result, nil

	case KindSet:
		size := 5
		for e := range v.Set {
			size += 4 + len(e)
		}
		result := make([]byte, size)
		result[0] = byte(KindSet)
		binary.BigEndian.PutUint32(result[1:5], uint32(len(v.Set)))
		pos := 5
		for e := range v.Set {
			binary.BigEndian.PutUint32(result[pos:pos+4], uint32(len(e)))
			pos += 4
			copy(result[pos:pos+len(e)], e)
			pos += len(e)
		}
		return result, nil

	case KindMap:
		size := 5
		for k, val := range v.Map {
			size += 4 + len(k) + 4 + len(val)
		}
		result := make([]byte, size)
		result[0] = byte(KindMap)
		binary.BigEndian.PutUint32(result[1:5], uint32(len(v.Map)))
		pos := 5
		for k, val := range v.Map {
			binary.BigEndian.PutUint32(result[pos:pos+4], uint32(len(k)))
			pos += 4
			copy(result[pos:pos+len(k)], k)
			pos += len(k)
			binary.BigEndian.PutUint32(result[pos:pos+4], uint32(len(val)))
			pos += 4
			copy(result[pos:pos+len(val)], val)
			pos += len(val)
		}
		return result, nil

	default:
		return nil, fmt.Errorf("lattice encode: unknown variant %d", v.Kind)
	}
}

// Decode parses an opaque payload back into a tagged value.
func Decode(data []byte) (Value, error) {
	if len(data) < 1 {
		return Value{}, fmt.Errorf("lattice decode: empty payload")
	}

	kind := Kind(data[0])
	payload := data[1:]

	switch kind {
	case KindBytes:
		b := make([]byte, len(payload))
		copy(b, payload)
		return BytesValue(b), nil

	case KindInt:
		if len(payload) != 8 {
			return Value{}, fmt.Errorf("lattice decode: int payload has %d bytes, want 8", len(payload))
		}
		return IntValue(int64(binary.BigEndian.Uint64(payload))), nil

	case KindSet:
		count, pos, err := readCount(payload)
		if err != nil {
			return Value{}, err
		}
		set := make(map[string]bool, count)
		for i := uint32(0); i < count; i++ {
			elem, next, err := readChunk(payload, pos)
			if err != nil {
				return Value{}, err
			}
			set[elem] = true
			pos = next
		}
		return SetValue(set), nil

	case KindMap:
		count, pos, err := readCount(payload)
		if err != nil {
			return Value{}, err
		}
		m := make(map[string][]byte, count)
		for i := uint32(0); i < count; i++ {
			key, next, err := readChunk(payload, pos)
			if err != nil {
				return Value{}, err
			}
			val, next, err := readChunk(payload, next)
			if err != nil {
				return Value{}, err
			}
			m[key] = []byte(val)
			pos = next
		}
		return MapValue(m), nil

	default:
		return Value{}, fmt.Errorf("lattice decode: unknown variant tag %d", data[0])
	}
}

// DecodeAs parses an opaque payload and checks it against the variant the
// caller expects. A mismatch surfaces as a *DecodeError naming both
// variants.
func DecodeAs(data []byte, expected Kind) (Value, error) {
	v, err := Decode(data)
	if err != nil {
		return Value{}, err
	}
	if v.Kind != expected {
		return Value{}, &DecodeError{Expected: expected, Found: v.Kind}
	}
	return v, nil
}

// --------------------------------------------------------------------------
// Helper Functions
// --------------------------------------------------------------------------

// readCount reads the leading element count of a set or map payload.
// Every element occupies at least one 4 byte length prefix, which bounds
// a plausible count; anything larger is a corrupt payload and must not
// drive an allocation.
func readCount(payload []byte) (uint32, int, error) {
	if len(payload) < 4 {
		return 0, 0, fmt.Errorf("lattice decode: payload too short for element count")
	}
	count := binary.BigEndian.Uint32(payload[:4])
	if int64(count)*4 > int64(len(payload)-4) {
		return 0, 0, fmt.Errorf("lattice decode: element count %d exceeds payload size", count)
	}
	return count, 4, nil
}

// readChunk reads one length-prefixed chunk starting at pos.
func readChunk(payload []byte, pos int) (string, int, error) {
	if pos+4 > len(payload) {
		return "", 0, fmt.Errorf("lattice decode: payload too short for chunk length")
	}
	n := int(binary.BigEndian.Uint32(payload[pos : pos+4]))
	pos += 4
	if pos+n > len(payload) {
		return "", 0, fmt.Errorf("lattice decode: payload too short for chunk data")
	}
	return string(payload[pos : pos+n]), pos + n, nil
}
