package redislike

import (
	"encoding/binary"
	"fmt"
)

// toValue converts a Go value to its wire byte string. Strings and byte
// slices pass through unchanged, integers are encoded big-endian at
// their natural width.
func toValue(v any) ([]byte, error) {
	switch v := v.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	case uint8:
		return []byte{v}, nil
	case int8:
		return []byte{uint8(v)}, nil
	case uint16:
		return binary.BigEndian.AppendUint16(nil, v), nil
	case int16:
		return binary.BigEndian.AppendUint16(nil, uint16(v)), nil
	case uint32:
		return binary.BigEndian.AppendUint32(nil, v), nil
	case int32:
		return binary.BigEndian.AppendUint32(nil, uint32(v)), nil
	case uint64:
		return binary.BigEndian.AppendUint64(nil, v), nil
	case int64:
		return binary.BigEndian.AppendUint64(nil, uint64(v)), nil
	case uint:
		return binary.BigEndian.AppendUint64(nil, uint64(v)), nil
	case int:
		return binary.BigEndian.AppendUint64(nil, uint64(v)), nil
	default:
		return nil, fmt.Errorf("cannot convert %T to a store value", v)
	}
}
