package lattice

import "fmt"

// --------------------------------------------------------------------------
// Kind Definition
// --------------------------------------------------------------------------

// Kind identifies the variant of a lattice value.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindBytes        // last-writer-wins register payload
	KindSet          // set of opaque byte strings
	KindMap          // string keyed map of opaque byte strings
	KindInt          // commutative counter
)

// String returns the string representation of a Kind.
func (k Kind) String() string {
	switch k {
	case KindBytes:
		return "bytes"
	case KindSet:
		return "set"
	case KindMap:
		return "map"
	case KindInt:
		return "int"
	default:
		return "unknown"
	}
}

// --------------------------------------------------------------------------
// Clock
// --------------------------------------------------------------------------

// Clock is the logical timestamp attached to last-writer-wins values.
// Writer breaks ties between equal times so that merging stays
// commutative no matter which replica applies a write first.
type Clock struct {
	Time   uint64 `json:"time"`
	Writer string `json:"writer,omitempty"`
}

// Before reports whether c is ordered strictly before o.
func (c Clock) Before(o Clock) bool {
	if c.Time != o.Time {
		return c.Time < o.Time
	}
	return c.Writer < o.Writer
}

// --------------------------------------------------------------------------
// Tagged Union
// --------------------------------------------------------------------------

// Value is the tagged union over all lattice variants. It mirrors the
// shape of a lattice value inside a storage response: exactly one of the
// payload fields is meaningful, selected by Kind.
type Value struct {
	Kind  Kind              `json:"kind"`
	Bytes []byte            `json:"bytes,omitempty"`
	Set   map[string]bool   `json:"set,omitempty"`
	Map   map[string][]byte `json:"map,omitempty"`
	Int   int64             `json:"int,omitempty"`
}

// BytesValue creates a Value holding a last-writer-wins payload.
func BytesValue(b []byte) Value {
	return Value{Kind: KindBytes, Bytes: b}
}

// SetValue creates a Value holding a set of byte strings.
func SetValue(set map[string]bool) Value {
	return Value{Kind: KindSet, Set: set}
}

// MapValue creates a Value holding a string keyed map.
func MapValue(m map[string][]byte) Value {
	return Value{Kind: KindMap, Map: m}
}

// IntValue creates a Value holding a counter.
func IntValue(i int64) Value {
	return Value{Kind: KindInt, Int: i}
}

// --------------------------------------------------------------------------
// Decode Error
// --------------------------------------------------------------------------

// DecodeError reports a lattice variant mismatch: the caller expected one
// variant but the payload carried another. Merging or decoding across
// variants is a programming error, never a silent coercion.
type DecodeError struct {
	Expected Kind
	Found    Kind
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("lattice decode: expected %s value, found %s", e.Expected, e.Found)
}
