package kvstest

import (
	"sync"

	"github.com/anna-kv/client/lattice"
	"github.com/anna-kv/client/protocol"
)

// entry is one stored lattice value. Exactly one payload field is live,
// selected by kind.
type entry struct {
	kind    lattice.Kind
	lww     lattice.LWW
	set     lattice.Set
	mapVal  lattice.Map
	counter lattice.Counter
}

// Store is a lattice key-value store shared by all simulated storage
// threads, standing in for a fully replicated tier.
type Store struct {
	mu      sync.Mutex
	entries map[protocol.ClientKey]*entry
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{entries: make(map[protocol.ClientKey]*entry)}
}

// Apply executes one key operation and returns the result tuple. Merge
// payloads arrive as opaque encoded lattice values and are decoded
// against the variant the operation implies; results are encoded back
// the same way.
func (s *Store) Apply(op protocol.KeyOperation, ts lattice.Clock) protocol.ResponseTuple {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch op.Type {
	case protocol.OpGet:
		e, ok := s.entries[op.Key]
		if !ok {
			return protocol.ResponseTuple{Key: op.Key, Err: protocol.ErrMsgKeyNotFound}
		}
		return result(op.Key, e)

	case protocol.OpPut:
		v, err := lattice.DecodeAs(op.Payload, lattice.KindBytes)
		if err != nil {
			return protocol.ResponseTuple{Key: op.Key, Err: err.Error()}
		}
		e := s.entry(op.Key, lattice.KindBytes)
		e.lww = e.lww.Merge(lattice.NewLWW(ts, v.Bytes))
		return result(op.Key, e)

	case protocol.OpSetAdd:
		v, err := lattice.DecodeAs(op.Payload, lattice.KindSet)
		if err != nil {
			return protocol.ResponseTuple{Key: op.Key, Err: err.Error()}
		}
		e := s.entry(op.Key, lattice.KindSet)
		e.set = e.set.Merge(lattice.Set(v.Set))
		return result(op.Key, e)

	case protocol.OpMapAdd:
		v, err := lattice.DecodeAs(op.Payload, lattice.KindMap)
		if err != nil {
			return protocol.ResponseTuple{Key: op.Key, Err: err.Error()}
		}
		e := s.entry(op.Key, lattice.KindMap)
		e.mapVal = e.mapVal.Merge(lattice.NewMap(ts, v.Map))
		return result(op.Key, e)

	case protocol.OpInc:
		v, err := lattice.DecodeAs(op.Payload, lattice.KindInt)
		if err != nil {
			return protocol.ResponseTuple{Key: op.Key, Err: err.Error()}
		}
		e := s.entry(op.Key, lattice.KindInt)
		e.counter = e.counter.Merge(lattice.Counter(v.Int))
		return result(op.Key, e)

	default:
		return protocol.ResponseTuple{Key: op.Key, Err: "unsupported operation"}
	}
}

// result renders the entry's current value as an encoded result tuple.
func result(key protocol.ClientKey, e *entry) protocol.ResponseTuple {
	payload, err := lattice.Encode(e.value())
	if err != nil {
		return protocol.ResponseTuple{Key: key, Err: err.Error()}
	}
	return protocol.ResponseTuple{Key: key, Payload: payload}
}

// SeedLWW installs a last-writer-wins value directly, bypassing the
// client under test. Tests use it to simulate externally committed
// writes.
func (s *Store) SeedLWW(key protocol.ClientKey, value []byte, ts lattice.Clock) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.entry(key, lattice.KindBytes)
	e.lww = e.lww.Merge(lattice.NewLWW(ts, value))
}

// entry fetches or creates the entry for a key. A fresh entry starts as
// the variant's bottom element.
func (s *Store) entry(key protocol.ClientKey, kind lattice.Kind) *entry {
	e, ok := s.entries[key]
	if !ok {
		e = &entry{kind: kind, set: lattice.Set{}, mapVal: lattice.Map{}}
		s.entries[key] = e
	}
	return e
}

// value renders the entry as the wire-level tagged union.
func (e *entry) value() lattice.Value {
	switch e.kind {
	case lattice.KindSet:
		return lattice.SetValue(e.set)
	case lattice.KindMap:
		return lattice.MapValue(e.mapVal.Fields())
	case lattice.KindInt:
		return lattice.IntValue(int64(e.counter))
	default:
		return lattice.BytesValue(e.lww.Value)
	}
}
