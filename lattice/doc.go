// Package lattice defines the mergeable value types understood by the
// key-value store: last-writer-wins registers, sets, maps and counters.
//
// Every type carries a Merge operation that is associative, commutative
// and idempotent (counters are associative and commutative only), so that
// concurrent writes to the same key always converge regardless of the
// order in which replicas observe them.
//
// The package focuses on:
//   - Pure data and algebra: no I/O, no locking, no allocation sharing
//     between inputs and merge results
//   - A tagged union (Value) that mirrors the wire representation of a
//     lattice value in a storage response
//   - A compact binary encoding of values to the opaque byte payload
//     exchanged with the storage layer
//
// Merge laws:
//
//   - LWW: the value with the greater clock wins; equal clock times are
//     resolved deterministically by the writer identity, which keeps the
//     merge commutative.
//
//   - Set: union of both element sets.
//
//   - Map: key-wise union, each field resolved as an LWW register.
//
//   - Counter: addition. Increments commute, so the counter converges to
//     the sum of all applied deltas.
package lattice
