// Package client implements the access layer for the partitioned,
// replicated lattice key-value store. It locates which storage threads
// own a key, maintains persistent multiplexed connections to those
// threads, correlates concurrent outstanding requests with their
// eventual responses, and exposes lattice-aware operations plus a
// read-committed transaction abstraction on top.
//
// The package focuses on:
//   - Address resolution with two monotonically growing caches: key to
//     owning thread set and thread to transport endpoint. A cache miss
//     triggers one resolution round trip against a uniformly random
//     routing thread; everything the response carries is merged into
//     both caches.
//   - Request correlation: every request carries a unique id; a one-shot
//     completion slot per id rendezvouses the awaiting caller with the
//     background receive goroutine that eventually delivers the response.
//   - Lattice-aware operations: PutLWW, GetLWW, AddSet, GetSet, AddMap,
//     GetMap and Inc. Writes are merges, never overwrites; a counter
//     increment carries a signed delta and returns the merged value.
//
// Usage Example:
//
//	cfg := protocol.ClientConfig{
//		RoutingIP:       "127.0.0.1",
//		RoutingPortBase: 12340,
//		RoutingThreads:  1,
//		Timeout:         10 * time.Second,
//	}
//
//	c, _ := client.New(cfg, serializer.NewJSONSerializer())
//	defer c.Close()
//
//	c.PutLWW("time", []byte("2024-01-01T00:00:00Z"))
//	value, _ := c.GetLWW("time")
//
//	tx := c.BeginTransaction()
//	tx.PutLWW("a", []byte("1"))
//	tx.Commit()
//
// Known limitations: cache entries are never invalidated, not even on
// stale-address errors from storage; the caches only ever grow. A failed
// transaction commit may leave part of the buffer applied.
//
// Thread Safety:
//
//	The client is safe for concurrent use from multiple goroutines.
//	Transactions are not: one transaction belongs to one logical unit of
//	work.
package client
