// Package kvstest provides an in-process fake of the routing and
// storage tiers for package tests. The fake speaks the real wire
// protocol over real TCP sockets: one routing listener answering
// address requests and one listener per simulated storage thread
// executing key operations against a shared lattice store.
//
// The fake implements the same merge semantics the real storage tier
// guarantees, so end-to-end tests exercise the full client pipeline:
// address resolution, connection multiplexing, request correlation and
// lattice decoding.
package kvstest
