// Package transport implements the multiplexed connection layer between
// the client and the routing and storage tiers. It maintains one duplex
// TCP connection per distinct endpoint, shared by all in-flight requests
// to that endpoint.
//
// The package focuses on:
//   - Lazy connection establishment: a connection is dialed on first send
//     to its endpoint and cached for the lifetime of the multiplexer
//   - Frame-based message protocol: every message is written as one
//     length-prefixed frame, so concurrent writers never interleave
//     partial messages
//   - Background demultiplexing: exactly one receive goroutine per
//     connection decodes inbound frames and hands them to the registered
//     InboundHandler; responses for different requests may arrive in any
//     order
//   - Full duplex: the write path is guarded by a per-connection mutex,
//     reads are never excluded against writes
//
// Key Components:
//
//   - IConnector: Interface for protocol-specific dialing that allows
//     extending the multiplexer with different network protocols.
//
//   - Mux: Core multiplexer owning the connection table and the receive
//     goroutines.
//
// Error handling: a failed dial surfaces immediately as ConnectFailed.
// An unexpected frame kind is a protocol violation that is fatal to that
// connection's receive loop; the connection is dropped from the table so
// the next send to the endpoint dials a fresh one.
package transport
