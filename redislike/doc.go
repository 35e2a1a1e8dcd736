// Package redislike offers a Redis-flavored facade over the lattice
// client. Commands are named after their Redis counterparts (Get, Set,
// SAdd, HSet, Incr) and accept Go values directly, converting them to
// byte strings on the wire.
//
// The facade does not change the underlying semantics: Set is still a
// last-writer-wins merge, SAdd still grows a set that nothing removes
// from, and SetNX is only best-effort since the store has no atomic
// compare-and-set.
package redislike
