package lattice

// Counter is a commutative integer counter. A write carries a signed
// delta, not an absolute value, so concurrent increments never overwrite
// each other.
type Counter int64

// Merge adds both counters. Addition is associative and commutative, so
// the counter converges to the sum of all applied deltas in any order.
func (c Counter) Merge(o Counter) Counter {
	return c + o
}
