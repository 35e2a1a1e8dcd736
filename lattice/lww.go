package lattice

// LWW is a last-writer-wins register: an opaque payload tagged with the
// clock of the write that produced it.
type LWW struct {
	Clock Clock  `json:"clock"`
	Value []byte `json:"value"`
}

// NewLWW creates a register holding value written at the given clock.
func NewLWW(clock Clock, value []byte) LWW {
	return LWW{Clock: clock, Value: value}
}

// Merge resolves two registers by keeping the one with the greater clock.
// The resolution is deterministic for equal clock times (the writer field
// breaks the tie), so Merge is commutative and associative.
func (l LWW) Merge(o LWW) LWW {
	if l.Clock.Before(o.Clock) {
		return o
	}
	return l
}
