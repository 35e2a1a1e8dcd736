package lattice

// Set is a grow-only set of opaque byte strings. Elements are keyed by
// their exact byte content.
type Set map[string]bool

// NewSet creates a set containing the given elements.
func NewSet(elems ...[]byte) Set {
	s := make(Set, len(elems))
	for _, e := range elems {
		s[string(e)] = true
	}
	return s
}

// Add inserts an element into the set.
func (s Set) Add(elem []byte) {
	s[string(elem)] = true
}

// Contains reports whether the set holds the given element.
func (s Set) Contains(elem []byte) bool {
	_, ok := s[string(elem)]
	return ok
}

// Merge returns the union of both sets. Neither input is modified.
func (s Set) Merge(o Set) Set {
	merged := make(Set, len(s)+len(o))
	for e := range s {
		merged[e] = true
	}
	for e := range o {
		merged[e] = true
	}
	return merged
}
