package lattice

// Map is a string keyed map whose fields are last-writer-wins registers.
// Merging is a key-wise union: fields present on only one side are kept,
// fields present on both sides are resolved like LWW registers.
type Map map[string]LWW

// NewMap creates a map from raw fields, stamping every field with the
// same clock.
func NewMap(clock Clock, fields map[string][]byte) Map {
	m := make(Map, len(fields))
	for k, v := range fields {
		m[k] = NewLWW(clock, v)
	}
	return m
}

// Merge returns the key-wise union of both maps. Neither input is
// modified.
func (m Map) Merge(o Map) Map {
	merged := make(Map, len(m)+len(o))
	for k, v := range m {
		merged[k] = v
	}
	for k, v := range o {
		if existing, ok := merged[k]; ok {
			merged[k] = existing.Merge(v)
		} else {
			merged[k] = v
		}
	}
	return merged
}

// Fields flattens the map to its raw field payloads, dropping the clocks.
func (m Map) Fields() map[string][]byte {
	fields := make(map[string][]byte, len(m))
	for k, v := range m {
		fields[k] = v.Value
	}
	return fields
}
