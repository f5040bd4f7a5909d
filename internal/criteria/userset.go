package criteria

// UserSet is a set of user identifiers produced by criterion evaluation.
type UserSet map[uint64]struct{}

// NewUserSet builds a set from the given user IDs.
func NewUserSet(ids ...uint64) UserSet {
	s := make(UserSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}

	return s
}

// Add inserts a user ID into the set.
func (s UserSet) Add(id uint64) {
	s[id] = struct{}{}
}

// Contains reports whether the set holds the given user ID.
func (s UserSet) Contains(id uint64) bool {
	_, ok := s[id]
	return ok
}

// Intersect returns a new set holding the IDs present in both sets.
func (s UserSet) Intersect(other UserSet) UserSet {
	smaller, larger := s, other
	if len(larger) < len(smaller) {
		smaller, larger = larger, smaller
	}

	out := make(UserSet)

	for id := range smaller {
		if _, ok := larger[id]; ok {
			out[id] = struct{}{}
		}
	}

	return out
}

// IDs returns the set's members as a slice. Order is not defined.
func (s UserSet) IDs() []uint64 {
	out := make([]uint64, 0, len(s))
	for id := range s {
		out = append(out, id)
	}

	return out
}
