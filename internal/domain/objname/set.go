package objname

import "sort"

// Set is a value-deduplicated collection of names. Name holds a map and is not
// comparable, so membership is keyed by Name.Key.
type Set struct {
	m map[string]Name
}

// NewSet returns a set holding names.
func NewSet(names ...Name) Set {
	s := Set{m: make(map[string]Name, len(names))}
	s.AddAll(names...)
	return s
}

// Add inserts n. It reports whether n was not already present.
func (s *Set) Add(n Name) bool {
	if s.m == nil {
		s.m = make(map[string]Name)
	}
	k := n.Key()
	if _, ok := s.m[k]; ok {
		return false
	}
	s.m[k] = n
	return true
}

// AddAll inserts every name.
func (s *Set) AddAll(names ...Name) {
	for _, n := range names {
		s.Add(n)
	}
}

// Contains reports whether n is in the set.
func (s Set) Contains(n Name) bool {
	_, ok := s.m[n.Key()]
	return ok
}

// Len returns the number of names.
func (s Set) Len() int { return len(s.m) }

// Sorted returns the names ordered by their string form.
func (s Set) Sorted() []Name {
	out := make([]Name, 0, len(s.m))
	for _, n := range s.m {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out
}

// Union returns a new set holding every name of s and others.
func (s Set) Union(others ...Set) Set {
	out := NewSet()
	for _, n := range s.m {
		out.Add(n)
	}
	for _, o := range others {
		for _, n := range o.m {
			out.Add(n)
		}
	}
	return out
}

// Equal reports whether both sets hold the same names.
func (s Set) Equal(other Set) bool {
	if s.Len() != other.Len() {
		return false
	}
	for k := range s.m {
		if _, ok := other.m[k]; !ok {
			return false
		}
	}
	return true
}
