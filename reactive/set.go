package reactive

import (
	"iter"
	"slices"
)

// Set is the reactive view of a mapset.Set[any], iterated in insertion order.
type Set struct {
	node
}

func (s *Set) Has(member any) bool {
	member = stored(member)
	if !hashable(member) {
		return false
	}
	s.rt.track(s.t, member)
	return s.t.members.Contains(member)
}

// Add inserts member and reports whether it was new. It panics with ErrUnhashableKey
// when member cannot be a map key.
func (s *Set) Add(member any) bool {
	member = stored(member)
	mustHash(member)
	if s.t.members.Contains(member) {
		return false
	}
	s.t.members.Add(member)
	s.t.order = append(s.t.order, member)
	s.rt.trigger(s.t, member, keyIterate, keyLength)
	s.rt.bubble(s.t)
	return true
}

func (s *Set) Delete(member any) bool {
	member = stored(member)
	if !hashable(member) || !s.t.members.Contains(member) {
		return false
	}
	s.t.members.Remove(member)
	if i := slices.Index(s.t.order, member); i >= 0 {
		s.t.order = slices.Delete(s.t.order, i, i+1)
	}
	s.rt.trigger(s.t, member, keyIterate, keyLength)
	s.rt.bubble(s.t)
	return true
}

func (s *Set) Clear() {
	if len(s.t.order) == 0 {
		return
	}
	members := s.t.order
	s.t.order = nil
	s.t.members.Clear()
	for _, m := range members {
		s.rt.trigger(s.t, m)
	}
	s.rt.trigger(s.t, keyIterate, keyLength)
	s.rt.bubble(s.t)
}

func (s *Set) Size() int {
	s.rt.track(s.t, keyLength)
	return len(s.t.order)
}

// Values returns the members in insertion order. Members that are reactive containers
// come back as their views.
func (s *Set) Values() []any {
	s.rt.track(s.t, keyIterate)
	out := make([]any, len(s.t.order))
	for i, m := range s.t.order {
		out[i] = s.member(m)
	}
	return out
}

func (s *Set) member(m any) any {
	t, ok := m.(*target)
	if !ok {
		return m
	}
	t.addParent(s.t, m)
	return s.rt.wrapperFor(t, keyPath(s.path, t))
}

func (s *Set) All() iter.Seq[any] {
	return func(yield func(any) bool) {
		s.rt.track(s.t, keyIterate)
		for _, m := range slices.Clone(s.t.order) {
			if !yield(s.member(m)) {
				return
			}
		}
	}
}
