package bucket

// Store owns every bucket of a runtime. It replaces weak target maps with an explicit
// arena: buckets live until their target is released or they are pruned.
type Store struct {
	targets map[uint64]map[any]*Bucket
	count   int
}

func NewStore() *Store {
	return &Store{
		targets: map[uint64]map[any]*Bucket{},
	}
}

// Bucket returns the bucket for (target, key), creating it on first use.
func (s *Store) Bucket(target uint64, key any) *Bucket {
	keys, ok := s.targets[target]
	if !ok {
		keys = map[any]*Bucket{}
		s.targets[target] = keys
	}
	b, ok := keys[key]
	if !ok {
		b = newBucket(ID{Target: target, Key: key})
		keys[key] = b
		s.count++
	}
	return b
}

// Lookup returns the bucket for (target, key) without creating it.
func (s *Store) Lookup(target uint64, key any) (*Bucket, bool) {
	b, ok := s.targets[target][key]
	return b, ok
}

// Track registers sub on (target, key). Repeated reads within one run land on the same
// slot and report added == false.
func (s *Store) Track(target uint64, key any, sub Subscriber) (b *Bucket, slot int, added bool) {
	b = s.Bucket(target, key)
	slot, added = b.Add(sub)
	return b, slot, added
}

// Untrack removes sub from (target, key) if it is registered there.
func (s *Store) Untrack(sub Subscriber, target uint64, key any) bool {
	b, ok := s.Lookup(target, key)
	if !ok {
		return false
	}
	return b.Remove(sub, -1)
}

// Bump increments the version of (target, key) and returns it.
func (s *Store) Bump(target uint64, key any) uint64 {
	return s.Bucket(target, key).Bump()
}

// Release drops every bucket of target.
func (s *Store) Release(target uint64) int {
	keys, ok := s.targets[target]
	if !ok {
		return 0
	}
	n := len(keys)
	s.count -= n
	delete(s.targets, target)
	return n
}

// Prune drops buckets that have no subscribers left and returns how many went. A key
// that is tracked again after pruning starts over at version zero.
func (s *Store) Prune() int {
	pruned := 0
	for target, keys := range s.targets {
		for key, b := range keys {
			if b.live == 0 {
				delete(keys, key)
				pruned++
			}
		}
		if len(keys) == 0 {
			delete(s.targets, target)
		}
	}
	s.count -= pruned
	return pruned
}

type Stats struct {
	Targets     int
	Buckets     int
	Subscribers int
}

func (s *Store) Stats() Stats {
	st := Stats{Targets: len(s.targets), Buckets: s.count}
	for _, keys := range s.targets {
		for _, b := range keys {
			st.Subscribers += b.live
		}
	}
	return st
}
