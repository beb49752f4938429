// Package bucket is the dependency registry of the reactive engine.
//
// A Bucket belongs to one (target, key) pair and holds the ordered subscribers that
// currently depend on that key together with a version that moves on every committed
// write. Subscribers occupy stable integer slots so they can be removed in O(1) through
// a reverse index instead of by scanning.
package bucket

// Subscriber is anything that can be told a dependency changed.
type Subscriber interface {
	Notify()
}

// ID names a bucket: a target handle plus the key read on that target.
type ID struct {
	Target uint64
	Key    any
}

type Bucket struct {
	id      ID
	slots   []Subscriber
	index   map[Subscriber]int
	live    int
	version uint64
}

func newBucket(id ID) *Bucket {
	return &Bucket{
		id:    id,
		index: map[Subscriber]int{},
	}
}

func (b *Bucket) ID() ID {
	return b.id
}

// Version is the number of committed writes to this bucket's key.
func (b *Bucket) Version() uint64 {
	return b.version
}

// Len is the number of live subscribers.
func (b *Bucket) Len() int {
	return b.live
}

func (b *Bucket) Has(sub Subscriber) bool {
	_, ok := b.index[sub]
	return ok
}

// Add registers sub and returns its slot. A subscriber that is already present keeps
// its slot and added is false.
func (b *Bucket) Add(sub Subscriber) (slot int, added bool) {
	if slot, ok := b.index[sub]; ok {
		return slot, false
	}
	slot = len(b.slots)
	b.slots = append(b.slots, sub)
	b.index[sub] = slot
	b.live++
	return slot, true
}

// Remove tombstones sub. The slot is only a hint; the reverse index is authoritative
// because compaction may have moved the subscriber.
func (b *Bucket) Remove(sub Subscriber, slot int) bool {
	current, ok := b.index[sub]
	if !ok {
		return false
	}
	if slot < 0 || slot >= len(b.slots) || b.slots[slot] != sub {
		slot = current
	}
	b.slots[slot] = nil
	delete(b.index, sub)
	b.live--
	if len(b.slots) > 8 && b.live < len(b.slots)/2 {
		b.compact()
	}
	return true
}

func (b *Bucket) compact() {
	n := 0
	for _, sub := range b.slots {
		if sub == nil {
			continue
		}
		b.slots[n] = sub
		b.index[sub] = n
		n++
	}
	clear(b.slots[n:])
	b.slots = b.slots[:n]
}

// Bump records a committed write and returns the new version.
func (b *Bucket) Bump() uint64 {
	b.version++
	return b.version
}

// Subscribers returns the live subscribers in registration order. The result is a copy
// so callers may notify while subscribers detach.
func (b *Bucket) Subscribers() []Subscriber {
	if b.live == 0 {
		return nil
	}
	subs := make([]Subscriber, 0, b.live)
	for _, sub := range b.slots {
		if sub != nil {
			subs = append(subs, sub)
		}
	}
	return subs
}
