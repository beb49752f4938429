package reactive

import (
	"slices"
)

// ordered is a map that remembers insertion order.
type ordered[K comparable, V any] struct {
	keys []K
	vals map[K]V
}

func newOrdered[K comparable, V any](vals map[K]V, keys []K) *ordered[K, V] {
	if vals == nil {
		vals = map[K]V{}
	}
	return &ordered[K, V]{keys: keys, vals: vals}
}

func (o *ordered[K, V]) len() int {
	return len(o.keys)
}

func (o *ordered[K, V]) get(k K) (V, bool) {
	v, ok := o.vals[k]
	return v, ok
}

// set stores v and reports whether k is new.
func (o *ordered[K, V]) set(k K, v V) bool {
	_, exists := o.vals[k]
	o.vals[k] = v
	if !exists {
		o.keys = append(o.keys, k)
	}
	return !exists
}

func (o *ordered[K, V]) delete(k K) bool {
	if _, ok := o.vals[k]; !ok {
		return false
	}
	delete(o.vals, k)
	if i := slices.Index(o.keys, k); i >= 0 {
		o.keys = slices.Delete(o.keys, i, i+1)
	}
	return true
}

func (o *ordered[K, V]) clear() {
	clear(o.vals)
	o.keys = o.keys[:0]
}
