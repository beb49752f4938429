package reactive

import (
	"iter"
	"slices"

	"github.com/juju/errors"
)

// Map is the reactive view of a map[any]any, iterated in insertion order.
type Map struct {
	node
}

func mustHash(k any) {
	if !hashable(k) {
		panic(errors.Annotatef(ErrUnhashableKey, "%T", k))
	}
}

func (m *Map) Get(key any) any {
	key = stored(key)
	if !hashable(key) {
		return nil
	}
	m.rt.track(m.t, key)
	v, ok := m.t.entries.get(key)
	if !ok {
		return nil
	}
	return m.child(key, v)
}

func (m *Map) child(key, v any) any {
	return m.rt.view(m.t, key, keyPath(m.path, key), v, func(t *target) {
		m.t.entries.vals[key] = t
	})
}

func (m *Map) Has(key any) bool {
	key = stored(key)
	if !hashable(key) {
		return false
	}
	m.rt.track(m.t, key)
	_, ok := m.t.entries.get(key)
	return ok
}

// Set writes key. It panics with ErrUnhashableKey when key cannot be a map key.
func (m *Map) Set(key, v any) {
	key = stored(key)
	mustHash(key)
	v = stored(v)
	old, exists := m.t.entries.get(key)
	if exists && m.rt.cmp.Equal(old, v) {
		return
	}
	m.t.entries.set(key, v)
	if exists {
		m.rt.trigger(m.t, key)
	} else {
		m.rt.trigger(m.t, key, keyIterate, keyLength)
	}
	m.rt.bubble(m.t)
}

func (m *Map) Delete(key any) bool {
	key = stored(key)
	if !hashable(key) || !m.t.entries.delete(key) {
		return false
	}
	m.rt.trigger(m.t, key, keyIterate, keyLength)
	m.rt.bubble(m.t)
	return true
}

func (m *Map) Clear() {
	if m.t.entries.len() == 0 {
		return
	}
	keys := slices.Clone(m.t.entries.keys)
	m.t.entries.clear()
	for _, k := range keys {
		m.rt.trigger(m.t, k)
	}
	m.rt.trigger(m.t, keyIterate, keyLength)
	m.rt.bubble(m.t)
}

func (m *Map) Size() int {
	m.rt.track(m.t, keyLength)
	return m.t.entries.len()
}

func (m *Map) Keys() []any {
	m.rt.track(m.t, keyIterate)
	out := make([]any, 0, m.t.entries.len())
	for _, k := range m.t.entries.keys {
		out = append(out, m.key(k))
	}
	return out
}

// key exposes a container used as a key through its view.
func (m *Map) key(k any) any {
	t, ok := k.(*target)
	if !ok {
		return k
	}
	return m.rt.wrapperFor(t, keyPath(m.path, t))
}

// Values tracks every key as well as the key set.
func (m *Map) Values() []any {
	m.rt.track(m.t, keyIterate)
	keys := slices.Clone(m.t.entries.keys)
	out := make([]any, 0, len(keys))
	for _, k := range keys {
		out = append(out, m.Get(k))
	}
	return out
}

func (m *Map) All() iter.Seq2[any, any] {
	return func(yield func(any, any) bool) {
		m.rt.track(m.t, keyIterate)
		for _, k := range slices.Clone(m.t.entries.keys) {
			if !yield(m.key(k), m.Get(k)) {
				return
			}
		}
	}
}
