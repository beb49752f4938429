package reactive

import (
	"iter"
	"slices"
)

// Object is the reactive view of a map[string]any. Keys keep insertion order; the keys
// present when the map was wrapped come first, sorted.
type Object struct {
	node
}

// Get returns the value under key, tracking the key. Nested containers come back as
// their cached views.
func (o *Object) Get(key string) any {
	o.rt.track(o.t, key)
	v, ok := o.t.object.get(key)
	if !ok {
		return nil
	}
	return o.child(key, v)
}

func (o *Object) child(key string, v any) any {
	return o.rt.view(o.t, key, objectPath(o.path, key), v, func(t *target) {
		o.t.object.vals[key] = t
	})
}

func (o *Object) Has(key string) bool {
	o.rt.track(o.t, key)
	_, ok := o.t.object.get(key)
	return ok
}

// Set writes key. Writing a value equal to the current one does nothing.
func (o *Object) Set(key string, v any) {
	v = stored(v)
	old, exists := o.t.object.get(key)
	if exists && o.rt.cmp.Equal(old, v) {
		return
	}
	o.t.object.set(key, v)
	if exists {
		o.rt.trigger(o.t, key)
		return
	}
	o.rt.trigger(o.t, key, keyIterate, keyLength)
}

func (o *Object) Delete(key string) bool {
	if !o.t.object.delete(key) {
		return false
	}
	o.rt.trigger(o.t, key, keyIterate, keyLength)
	return true
}

func (o *Object) Len() int {
	o.rt.track(o.t, keyLength)
	return o.t.object.len()
}

func (o *Object) Keys() []string {
	o.rt.track(o.t, keyIterate)
	return slices.Clone(o.t.object.keys)
}

// Values tracks every key as well as the key set.
func (o *Object) Values() []any {
	o.rt.track(o.t, keyIterate)
	keys := slices.Clone(o.t.object.keys)
	out := make([]any, 0, len(keys))
	for _, k := range keys {
		out = append(out, o.Get(k))
	}
	return out
}

func (o *Object) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		o.rt.track(o.t, keyIterate)
		for _, k := range slices.Clone(o.t.object.keys) {
			if !yield(k, o.Get(k)) {
				return
			}
		}
	}
}
