package reactive

import (
	mapset "github.com/deckarep/golang-set/v2"
)

// Wrapper is implemented by the reactive views *Object, *Array, *Map and *Set.
type Wrapper interface {
	// Handle is the stable identity of the wrapped container.
	Handle() uint64
	// Path is the access path the wrapper was reached through; empty for roots.
	Path() string
	// Raw returns a deep plain copy of the current contents.
	Raw() any

	target() *target
}

type node struct {
	rt   *Runtime
	t    *target
	path string
}

func (n *node) Handle() uint64 {
	return n.t.handle
}

func (n *node) Path() string {
	return n.path
}

func (n *node) Raw() any {
	return n.rt.raw(n.t, map[any]any{})
}

func (n *node) Runtime() *Runtime {
	return n.rt
}

func (n *node) target() *target {
	return n.t
}

// Wrap returns a reactive view of v. map[string]any becomes an *Object, []any an
// *Array, map[any]any a *Map and mapset.Set[any] a *Set; anything else is returned
// unchanged. The runtime takes ownership of wrapped containers: mutate them only
// through their views afterwards. Wrapping the same map twice yields the same view.
func (rt *Runtime) Wrap(v any) any {
	if w, ok := v.(Wrapper); ok {
		return w
	}
	t, ok := rt.adopt(v)
	if !ok {
		return v
	}
	return rt.wrapperFor(t, "")
}

func (rt *Runtime) Object(m map[string]any) *Object {
	return rt.Wrap(m).(*Object)
}

func (rt *Runtime) Array(s []any) *Array {
	if s == nil {
		s = []any{}
	}
	return rt.Wrap(s).(*Array)
}

func (rt *Runtime) Map(m map[any]any) *Map {
	return rt.Wrap(m).(*Map)
}

func (rt *Runtime) Set(s mapset.Set[any]) *Set {
	if s == nil {
		s = mapset.NewThreadUnsafeSet[any]()
	}
	return rt.Wrap(s).(*Set)
}

func (rt *Runtime) wrapperFor(t *target, path string) Wrapper {
	if w, ok := rt.cache.get(t.handle, path); ok {
		return w
	}
	n := node{rt: rt, t: t, path: path}
	var w Wrapper
	switch t.kind {
	case kindObject:
		w = &Object{node: n}
	case kindArray:
		w = &Array{node: n}
	case kindMap:
		w = &Map{node: n}
	case kindSet:
		w = &Set{node: n}
	}
	rt.cache.put(t.handle, path, w)
	return w
}

// view exposes a value read from parent under key. Containers are adopted, written
// back through replace the first time so later reads find the same target, linked to
// their parent for bubbling and returned as the cached wrapper for path.
func (rt *Runtime) view(parent *target, key any, path string, v any, replace func(*target)) any {
	t, ok := rt.adopt(v)
	if !ok {
		return v
	}
	if _, isTarget := v.(*target); !isTarget && replace != nil {
		replace(t)
	}
	t.addParent(parent, key)
	return rt.wrapperFor(t, path)
}

// bubble notifies whoever watches the keys that expose t in its parents.
func (rt *Runtime) bubble(t *target) {
	for _, p := range t.parents {
		rt.trigger(p.t, p.key)
	}
}

// raw deep copies a stored value into plain Go data without adopting anything. seen
// keeps shared and cyclic containers shared in the copy.
func (rt *Runtime) raw(v any, seen map[any]any) any {
	switch x := v.(type) {
	case Wrapper:
		return rt.raw(x.target(), seen)
	case *target:
		if out, ok := seen[x]; ok {
			return out
		}
		switch x.kind {
		case kindObject:
			return rawObject(rt, x, x.object.keys, x.object.vals, seen)
		case kindArray:
			return rawArray(rt, x, x.array, seen)
		case kindMap:
			return rawMap(rt, x, x.entries.keys, x.entries.vals, seen)
		case kindSet:
			return rawSet(rt, x, x.order, seen)
		}
	case map[string]any:
		if out, ok := seen[identity(x)]; ok && x != nil {
			return out
		}
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		return rawObject(rt, identity(x), keys, x, seen)
	case []any:
		return rawArray(rt, nil, x, seen)
	case map[any]any:
		if out, ok := seen[identity(x)]; ok && x != nil {
			return out
		}
		keys := make([]any, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		return rawMap(rt, identity(x), keys, x, seen)
	case mapset.Set[any]:
		if x == nil {
			return x
		}
		return rawSet(rt, identity(x), x.ToSlice(), seen)
	}
	return v
}

func rawObject(rt *Runtime, memo any, keys []string, vals map[string]any, seen map[any]any) map[string]any {
	out := make(map[string]any, len(keys))
	seen[memo] = out
	for _, k := range keys {
		out[k] = rt.raw(vals[k], seen)
	}
	return out
}

func rawArray(rt *Runtime, memo any, vals []any, seen map[any]any) []any {
	out := make([]any, len(vals))
	if memo != nil {
		seen[memo] = out
	}
	for i, x := range vals {
		out[i] = rt.raw(x, seen)
	}
	return out
}

func rawMap(rt *Runtime, memo any, keys []any, vals map[any]any, seen map[any]any) map[any]any {
	out := make(map[any]any, len(keys))
	seen[memo] = out
	for _, k := range keys {
		out[k] = rt.raw(vals[k], seen)
	}
	return out
}

func rawSet(rt *Runtime, memo any, members []any, seen map[any]any) mapset.Set[any] {
	out := mapset.NewThreadUnsafeSet[any]()
	seen[memo] = out
	for _, m := range members {
		out.Add(rt.raw(m, seen))
	}
	return out
}

// Release tears down a wrapped value and the containers reachable only through it:
// dependency buckets, cached wrappers and identity records. A nested container that is
// also referenced from outside the released tree is left alone, along with everything
// below it. Effects that depended on released containers keep running but are no
// longer notified by them. It returns how many containers were released.
func (rt *Runtime) Release(v any) int {
	var root *target
	switch x := v.(type) {
	case Wrapper:
		root = x.target()
	case *target:
		root = x
	default:
		t, ok := rt.adopted[identity(v)]
		if !ok {
			return 0
		}
		root = t
	}

	tree := map[*target]bool{}
	stack := []*target{root}
	for len(stack) > 0 {
		t := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if tree[t] {
			continue
		}
		tree[t] = true
		for _, c := range t.children() {
			switch c := c.(type) {
			case *target:
				stack = append(stack, c)
			case Wrapper:
				stack = append(stack, c.target())
			}
		}
	}

	// Drop shared containers until every remaining one is owned from inside the tree.
	for changed := true; changed; {
		changed = false
		for t := range tree {
			if t != root && rt.sharedOutside(t, tree) {
				delete(tree, t)
				changed = true
			}
		}
	}

	released := 0
	for t := range tree {
		if _, live := rt.live[t.handle]; !live {
			continue
		}
		rt.store.Release(t.handle)
		rt.cache.release(t.handle)
		delete(rt.live, t.handle)
		if t.ident != 0 {
			delete(rt.adopted, t.ident)
		}
		released++
	}
	return released
}

// sharedOutside reports whether a live container outside tree still references t.
func (rt *Runtime) sharedOutside(t *target, tree map[*target]bool) bool {
	for _, p := range t.parents {
		if tree[p.t] {
			continue
		}
		if _, live := rt.live[p.t.handle]; live {
			return true
		}
	}
	return false
}
