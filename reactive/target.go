package reactive

import (
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

type kind uint8

const (
	kindObject kind = iota + 1
	kindArray
	kindMap
	kindSet
)

// sentinel keys never collide with user keys because the type is unexported.
type sentinel uint8

const (
	// keyLength is read by Len and Size.
	keyLength sentinel = iota + 1
	// keyIterate is read by anything that walks all keys.
	keyIterate
	// keyStructure is the array structural version. Index reads subscribe to it so a
	// structural mutation reaches them without diffing indices.
	keyStructure
)

func (k sentinel) String() string {
	switch k {
	case keyLength:
		return "<length>"
	case keyIterate:
		return "<iterate>"
	case keyStructure:
		return "<structure>"
	}
	return "<unknown>"
}

type parentRef struct {
	t   *target
	key any
}

// target is the runtime-owned container behind a wrapper. Its handle is the identity
// used for dependency buckets and the wrapper cache.
type target struct {
	handle  uint64
	ident   uintptr
	kind    kind
	object  *ordered[string, any]
	array   []any
	entries *ordered[any, any]
	members mapset.Set[any]
	order   []any
	parents []parentRef
}

func (t *target) addParent(parent *target, key any) {
	for _, p := range t.parents {
		if p.t == parent && p.key == key {
			return
		}
	}
	t.parents = append(t.parents, parentRef{t: parent, key: key})
}

// data exposes the backing container as plain Go data for the comparator.
func (t *target) data() any {
	switch t.kind {
	case kindObject:
		return t.object.vals
	case kindArray:
		return t.array
	case kindMap:
		return t.entries.vals
	case kindSet:
		return t.members
	}
	return nil
}

// children lists the stored values that may hold further targets.
func (t *target) children() []any {
	switch t.kind {
	case kindObject:
		out := make([]any, 0, t.object.len())
		for _, k := range t.object.keys {
			out = append(out, t.object.vals[k])
		}
		return out
	case kindArray:
		return t.array
	case kindMap:
		out := make([]any, 0, t.entries.len())
		for _, k := range t.entries.keys {
			out = append(out, t.entries.vals[k])
		}
		return out
	case kindSet:
		return t.order
	}
	return nil
}

func identity(v any) uintptr {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Pointer:
		if rv.IsNil() {
			return 0
		}
		return rv.Pointer()
	}
	return 0
}

// adopt returns the target for a container value, creating it the first time a plain
// map, slice or set is seen. Plain maps and sets are recognized again by identity, so
// the same map reached through two keys shares one target. ok is false for values that
// are not containers.
func (rt *Runtime) adopt(v any) (t *target, ok bool) {
	switch x := v.(type) {
	case *target:
		return x, true
	case Wrapper:
		return x.target(), true
	case map[string]any:
		return rt.adoptIdentified(x, func(t *target) {
			keys := make([]string, 0, len(x))
			for k := range x {
				keys = append(keys, k)
			}
			slices.Sort(keys)
			if x == nil {
				x = map[string]any{}
			}
			t.kind = kindObject
			t.object = newOrdered(x, keys)
		}), true
	case []any:
		t := rt.newTarget(0)
		t.kind = kindArray
		t.array = x
		return t, true
	case map[any]any:
		return rt.adoptIdentified(x, func(t *target) {
			keys := make([]any, 0, len(x))
			for k := range x {
				keys = append(keys, k)
			}
			sortAny(keys)
			if x == nil {
				x = map[any]any{}
			}
			t.kind = kindMap
			t.entries = newOrdered(x, keys)
		}), true
	case mapset.Set[any]:
		if x == nil {
			return nil, false
		}
		return rt.adoptIdentified(x, func(t *target) {
			order := x.ToSlice()
			sortAny(order)
			t.kind = kindSet
			t.members = x
			t.order = order
		}), true
	}
	return nil, false
}

func (rt *Runtime) adoptIdentified(v any, init func(*target)) *target {
	id := identity(v)
	if id != 0 {
		if t, ok := rt.adopted[id]; ok {
			return t
		}
	}
	t := rt.newTarget(id)
	init(t)
	if id != 0 {
		rt.adopted[id] = t
	}
	return t
}

func (rt *Runtime) newTarget(ident uintptr) *target {
	rt.handles++
	t := &target{handle: rt.handles, ident: ident}
	rt.live[t.handle] = t
	return t
}

// sortAny gives keys of unordered containers a deterministic starting order.
func sortAny(keys []any) {
	slices.SortStableFunc(keys, func(a, b any) int {
		return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
	})
}

// stored converts a value written through a wrapper into its stored form.
func stored(v any) any {
	if w, ok := v.(Wrapper); ok {
		return w.target()
	}
	return v
}

func (rt *Runtime) unwrapForCompare(v any) any {
	switch x := v.(type) {
	case *target:
		return x.data()
	case Wrapper:
		return x.target().data()
	}
	return v
}

func hashable(k any) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	_ = map[any]struct{}{k: {}}
	return true
}

func objectPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func indexPath(path string, i int) string {
	return path + "[" + strconv.Itoa(i) + "]"
}

func keyPath(path string, k any) string {
	if t, ok := k.(*target); ok {
		return path + "[#" + strconv.FormatUint(t.handle, 10) + "]"
	}
	return path + "[" + fmt.Sprint(k) + "]"
}
