package reactive

import (
	"fmt"
	"iter"
	"slices"
)

// Array is the reactive view of a []any.
//
// Index reads subscribe to the index and to the array's structural version. Writes to
// an index notify that index only, plus the length when it grows the array. Structural
// methods (Push, Pop, Shift, Unshift, Splice, Sort, Reverse, SetLen) notify the
// structural version, the length and the parents exposing the array; they do not work
// out which indices moved.
type Array struct {
	node
}

func (a *Array) Get(i int) any {
	a.rt.track(a.t, i)
	a.rt.track(a.t, keyStructure)
	if i < 0 || i >= len(a.t.array) {
		return nil
	}
	return a.child(i, a.t.array[i])
}

func (a *Array) child(i int, v any) any {
	return a.rt.view(a.t, i, indexPath(a.path, i), v, func(t *target) {
		a.t.array[i] = t
	})
}

// removed exposes a value that is no longer part of the array.
func (a *Array) removed(i int, v any) any {
	t, ok := a.rt.adopt(v)
	if !ok {
		return v
	}
	return a.rt.wrapperFor(t, indexPath(a.path, i))
}

func (a *Array) Len() int {
	a.rt.track(a.t, keyLength)
	return len(a.t.array)
}

// Set writes index i, growing the array with nils when i is past the end.
func (a *Array) Set(i int, v any) {
	if i < 0 {
		panic(fmt.Sprintf("reactive: negative array index %d", i))
	}
	v = stored(v)
	n := len(a.t.array)
	if i < n && a.rt.cmp.Equal(a.t.array[i], v) {
		return
	}
	if i >= n {
		a.t.array = append(a.t.array, make([]any, i-n+1)...)
	}
	a.t.array[i] = v

	a.rt.trigger(a.t, i)
	a.rt.bubble(a.t)
	if len(a.t.array) != n {
		a.rt.trigger(a.t, keyLength, keyIterate)
	}
}

func (a *Array) structural() {
	a.rt.trigger(a.t, keyStructure)
	a.rt.bubble(a.t)
	a.rt.trigger(a.t, keyLength, keyIterate)
}

// Push appends values and returns the new length.
func (a *Array) Push(vs ...any) int {
	if len(vs) == 0 {
		return len(a.t.array)
	}
	for _, v := range vs {
		a.t.array = append(a.t.array, stored(v))
	}
	a.structural()
	return len(a.t.array)
}

func (a *Array) Pop() any {
	n := len(a.t.array)
	if n == 0 {
		return nil
	}
	v := a.t.array[n-1]
	a.t.array[n-1] = nil
	a.t.array = a.t.array[:n-1]
	a.structural()
	return a.removed(n-1, v)
}

func (a *Array) Shift() any {
	if len(a.t.array) == 0 {
		return nil
	}
	v := a.t.array[0]
	a.t.array = slices.Delete(a.t.array, 0, 1)
	a.structural()
	return a.removed(0, v)
}

// Unshift prepends values and returns the new length.
func (a *Array) Unshift(vs ...any) int {
	if len(vs) == 0 {
		return len(a.t.array)
	}
	items := make([]any, len(vs))
	for i, v := range vs {
		items[i] = stored(v)
	}
	a.t.array = slices.Insert(a.t.array, 0, items...)
	a.structural()
	return len(a.t.array)
}

// Splice removes deleteCount values at start, inserts items there and returns what was
// removed. A negative start counts from the end; both bounds are clamped.
func (a *Array) Splice(start, deleteCount int, items ...any) []any {
	n := len(a.t.array)
	if start < 0 {
		start = max(n+start, 0)
	}
	start = min(start, n)
	deleteCount = min(max(deleteCount, 0), n-start)
	if deleteCount == 0 && len(items) == 0 {
		return nil
	}

	removed := make([]any, deleteCount)
	for i := range removed {
		removed[i] = a.removed(start+i, a.t.array[start+i])
	}
	inserted := make([]any, len(items))
	for i, v := range items {
		inserted[i] = stored(v)
	}
	a.t.array = slices.Replace(a.t.array, start, start+deleteCount, inserted...)
	a.structural()
	return removed
}

// Sort orders the array by cmp, which sees the same values Get returns. The sort is
// stable.
func (a *Array) Sort(cmp func(x, y any) int) {
	n := len(a.t.array)
	if n < 2 {
		return
	}
	type pair struct {
		view, stored any
	}
	pairs := make([]pair, n)
	a.rt.Untracked(func() {
		for i := range a.t.array {
			pairs[i] = pair{view: a.child(i, a.t.array[i])}
			pairs[i].stored = a.t.array[i]
		}
	})
	slices.SortStableFunc(pairs, func(x, y pair) int {
		return cmp(x.view, y.view)
	})
	for i, p := range pairs {
		a.t.array[i] = p.stored
	}
	a.structural()
}

func (a *Array) Reverse() {
	if len(a.t.array) < 2 {
		return
	}
	slices.Reverse(a.t.array)
	a.structural()
}

// SetLen truncates or extends the array with nils.
func (a *Array) SetLen(n int) {
	if n < 0 {
		panic(fmt.Sprintf("reactive: negative array length %d", n))
	}
	cur := len(a.t.array)
	switch {
	case n == cur:
		return
	case n < cur:
		clear(a.t.array[n:])
		a.t.array = a.t.array[:n]
	default:
		a.t.array = append(a.t.array, make([]any, n-cur)...)
	}
	a.structural()
}

// Values tracks the whole array and returns the views Get would return.
func (a *Array) Values() []any {
	a.rt.track(a.t, keyIterate)
	out := make([]any, len(a.t.array))
	for i := range out {
		out[i] = a.Get(i)
	}
	return out
}

func (a *Array) All() iter.Seq2[int, any] {
	return func(yield func(int, any) bool) {
		a.rt.track(a.t, keyIterate)
		for i := 0; i < len(a.t.array); i++ {
			if !yield(i, a.Get(i)) {
				return
			}
		}
	}
}
