// Package equal implements the structural equality used to suppress no-op writes.
//
// Equal is reflexive and symmetric for data values and always terminates: a pair of
// references that is revisited while it is still being compared is treated as equal,
// which breaks cycles in self-referential graphs. This is a conservative rule, not full
// cycle-aware structural equality.
package equal

import (
	"bytes"
	"reflect"
	"regexp"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
)

// Comparator compares arbitrary values structurally.
type Comparator struct {
	// Unwrap, when set, is applied to every dynamic value before it is compared.
	// The reactive layer uses it to expose its internal containers as plain data.
	Unwrap func(any) any
}

var defaultComparator = &Comparator{}

// Equal reports whether a and b are structurally equal.
func Equal(a, b any) bool {
	return defaultComparator.Equal(a, b)
}

// Equal reports whether a and b are structurally equal.
func (c *Comparator) Equal(a, b any) bool {
	s := &state{
		unwrap:  c.Unwrap,
		visited: mapset.NewThreadUnsafeSet[visit](),
	}
	return s.equal(a, b)
}

type visit struct {
	a, b uintptr
	typ  reflect.Type
}

type state struct {
	unwrap  func(any) any
	visited mapset.Set[visit]
}

func (s *state) equal(a, b any) bool {
	if s.unwrap != nil {
		a, b = s.unwrap(a), s.unwrap(b)
	}
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if reflect.TypeOf(a) != reflect.TypeOf(b) {
		return false
	}
	if identical(a, b) {
		return true
	}
	return s.deep(reflect.ValueOf(a), reflect.ValueOf(b))
}

// identical is the reference/primitive short-circuit. Values whose dynamic type is not
// comparable make == panic, which simply means "not identical".
func identical(a, b any) (same bool) {
	defer func() {
		if recover() != nil {
			same = false
		}
	}()
	return a == b
}

// special handles the types whose equality is not their field-wise structure.
func (s *state) special(a, b any) (eq bool, handled bool) {
	switch av := a.(type) {
	case time.Time:
		return av.UnixMilli() == b.(time.Time).UnixMilli(), true
	case *regexp.Regexp:
		bv := b.(*regexp.Regexp)
		if av == nil || bv == nil {
			return av == bv, true
		}
		return av.String() == bv.String(), true
	case []byte:
		return bytes.Equal(av, b.([]byte)), true
	case mapset.Set[any]:
		return setEqual(s, av, b.(mapset.Set[any])), true
	case mapset.Set[string]:
		return setEqual(s, av, b.(mapset.Set[string])), true
	case mapset.Set[int]:
		return setEqual(s, av, b.(mapset.Set[int])), true
	case mapset.Set[int64]:
		return setEqual(s, av, b.(mapset.Set[int64])), true
	case mapset.Set[float64]:
		return setEqual(s, av, b.(mapset.Set[float64])), true
	case error:
		return errorMessage(av) == errorMessage(b.(error)), true
	}
	return false, false
}

func errorMessage(err error) (msg string) {
	defer func() {
		if recover() != nil {
			msg = ""
		}
	}()
	return err.Error()
}

func setEqual[T comparable](s *state, a, b mapset.Set[T]) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Cardinality() != b.Cardinality() {
		return false
	}
	candidates := b.ToSlice()
	for _, x := range a.ToSlice() {
		if b.Contains(x) {
			continue
		}
		found := false
		for _, y := range candidates {
			if s.equal(x, y) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// seen records the pair and reports whether it is already being compared. Callers that
// get false must call leave once the pair is decided, so a finished pair is never
// mistaken for a cycle.
func (s *state) seen(va, vb reflect.Value) bool {
	v := visit{a: va.Pointer(), b: vb.Pointer(), typ: va.Type()}
	if s.visited.Contains(v) {
		return true
	}
	s.visited.Add(v)
	return false
}

func (s *state) leave(va, vb reflect.Value) {
	s.visited.Remove(visit{a: va.Pointer(), b: vb.Pointer(), typ: va.Type()})
}

func (s *state) deep(va, vb reflect.Value) bool {
	if !va.IsValid() || !vb.IsValid() {
		return va.IsValid() == vb.IsValid()
	}
	if va.Type() != vb.Type() {
		return false
	}
	if va.Kind() != reflect.Interface && va.CanInterface() && vb.CanInterface() {
		if eq, ok := s.special(va.Interface(), vb.Interface()); ok {
			return eq
		}
	}

	switch va.Kind() {
	case reflect.Bool:
		return va.Bool() == vb.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return va.Int() == vb.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return va.Uint() == vb.Uint()
	case reflect.Float32, reflect.Float64:
		return va.Float() == vb.Float()
	case reflect.Complex64, reflect.Complex128:
		return va.Complex() == vb.Complex()
	case reflect.String:
		return va.String() == vb.String()
	case reflect.UnsafePointer, reflect.Chan:
		return va.Pointer() == vb.Pointer()
	case reflect.Func:
		return false
	case reflect.Interface:
		if va.IsNil() || vb.IsNil() {
			return va.IsNil() && vb.IsNil()
		}
		if va.CanInterface() && vb.CanInterface() {
			return s.equal(va.Elem().Interface(), vb.Elem().Interface())
		}
		return s.deep(va.Elem(), vb.Elem())
	case reflect.Pointer:
		if va.Pointer() == vb.Pointer() {
			return true
		}
		if va.IsNil() || vb.IsNil() {
			return false
		}
		if s.seen(va, vb) {
			return true
		}
		defer s.leave(va, vb)
		return s.deep(va.Elem(), vb.Elem())
	case reflect.Slice:
		if va.Len() != vb.Len() {
			return false
		}
		if va.Len() == 0 || va.Pointer() == vb.Pointer() {
			return true
		}
		if va.Type().Elem().Kind() == reflect.Uint8 {
			return bytes.Equal(va.Bytes(), vb.Bytes())
		}
		if s.seen(va, vb) {
			return true
		}
		defer s.leave(va, vb)
		return s.elements(va, vb)
	case reflect.Array:
		return s.elements(va, vb)
	case reflect.Map:
		if va.Len() != vb.Len() {
			return false
		}
		if va.Pointer() == vb.Pointer() || s.seen(va, vb) {
			return true
		}
		defer s.leave(va, vb)
		iter := va.MapRange()
		for iter.Next() {
			other := vb.MapIndex(iter.Key())
			if !other.IsValid() || !s.deep(iter.Value(), other) {
				return false
			}
		}
		return true
	case reflect.Struct:
		for i := 0; i < va.NumField(); i++ {
			if !s.deep(va.Field(i), vb.Field(i)) {
				return false
			}
		}
		return true
	}
	return false
}

func (s *state) elements(va, vb reflect.Value) bool {
	for i := 0; i < va.Len(); i++ {
		if !s.deep(va.Index(i), vb.Index(i)) {
			return false
		}
	}
	return true
}
