package reconcile

import (
	"reflect"
	"regexp"
	"sync"
	"time"
	"unsafe"
)

// Comparator decides equality of two values that share a dynamic type.
// Returning ok == false defers to the default rules.
type Comparator func(a, b any) (equal, ok bool)

// Comparators maps Go types to custom Comparators. The zero value is not
// usable; call NewComparators. A nil *Comparators is treated as empty.
type Comparators struct {
	mu     sync.RWMutex
	byType map[reflect.Type]Comparator
}

// NewComparators returns an empty registry.
func NewComparators() *Comparators {
	return &Comparators{byType: map[reflect.Type]Comparator{}}
}

// Set installs fn for values of type t, replacing any previous entry.
func (c *Comparators) Set(t reflect.Type, fn Comparator) {
	c.mu.Lock()
	c.byType[t] = fn
	c.mu.Unlock()
}

// Register installs a typed comparator for T.
//
//	reconcile.Register(cmps, func(a, b Money) bool { return a.Cents == b.Cents })
func Register[T any](c *Comparators, fn func(a, b T) bool) {
	c.Set(reflect.TypeFor[T](), func(a, b any) (bool, bool) {
		ta, okA := a.(T)
		tb, okB := b.(T)
		if !okA || !okB {
			return false, false
		}
		return fn(ta, tb), true
	})
}

// Compare consults the comparator registered for the dynamic type of a and
// b. It is a Comparator itself.
func (c *Comparators) Compare(a, b any) (bool, bool) {
	if c == nil || a == nil || b == nil {
		return false, false
	}
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) {
		return false, false
	}
	c.mu.RLock()
	fn, ok := c.byType[ta]
	c.mu.RUnlock()
	if !ok {
		return false, false
	}
	return fn(a, b)
}

// Equal is DeepEqualFunc using the registry.
func (c *Comparators) Equal(a, b any) bool {
	if c == nil {
		return DeepEqual(a, b)
	}
	return DeepEqualFunc(a, b, c.Compare)
}

// DeepEqual reports whether a and b are structurally equal.
func DeepEqual(a, b any) bool { return DeepEqualFunc(a, b, nil) }

// DeepEqualFunc is DeepEqual with a custom comparator consulted for every
// non-slice value pair of the same type before the built-in rules.
func DeepEqualFunc(a, b any, custom Comparator) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	e := equaler{custom: custom, visited: map[visit]bool{}}
	return e.equal(reflect.ValueOf(a), reflect.ValueOf(b))
}

type visit struct {
	a, b unsafe.Pointer
	t    reflect.Type
}

type equaler struct {
	custom  Comparator
	visited map[visit]bool
}

var (
	_timeType   = reflect.TypeFor[time.Time]()
	_regexpType = reflect.TypeFor[*regexp.Regexp]()
)

func (e *equaler) equal(a, b reflect.Value) bool {
	if !a.IsValid() || !b.IsValid() {
		return a.IsValid() == b.IsValid()
	}
	if a.Type() != b.Type() {
		return false
	}
	a, b = open(a), open(b)

	if a.Kind() == reflect.Slice {
		if a.Len() != b.Len() {
			return false
		}
		if a.Len() == 0 || a.UnsafePointer() == b.UnsafePointer() {
			return true
		}
		if e.seen(a, b) {
			return true
		}
		for i := 0; i < a.Len(); i++ {
			if !e.equal(a.Index(i), b.Index(i)) {
				return false
			}
		}
		return true
	}

	if e.custom != nil && a.CanInterface() && b.CanInterface() {
		if eq, ok := e.custom(a.Interface(), b.Interface()); ok {
			return eq
		}
	}

	switch a.Type() {
	case _timeType:
		if a.CanInterface() {
			return a.Interface().(time.Time).UnixMilli() == b.Interface().(time.Time).UnixMilli()
		}
	case _regexpType:
		if a.IsNil() || b.IsNil() {
			return a.IsNil() == b.IsNil()
		}
		if a.CanInterface() {
			return a.Interface().(*regexp.Regexp).String() == b.Interface().(*regexp.Regexp).String()
		}
	}

	switch a.Kind() {
	case reflect.Interface:
		if a.IsNil() || b.IsNil() {
			return a.IsNil() == b.IsNil()
		}
		return e.equal(a.Elem(), b.Elem())
	case reflect.Pointer:
		if a.IsNil() || b.IsNil() {
			return a.IsNil() == b.IsNil()
		}
		if a.UnsafePointer() == b.UnsafePointer() || e.seen(a, b) {
			return true
		}
		return e.equal(a.Elem(), b.Elem())
	case reflect.Map:
		if a.Len() != b.Len() {
			return false
		}
		if a.UnsafePointer() == b.UnsafePointer() || e.seen(a, b) {
			return true
		}
		iter := a.MapRange()
		for iter.Next() {
			bv := b.MapIndex(iter.Key())
			if !bv.IsValid() || !e.equal(iter.Value(), bv) {
				return false
			}
		}
		return true
	case reflect.Array:
		for i := 0; i < a.Len(); i++ {
			if !e.equal(a.Index(i), b.Index(i)) {
				return false
			}
		}
		return true
	case reflect.Struct:
		for i := 0; i < a.NumField(); i++ {
			if !e.equal(a.Field(i), b.Field(i)) {
				return false
			}
		}
		return true
	case reflect.Func:
		return a.IsNil() && b.IsNil()
	case reflect.Chan, reflect.UnsafePointer:
		return a.UnsafePointer() == b.UnsafePointer()
	case reflect.Bool:
		return a.Bool() == b.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return a.Int() == b.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return a.Uint() == b.Uint()
	case reflect.Float32, reflect.Float64:
		return a.Float() == b.Float()
	case reflect.Complex64, reflect.Complex128:
		return a.Complex() == b.Complex()
	case reflect.String:
		return a.String() == b.String()
	}
	return false
}

// open makes v usable with Interface. Values read through unexported struct
// fields are re-addressed through their memory, and non-addressable structs
// and arrays are copied so their fields can be opened in turn.
func open(v reflect.Value) reflect.Value {
	if !v.CanInterface() {
		if v.CanAddr() {
			return reflect.NewAt(v.Type(), unsafe.Pointer(v.UnsafeAddr())).Elem()
		}
		return v
	}
	switch v.Kind() {
	case reflect.Struct, reflect.Array:
		if !v.CanAddr() {
			cp := reflect.New(v.Type()).Elem()
			cp.Set(v)
			return cp
		}
	}
	return v
}

// seen records the pair and reports whether it was already being compared,
// which breaks cycles in self-referencing data.
func (e *equaler) seen(a, b reflect.Value) bool {
	v := visit{a: a.UnsafePointer(), b: b.UnsafePointer(), t: a.Type()}
	if e.visited[v] {
		return true
	}
	e.visited[v] = true
	return false
}
