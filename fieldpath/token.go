package fieldpath

import (
	"reflect"
)

const _maxPathDepth = 32

// KeyOf returns the data key of a top-level field of S selected by selector.
//
//	fieldpath.KeyOf(func(u *User) *string { return &u.Email }) // "email"
func KeyOf[S any, F any](selector func(*S) *F) string {
	p := Of(selector)
	if len(p) != 1 {
		panic("fieldpath.KeyOf: selector must return the address of a top-level field")
	}
	return p[0].Key()
}

// Of derives the Path of a nested field of T from a selector returning its
// address, so renaming or removing the field breaks the build instead of a
// string:
//
//	fieldpath.Of(func(o *Order) *string { return &o.Shipping.City })
//	fieldpath.Of(func(o *Order) *int { return &o.Lines[2].Qty }) // Lines is a [N]Line array
//
// The selector may step through struct fields and fixed-size arrays. Pointer,
// slice and map hops cannot be resolved on a zero value; use Root/Builder or
// Path.Append for those.
func Of[T any, F any](selector func(*T) *F) Path {
	if selector == nil {
		panic("fieldpath.Of: selector must not be nil")
	}
	var zero T
	target := reflect.ValueOf(selector(&zero)).Pointer()
	want := reflect.TypeFor[F]()
	segs, ok := findPath(reflect.ValueOf(&zero).Elem(), target, want, 0)
	if !ok || len(segs) == 0 {
		panic("fieldpath.Of: selector must address a field reachable through structs and arrays")
	}
	return segs
}

func findPath(v reflect.Value, target uintptr, want reflect.Type, depth int) (Path, bool) {
	if depth > _maxPathDepth {
		return nil, false
	}
	switch v.Kind() {
	case reflect.Struct:
		t := v.Type()
		for i := 0; i < t.NumField(); i++ {
			sf := t.Field(i)
			if !sf.IsExported() {
				continue
			}
			name, ok := StructKey(sf)
			if !ok {
				continue
			}
			if rest, ok := matchOrDescend(v.Field(i), target, want, depth); ok {
				return append(Path{Key(name)}, rest...), true
			}
		}
	case reflect.Array:
		for i := 0; i < v.Len(); i++ {
			if rest, ok := matchOrDescend(v.Index(i), target, want, depth); ok {
				return append(Path{Index(i)}, rest...), true
			}
		}
	}
	return nil, false
}

// matchOrDescend checks fv itself before descending. A struct and its first
// field share an address, so the selected type disambiguates them.
func matchOrDescend(fv reflect.Value, target uintptr, want reflect.Type, depth int) (Path, bool) {
	if !fv.CanAddr() {
		return nil, false
	}
	if fv.Addr().Pointer() == target && fv.Type() == want {
		return Path{}, true
	}
	if fv.Kind() == reflect.Struct || fv.Kind() == reflect.Array {
		return findPath(fv, target, want, depth+1)
	}
	return nil, false
}
