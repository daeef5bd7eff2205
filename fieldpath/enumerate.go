package fieldpath

import (
	"reflect"
	"time"
)

// Template is a path pattern derived from a Go type. Array and slice
// elements appear as a wildcard index ("items[*].sku").
type Template struct {
	segs Path
}

// Pattern renders the template with "[*]" for every wildcard index.
func (t Template) Pattern() string { return Render(t.segs) }

// Wildcards returns how many free indices the template has.
func (t Template) Wildcards() int {
	n := 0
	for _, s := range t.segs {
		if s == wildcard {
			n++
		}
	}
	return n
}

// Representative returns the concrete path with every wildcard set to 0.
func (t Template) Representative() Path {
	out := make(Path, len(t.segs))
	for i, s := range t.segs {
		if s == wildcard {
			s = Index(0)
		}
		out[i] = s
	}
	return out
}

// Instantiate fills the wildcards left to right with indices. It returns
// false when the number of indices does not match Wildcards.
func (t Template) Instantiate(indices ...int) (Path, bool) {
	if len(indices) != t.Wildcards() {
		return nil, false
	}
	out := make(Path, len(t.segs))
	k := 0
	for i, s := range t.segs {
		if s == wildcard {
			if indices[k] < 0 {
				return nil, false
			}
			s = Index(indices[k])
			k++
		}
		out[i] = s
	}
	return out, true
}

// Matches reports whether p is an instance of the template. Index segments
// and all-digit keys both match a wildcard, mirroring how Get resolves them.
func (t Template) Matches(p Path) bool {
	if len(p) != len(t.segs) {
		return false
	}
	for i, s := range t.segs {
		if s == wildcard {
			if _, ok := p[i].Index(); !ok {
				return false
			}
			continue
		}
		if s != p[i] {
			return false
		}
	}
	return true
}

// Enumerate lists the path templates exposed by struct type T, in field
// order, parents before children. Func and chan fields are skipped, as are
// unexported fields and fields keyed "-". Slices and arrays contribute the
// field itself plus a wildcard element path, recursing into struct elements.
// Maps and well-known value types (time.Time) are leaves. Recursive types stop
// at the first repetition.
func Enumerate[T any]() []Template {
	t := reflect.TypeFor[T]()
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}
	var out []Template
	enumerateStruct(t, Path{}, map[reflect.Type]bool{}, 0, &out)
	return out
}

// Paths returns the representative string form of every template of T. All
// of them are accepted by Parse.
func Paths[T any]() []string {
	ts := Enumerate[T]()
	out := make([]string, 0, len(ts))
	for _, t := range ts {
		out = append(out, Render(t.Representative()))
	}
	return out
}

// MatchTemplate returns the first template of T matching p.
func MatchTemplate[T any](p Path) (Template, bool) {
	for _, t := range Enumerate[T]() {
		if t.Matches(p) {
			return t, true
		}
	}
	return Template{}, false
}

var _timeType = reflect.TypeFor[time.Time]()

func enumerateStruct(t reflect.Type, prefix Path, onStack map[reflect.Type]bool, depth int, out *[]Template) {
	if depth > _maxPathDepth || onStack[t] {
		return
	}
	onStack[t] = true
	defer delete(onStack, t)
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		name, ok := StructKey(sf)
		if !ok {
			continue
		}
		if sf.Anonymous && sf.Tag.Get("json") == "" && sf.Tag.Get("formkit") == "" {
			ft := deref(sf.Type)
			if ft.Kind() == reflect.Struct {
				enumerateStruct(ft, prefix, onStack, depth+1, out)
				continue
			}
		}
		enumerateField(sf.Type, prefix.Append(Key(name)), onStack, depth, out)
	}
}

func enumerateField(ft reflect.Type, at Path, onStack map[reflect.Type]bool, depth int, out *[]Template) {
	ft = deref(ft)
	switch ft.Kind() {
	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return
	}
	*out = append(*out, Template{segs: at})
	switch {
	case ft == _timeType:
	case ft.Kind() == reflect.Slice || ft.Kind() == reflect.Array:
		if ft.Elem().Kind() == reflect.Uint8 && ft.Kind() == reflect.Slice {
			// []byte is a leaf (base64 string in JSON).
			return
		}
		enumerateField(ft.Elem(), at.Append(wildcard), onStack, depth+1, out)
	case ft.Kind() == reflect.Struct:
		enumerateStruct(ft, at, onStack, depth+1, out)
	}
}

func deref(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

// String is the Pattern of the template.
func (t Template) String() string { return t.Pattern() }
