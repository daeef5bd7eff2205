package produce

import (
	"maps"
	"reflect"
	"slices"
	"sync"
)

// Cloner is implemented by container types that provide their own shallow
// copy. Clone must return a value of the same dynamic type.
type Cloner interface {
	Clone() any
}

// CloneFunc returns a shallow copy of v.
type CloneFunc func(v any) any

// Registry maps Go types to CloneFuncs, opting them into copy-on-write.
// A nil *Registry only knows the built-in containers and Cloner.
type Registry struct {
	mu     sync.RWMutex
	byType map[reflect.Type]CloneFunc
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byType: map[reflect.Type]CloneFunc{}}
}

// Register opts t into copy-on-write. Registration is idempotent per type:
// the first CloneFunc wins and later calls report false.
func (r *Registry) Register(t reflect.Type, fn CloneFunc) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byType[t]; ok {
		return false
	}
	r.byType[t] = fn
	return true
}

// RegisterType is the typed form of Register.
func RegisterType[T any](r *Registry, fn func(T) T) bool {
	return r.Register(reflect.TypeFor[T](), func(v any) any { return fn(v.(T)) })
}

// Registered reports whether t has a CloneFunc.
func (r *Registry) Registered(t reflect.Type) bool {
	if r == nil {
		return false
	}
	r.mu.RLock()
	_, ok := r.byType[t]
	r.mu.RUnlock()
	return ok
}

// Copyable reports whether v can be shallow-copied by this registry.
func (r *Registry) Copyable(v any) bool {
	_, ok := r.shallow(v, false)
	return ok
}

// ShallowClone copies the top level of v. It reports false for opaque
// values.
func (r *Registry) ShallowClone(v any) (any, bool) {
	return r.shallow(v, true)
}

func (r *Registry) shallow(v any, do bool) (any, bool) {
	switch c := v.(type) {
	case map[string]any:
		if !do {
			return nil, true
		}
		return maps.Clone(c), true
	case []any:
		if !do {
			return nil, true
		}
		return slices.Clone(c), true
	case Cloner:
		if !do {
			return nil, true
		}
		return c.Clone(), true
	}
	if v == nil || r == nil {
		return nil, false
	}
	r.mu.RLock()
	fn, ok := r.byType[reflect.TypeOf(v)]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if !do {
		return nil, true
	}
	return fn(v), true
}

// DeepClone copies every map[string]any and []any reachable from v, and
// shallow-copies other copyable values. It is used when data enters a store
// so that later changes by the caller cannot leak in.
func (r *Registry) DeepClone(v any) any {
	switch c := v.(type) {
	case map[string]any:
		if c == nil {
			return c
		}
		out := make(map[string]any, len(c))
		for k, val := range c {
			out[k] = r.DeepClone(val)
		}
		return out
	case []any:
		if c == nil {
			return c
		}
		out := make([]any, len(c))
		for i, val := range c {
			out[i] = r.DeepClone(val)
		}
		return out
	}
	if cp, ok := r.ShallowClone(v); ok {
		return cp
	}
	return v
}
