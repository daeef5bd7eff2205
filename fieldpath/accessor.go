package fieldpath

import (
	"fmt"
)

// Container is implemented by custom types that expose addressable children,
// so that paths can step into them like into map[string]any or []any.
// Implementations mutate in place; copy-on-write is layered on top by the
// produce package, which additionally requires the type to be clonable.
type Container interface {
	Child(seg Segment) (any, bool)
	SetChild(seg Segment, v any) error
	DeleteChild(seg Segment) bool
}

// Get returns the value at p, or nil when any step along the way is missing.
// It never fails.
func Get(root any, p Path) any {
	v, _ := Lookup(root, p)
	return v
}

// Lookup is like Get but also reports whether the value exists.
func Lookup(root any, p Path) (any, bool) {
	cur := root
	for _, seg := range p {
		next, ok := child(cur, seg)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// Set stores v at p, creating missing intermediate containers: an []any when
// the segment applied to the new container is an index, a map[string]any
// otherwise. Existing containers are mutated in place. The returned root must
// be used by the caller: it differs from root when root itself had to be
// created, replaced (empty path) or grown.
func Set(root any, p Path, v any) (any, error) {
	return Modify(root, p, func(any) (any, bool) { return v, true })
}

// Modifier receives the current value at a path. Returning (v, true)
// replaces it with v; returning (_, false) keeps the current value, which the
// modifier may have mutated in place.
type Modifier func(cur any) (any, bool)

// Modify walks p like Set and hands the current value to fn.
func Modify(root any, p Path, fn Modifier) (any, error) {
	if len(p) == 0 {
		if nv, ok := fn(root); ok {
			return nv, nil
		}
		return root, nil
	}
	return modifyAt(root, p, 0, fn)
}

func modifyAt(cur any, p Path, i int, fn Modifier) (any, error) {
	seg := p[i]
	if isMissing(cur) {
		cur = containerFor(seg)
	}
	if i == len(p)-1 {
		old, _ := child(cur, seg)
		nv, ok := fn(old)
		if !ok {
			return cur, nil
		}
		return storeChild(cur, p[:i+1], nv)
	}
	next, _ := child(cur, seg)
	updated, err := modifyAt(next, p, i+1, fn)
	if err != nil {
		return cur, err
	}
	return storeChild(cur, p[:i+1], updated)
}

// Delete removes the value at p without creating anything. It reports
// whether something was removed; a missing intermediate is a no-op. Removing
// an array element leaves a nil hole so that sibling indices stay stable.
// The root cannot be deleted in place.
func Delete(root any, p Path) bool {
	if len(p) == 0 {
		return false
	}
	parent, ok := Lookup(root, p[:len(p)-1])
	if !ok {
		return false
	}
	seg := p[len(p)-1]
	switch c := parent.(type) {
	case map[string]any:
		k := seg.Key()
		if _, ok := c[k]; !ok {
			return false
		}
		delete(c, k)
		return true
	case []any:
		idx, ok := seg.Index()
		if !ok || idx >= len(c) {
			return false
		}
		c[idx] = nil
		return true
	case Container:
		return c.DeleteChild(seg)
	}
	return false
}

// IsContainer reports whether v can hold children addressable by a path.
func IsContainer(v any) bool {
	switch v.(type) {
	case map[string]any, []any, Container:
		return true
	}
	return false
}

func child(cur any, seg Segment) (any, bool) {
	switch c := cur.(type) {
	case nil:
		return nil, false
	case map[string]any:
		v, ok := c[seg.Key()]
		return v, ok
	case []any:
		idx, ok := seg.Index()
		if !ok || idx >= len(c) {
			return nil, false
		}
		return c[idx], true
	case Container:
		return c.Child(seg)
	}
	return nil, false
}

func storeChild(cur any, at Path, v any) (any, error) {
	seg := at[len(at)-1]
	switch c := cur.(type) {
	case map[string]any:
		c[seg.Key()] = v
		return c, nil
	case []any:
		idx, ok := seg.Index()
		if !ok {
			return cur, fmt.Errorf("%w: key %q on array at %s", ErrNotContainer, seg.Key(), Render(at))
		}
		if idx >= len(c) {
			c = append(c, make([]any, idx-len(c)+1)...)
		}
		c[idx] = v
		return c, nil
	case Container:
		if err := c.SetChild(seg, v); err != nil {
			return cur, fmt.Errorf("fieldpath: set %s: %w", Render(at), err)
		}
		return c, nil
	}
	return cur, fmt.Errorf("%w: %T at %s", ErrNotContainer, cur, Render(at[:len(at)-1]))
}

func isMissing(v any) bool {
	switch c := v.(type) {
	case nil:
		return true
	case map[string]any:
		return c == nil
	case []any:
		return c == nil
	}
	return false
}

func containerFor(seg Segment) any {
	if seg.isIndex {
		return []any{}
	}
	return map[string]any{}
}
