package produce

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/reoring/formkit/fieldpath"
)

// ErrOpaque is returned when a write has to copy a container that neither
// implements Cloner nor is registered.
var ErrOpaque = errors.New("produce: value is opaque to copy-on-write")

// Producer runs copy-on-write updates with a given Registry.
type Producer struct {
	reg *Registry
}

// New returns a Producer. reg may be nil.
func New(reg *Registry) *Producer { return &Producer{reg: reg} }

// Registry returns the producer's registry.
func (p *Producer) Registry() *Registry { return p.reg }

// Produce calls fn with a Draft of root and returns the resulting root. When
// fn fails the draft is discarded and root is returned with the error.
func (p *Producer) Produce(root any, fn func(d *Draft) error) (any, error) {
	d := &Draft{root: root, reg: p.reg, owned: map[string]fieldpath.Path{}}
	if err := fn(d); err != nil {
		return root, err
	}
	return d.root, nil
}

var _default = New(nil)

// Produce runs fn with a producer that only knows built-in containers and
// Cloner implementations.
func Produce(root any, fn func(d *Draft) error) (any, error) {
	return _default.Produce(root, fn)
}

// Draft is the mutable view handed to a Produce mutator. It is only valid
// during the call.
type Draft struct {
	root  any
	reg   *Registry
	owned map[string]fieldpath.Path // containers already copied in this draft, by ownKey
}

// Root returns the current draft root.
func (d *Draft) Root() any { return d.root }

// Get reads through the draft.
func (d *Draft) Get(p fieldpath.Path) any { return fieldpath.Get(d.root, p) }

// Lookup reads through the draft and reports presence.
func (d *Draft) Lookup(p fieldpath.Path) (any, bool) { return fieldpath.Lookup(d.root, p) }

// Set stores v at p, copying the containers along the way first.
func (d *Draft) Set(p fieldpath.Path, v any) error {
	if err := d.own(p); err != nil {
		return err
	}
	root, err := fieldpath.Set(d.root, p, v)
	if err != nil {
		return err
	}
	d.root = root
	d.forget(p)
	return nil
}

// Modify hands the current value at p to fn. Containers given to fn are
// already private copies, so fn may change their top level in place and
// return (nil, false); nested containers are still shared and must be
// replaced through the Draft rather than mutated.
func (d *Draft) Modify(p fieldpath.Path, fn fieldpath.Modifier) error {
	if err := d.own(p); err != nil {
		return err
	}
	var (
		copied  bool
		copyErr error
	)
	root, err := fieldpath.Modify(d.root, p, func(cur any) (any, bool) {
		if fieldpath.IsContainer(cur) && !d.isOwned(p) {
			cp, ok := d.reg.ShallowClone(cur)
			if !ok {
				copyErr = fmt.Errorf("%w: %T at %s", ErrOpaque, cur, p)
				return nil, false
			}
			cur, copied = cp, true
		}
		nv, replace := fn(cur)
		if !replace && copied {
			return cur, true
		}
		return nv, replace
	})
	if copyErr != nil {
		return copyErr
	}
	if err != nil {
		return err
	}
	d.root = root
	d.forget(p)
	if copied {
		d.owned[ownKey(p)] = p.Clone()
	}
	return nil
}

// Delete removes the value at p. Missing values are a no-op that copies
// nothing. Deleting the root sets it to nil.
func (d *Draft) Delete(p fieldpath.Path) (bool, error) {
	if _, ok := fieldpath.Lookup(d.root, p); !ok {
		return false, nil
	}
	if len(p) == 0 {
		d.root = nil
		d.forget(p)
		return true, nil
	}
	if err := d.own(p); err != nil {
		return false, err
	}
	removed := fieldpath.Delete(d.root, p)
	d.forget(p)
	return removed, nil
}

// own makes every existing container strictly above p private to the draft.
func (d *Draft) own(p fieldpath.Path) error {
	cur := d.root
	for k := 0; k < len(p); k++ {
		prefix := p[:k:k]
		if cur == nil || !fieldpath.IsContainer(cur) {
			// missing: fieldpath vivifies fresh containers; leaf: the write fails there.
			return nil
		}
		if !d.isOwned(prefix) {
			cp, ok := d.reg.ShallowClone(cur)
			if !ok {
				return fmt.Errorf("%w: %T at %s", ErrOpaque, cur, prefix)
			}
			root, err := fieldpath.Set(d.root, prefix, cp)
			if err != nil {
				return err
			}
			d.root = root
			d.owned[ownKey(prefix)] = prefix.Clone()
			cur = cp
		}
		next, ok := fieldpath.Lookup(cur, p[k:k+1])
		if !ok {
			return nil
		}
		cur = next
	}
	return nil
}

func (d *Draft) isOwned(p fieldpath.Path) bool {
	_, ok := d.owned[ownKey(p)]
	return ok
}

// ownKey encodes p one-to-one without going through the string syntax.
func ownKey(p fieldpath.Path) string {
	var b strings.Builder
	for _, seg := range p {
		if seg.IsIndex() {
			i, _ := seg.Index()
			b.WriteByte('#')
			b.WriteString(strconv.Itoa(i))
		} else {
			b.WriteByte('$')
			b.WriteString(strconv.Quote(seg.Key()))
		}
	}
	return b.String()
}

// forget drops ownership of p and everything below it: those positions now
// hold values supplied by the caller.
func (d *Draft) forget(p fieldpath.Path) {
	for k, op := range d.owned {
		if fieldpath.IsWithin(p, op) {
			delete(d.owned, k)
		}
	}
}
