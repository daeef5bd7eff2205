package formkit

import (
	"context"

	"github.com/reoring/formkit/fieldpath"
	"github.com/reoring/formkit/produce"
)

// Focuser is implemented by bound elements that can take focus.
type Focuser interface {
	Focus()
}

// Field is the reactive handle for one path of a Store. Its flags are
// guarded by the store.
type Field struct {
	store        *Store
	id           string
	seq          uint64
	path         fieldpath.Path
	key          string
	defaultValue any

	touched bool
	dirty   bool
	element any
}

// ID is unique per handle.
func (f *Field) ID() string { return f.id }

// Path returns a copy of the handle's path.
func (f *Field) Path() fieldpath.Path { return f.path.Clone() }

// StringPath renders the path in dot/bracket form.
func (f *Field) StringPath() string { return fieldpath.Render(f.path) }

// Store returns the owning store.
func (f *Field) Store() *Store { return f.store }

// Value reads the current value at the path; nil when missing.
func (f *Field) Value() any {
	s := f.store
	s.mu.Lock()
	defer s.mu.Unlock()
	return fieldpath.Get(s.data, f.path)
}

// InitialValue reads the baseline value at the path.
func (f *Field) InitialValue() any {
	s := f.store
	s.mu.Lock()
	defer s.mu.Unlock()
	return fieldpath.Get(s.initial, f.path)
}

// DefaultValue is the default the handle was registered with.
func (f *Field) DefaultValue() any { return f.defaultValue }

// Issues returns the issues reported exactly at this path. Issues below it
// belong to the handles registered there.
func (f *Field) Issues() Issues {
	s := f.store
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issues.At(f.path)
}

// IsValid reports whether no issue sits exactly at the field path.
func (f *Field) IsValid() bool { return len(f.Issues()) == 0 }

// IsTouched reports whether the field was edited or touched since the last
// reset.
func (f *Field) IsTouched() bool {
	s := f.store
	s.mu.Lock()
	defer s.mu.Unlock()
	return f.touched
}

// IsDirty reports whether the value differs from the initial value, or
// MarkDirty was called.
func (f *Field) IsDirty() bool {
	s := f.store
	s.mu.Lock()
	defer s.mu.Unlock()
	return f.dirty
}

// SetValue replaces the value at the path. v is deep-copied first.
func (f *Field) SetValue(v any, opts ...MutateOpt) error {
	v = f.store.cloners.DeepClone(v)
	return f.store.mutate(f, firstOpt(opts), func(d *produce.Draft) error {
		return d.Set(f.path, v)
	})
}

// ModifyValue hands the current value to fn. fn either returns a
// replacement or mutates the top level of a container in place and returns
// (nil, false); see produce.Draft.Modify.
func (f *Field) ModifyValue(fn fieldpath.Modifier, opts ...MutateOpt) error {
	return f.store.mutate(f, firstOpt(opts), func(d *produce.Draft) error {
		return d.Modify(f.path, fn)
	})
}

// EnsureDefault writes the registered default when the value is nil.
func (f *Field) EnsureDefault(opts ...MutateOpt) error {
	if f.defaultValue == nil || f.Value() != nil {
		return nil
	}
	return f.SetValue(f.defaultValue, opts...)
}

// Touch marks the field touched.
func (f *Field) Touch() {
	s := f.store
	s.mu.Lock()
	s.setTouchedLocked(f, true)
	s.mu.Unlock()
	s.flush()
}

// MarkDirty forces the dirty flag on regardless of the value.
func (f *Field) MarkDirty() {
	s := f.store
	s.mu.Lock()
	s.setDirtyLocked(f, true)
	s.mu.Unlock()
	s.flush()
}

// Reset clears the touched and dirty flags. Data is left alone.
func (f *Field) Reset() {
	s := f.store
	s.mu.Lock()
	s.setTouchedLocked(f, false)
	s.setDirtyLocked(f, false)
	s.mu.Unlock()
	s.flush()
}

// ClearIssues drops the issues at the field path.
func (f *Field) ClearIssues() { f.store.ClearFieldIssues(f.path) }

// TriggerValidation validates this field's scope.
func (f *Field) TriggerValidation(ctx context.Context) error {
	return f.store.ValidateField(ctx, f.path)
}

// BindElement associates an opaque UI element with the handle. A nil el
// unbinds.
func (f *Field) BindElement(el any) {
	if el == nil {
		f.UnbindElement()
		return
	}
	s := f.store
	s.mu.Lock()
	f.element = el
	s.enqueue(Event{Name: EventElementBound, Path: f.path, Element: el})
	s.mu.Unlock()
	s.flush()
}

// UnbindElement releases the bound element, if any.
func (f *Field) UnbindElement() {
	s := f.store
	s.mu.Lock()
	if f.element != nil {
		f.element = nil
		s.enqueuePath(EventElementUnbound, f.path)
	}
	s.mu.Unlock()
	s.flush()
}

// BoundElement returns the bound element or nil.
func (f *Field) BoundElement() any {
	s := f.store
	s.mu.Lock()
	defer s.mu.Unlock()
	return f.element
}

// Focus focuses the bound element when it implements Focuser and, unless
// told otherwise, marks the field touched. It reports whether focus was
// requested.
func (f *Field) Focus(opts ...FocusOpt) bool {
	fo, ok := f.BoundElement().(Focuser)
	if !ok {
		return false
	}
	if !firstOpt(opts).SkipTouch {
		f.Touch()
	}
	fo.Focus()
	return true
}
