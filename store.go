package formkit

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/reoring/formkit/fieldpath"
	"github.com/reoring/formkit/internal/emitter"
	"github.com/reoring/formkit/produce"
	"github.com/reoring/formkit/reconcile"
)

// Store owns a form's current and initial data, its validation issues and
// the registry of field handles.
//
// Data trees held by the store are never mutated in place: every write
// produces a new root that shares untouched subtrees with the previous one,
// so values returned by Data, Value and events stay valid snapshots. Callers
// must treat them as read-only.
type Store struct {
	mu        sync.Mutex
	data      any
	initial   any
	issues    Issues
	fields    map[string]*Field
	seq       uint64
	status    Status
	validator Validator

	cmps     *reconcile.Comparators
	cloners  *produce.Registry
	producer *produce.Producer
	log      *zap.Logger

	bus      emitter.Bus[EventName, Event]
	pending  []Event
	flushing bool
}

// New builds a store from cfg.
func New(cfg Config) *Store {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	initial := cfg.InitialData
	if initial == nil {
		initial = map[string]any{}
	}
	initial = cfg.Cloners.DeepClone(initial)
	return &Store{
		data:      initial,
		initial:   initial,
		fields:    map[string]*Field{},
		validator: cfg.Validator,
		cmps:      cfg.Comparators,
		cloners:   cfg.Cloners,
		producer:  produce.New(cfg.Cloners),
		log:       log,
	}
}

// Data returns the current data root.
func (s *Store) Data() any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data
}

// InitialData returns the baseline used for dirty checks and Reset.
func (s *Store) InitialData() any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initial
}

// Issues returns a copy of the current issue list.
func (s *Store) Issues() Issues {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.issues)
}

// Status returns the current lifecycle status.
func (s *Store) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// IsValidating and IsSubmitting are shorthands over Status.
func (s *Store) IsValidating() bool { return s.Status() == StatusValidating }
func (s *Store) IsSubmitting() bool { return s.Status() == StatusSubmitting }

// IsValid reports whether the store holds no issues at all.
func (s *Store) IsValid() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.issues) == 0
}

// IsDirty reports whether any registered field is dirty.
func (s *Store) IsDirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.fields {
		if f.dirty {
			return true
		}
	}
	return false
}

func (s *Store) equal(a, b any) bool { return s.cmps.Equal(a, b) }

// RegisterField returns the handle for p, creating it on first use. When
// the value at p is nil and opt.DefaultValue is set, the default is written
// first, and into the initial data too when opt.OverrideInitialValue is set.
// Registering an existing path returns the existing handle unchanged.
func (s *Store) RegisterField(p fieldpath.Path, opts ...RegisterOpt) (*Field, error) {
	opt := firstOpt(opts)
	if opt.DefaultValue != nil {
		opt.DefaultValue = s.cloners.DeepClone(opt.DefaultValue)
	}
	s.mu.Lock()
	f, err := s.registerLocked(p, opt)
	s.mu.Unlock()
	s.flush()
	return f, err
}

// MustRegisterField is RegisterField for paths known to be writable.
func (s *Store) MustRegisterField(p fieldpath.Path, opts ...RegisterOpt) *Field {
	f, err := s.RegisterField(p, opts...)
	if err != nil {
		panic(err)
	}
	return f
}

func (s *Store) registerLocked(p fieldpath.Path, opt RegisterOpt) (*Field, error) {
	if p == nil {
		p = fieldpath.Path{}
	}
	key := fieldpath.Canonical(p)
	if f, ok := s.fields[key]; ok {
		return f, nil
	}
	p = p.Clone()

	asc := s.ascendantsLocked(p)
	olds := valuesAt(s.data, asc)
	old := fieldpath.Get(s.data, p)
	changed := false
	if old == nil && opt.DefaultValue != nil {
		next, err := s.producer.Produce(s.data, func(d *produce.Draft) error { return d.Set(p, opt.DefaultValue) })
		if err != nil {
			return nil, fmt.Errorf("formkit: default for %s: %w", pathLabel(p), err)
		}
		if opt.OverrideInitialValue {
			init, err := s.producer.Produce(s.initial, func(d *produce.Draft) error { return d.Set(p, opt.DefaultValue) })
			if err != nil {
				return nil, fmt.Errorf("formkit: default for %s: %w", pathLabel(p), err)
			}
			s.initial = init
		}
		s.data = next
		changed = !s.equal(old, fieldpath.Get(s.data, p))
	}

	s.seq++
	f := &Field{
		store:        s,
		id:           uuid.NewString(),
		seq:          s.seq,
		path:         p,
		key:          key,
		defaultValue: opt.DefaultValue,
	}
	f.dirty = !s.equal(fieldpath.Get(s.data, p), fieldpath.Get(s.initial, p))
	s.fields[key] = f
	s.log.Debug("field registered", zap.String("path", pathLabel(p)), zap.Bool("dirty", f.dirty))
	s.enqueuePath(EventFieldRegistered, p)

	if changed {
		s.enqueue(Event{Name: EventValueChanged, Path: p, Value: fieldpath.Get(s.data, p), OldValue: old})
		for i := len(asc) - 1; i >= 0; i-- {
			a := asc[i]
			s.enqueue(Event{Name: EventValueChanged, Path: a.path, Value: fieldpath.Get(s.data, a.path), OldValue: olds[i]})
		}
		s.refreshDirtyLocked(p, f)
	}
	if opt.Element != nil {
		f.element = opt.Element
		s.enqueue(Event{Name: EventElementBound, Path: p, Element: opt.Element})
	}
	return f, nil
}

// UnregisterField drops the handle at p. Data written through it stays.
func (s *Store) UnregisterField(p fieldpath.Path) bool {
	s.mu.Lock()
	key := fieldpath.Canonical(p)
	f, ok := s.fields[key]
	if ok {
		delete(s.fields, key)
		s.log.Debug("field unregistered", zap.String("path", pathLabel(f.path)))
		s.enqueuePath(EventFieldUnregistered, f.path)
	}
	s.mu.Unlock()
	s.flush()
	return ok
}

// Field looks up the handle registered at p. It never creates one.
func (s *Store) Field(p fieldpath.Path) (*Field, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.fields[fieldpath.Canonical(p)]
	return f, ok
}

// Fields returns every registered handle in registration order.
func (s *Store) Fields() []*Field {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fieldsLocked()
}

func (s *Store) fieldsLocked() []*Field {
	out := slices.Collect(maps.Values(s.fields))
	slices.SortFunc(out, func(a, b *Field) int { return cmp.Compare(a.seq, b.seq) })
	return out
}

// AscendantFields returns the handles registered at p and at each of its
// prefixes, root first. Prefixes without a handle are skipped.
func (s *Store) AscendantFields(p fieldpath.Path) []*Field {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ascendantsLocked(p)
}

func (s *Store) ascendantsLocked(p fieldpath.Path) []*Field {
	if p == nil {
		return nil
	}
	var out []*Field
	for _, prefix := range p.Prefixes() {
		if f, ok := s.fields[fieldpath.Canonical(prefix)]; ok {
			out = append(out, f)
		}
	}
	return out
}

func valuesAt(root any, fields []*Field) []any {
	out := make([]any, len(fields))
	for i, f := range fields {
		out[i] = fieldpath.Get(root, f.path)
	}
	return out
}

// SetValue writes through the handle registered at p. Without a handle it
// does nothing.
func (s *Store) SetValue(p fieldpath.Path, v any, opts ...MutateOpt) error {
	f, ok := s.Field(p)
	if !ok {
		return nil
	}
	return f.SetValue(v, opts...)
}

// Reset restores the current data to the initial data, clears every issue
// and the touched and dirty flags of every registered handle.
func (s *Store) Reset() { s.reset(nil, false) }

// ResetTo is Reset with a new baseline. initial is deep-copied, so later
// changes by the caller do not leak into the store.
func (s *Store) ResetTo(initial any) { s.reset(initial, true) }

func (s *Store) reset(initial any, replace bool) {
	if replace {
		if initial == nil {
			initial = map[string]any{}
		}
		initial = s.cloners.DeepClone(initial)
	}
	s.mu.Lock()
	if replace {
		s.initial = initial
	}
	s.data = s.initial
	fields := s.fieldsLocked()
	for _, f := range fields {
		if len(s.issues.At(f.path)) > 0 {
			s.enqueuePath(EventFieldIssuesUpdated, f.path)
		}
	}
	s.issues = nil
	for _, f := range fields {
		s.setTouchedLocked(f, false)
		s.setDirtyLocked(f, false)
	}
	s.log.Debug("store reset", zap.Bool("new_initial", replace), zap.Int("fields", len(fields)))
	s.mu.Unlock()
	s.flush()
}

// ClearFieldIssues drops the issues whose path equals p.
func (s *Store) ClearFieldIssues(p fieldpath.Path) {
	s.mu.Lock()
	before := len(s.issues)
	s.issues = slices.DeleteFunc(s.issues, func(it Issue) bool { return fieldpath.Equal(it.Path, p) })
	if len(s.issues) != before {
		s.enqueuePath(EventFieldIssuesUpdated, p)
	}
	s.mu.Unlock()
	s.flush()
}

// mutate applies fn to the data through a copy-on-write draft on behalf of
// f, then emits change events and recomputes dirty flags.
func (s *Store) mutate(f *Field, opt MutateOpt, fn func(d *produce.Draft) error) error {
	s.mu.Lock()
	defer s.flush()
	defer s.mu.Unlock()

	if !opt.SkipTouch {
		s.setTouchedLocked(f, true)
	}
	asc := s.ascendantsLocked(f.path)
	olds := valuesAt(s.data, asc)
	old := fieldpath.Get(s.data, f.path)

	next, err := s.producer.Produce(s.data, fn)
	if err != nil {
		return fmt.Errorf("formkit: write %s: %w", pathLabel(f.path), err)
	}
	s.data = next

	cur := fieldpath.Get(next, f.path)
	if !s.equal(old, cur) {
		for i := len(asc) - 1; i >= 0; i-- {
			a := asc[i]
			s.enqueue(Event{Name: EventValueChanged, Path: a.path, Value: fieldpath.Get(next, a.path), OldValue: olds[i]})
		}
	}
	if !opt.SkipDirty {
		s.refreshDirtyLocked(f.path, f)
	}
	return nil
}

// refreshDirtyLocked recomputes the dirty flag of f and of every handle
// whose value depends on p: its ancestors and descendants.
func (s *Store) refreshDirtyLocked(p fieldpath.Path, f *Field) {
	s.setDirtyLocked(f, !s.equal(fieldpath.Get(s.initial, f.path), fieldpath.Get(s.data, f.path)))
	for _, other := range s.fields {
		if other == f {
			continue
		}
		if !fieldpath.IsWithin(p, other.path) && !fieldpath.IsDescendant(other.path, p) {
			continue
		}
		s.setDirtyLocked(other, !s.equal(fieldpath.Get(s.initial, other.path), fieldpath.Get(s.data, other.path)))
	}
}

// setTouchedLocked flips the flag and, on a transition, notifies f and its
// registered ascendants, leaf first.
func (s *Store) setTouchedLocked(f *Field, v bool) {
	if f.touched == v {
		return
	}
	f.touched = v
	s.notifyAscendantsLocked(EventFieldTouchUpdated, f)
}

func (s *Store) setDirtyLocked(f *Field, v bool) {
	if f.dirty == v {
		return
	}
	f.dirty = v
	s.notifyAscendantsLocked(EventFieldDirtyUpdated, f)
}

func (s *Store) notifyAscendantsLocked(name EventName, f *Field) {
	asc := s.ascendantsLocked(f.path)
	if len(asc) == 0 || asc[len(asc)-1] != f {
		// unregistered handles still report their own path
		s.enqueuePath(name, f.path)
	}
	for i := len(asc) - 1; i >= 0; i-- {
		s.enqueuePath(name, asc[i].path)
	}
}

// setStatusLocked moves to next and queues the status events implied by the
// transition.
func (s *Store) setStatusLocked(next Status) {
	prev := s.status
	if prev == next {
		return
	}
	s.status = next
	s.log.Debug("status", zap.Stringer("from", prev), zap.Stringer("to", next))
	if (prev == StatusValidating) != (next == StatusValidating) {
		s.enqueue(Event{Name: EventValidationStatusChange, Active: next == StatusValidating})
	}
	if (prev == StatusSubmitting) != (next == StatusSubmitting) {
		s.enqueue(Event{Name: EventSubmissionStatusChange, Active: next == StatusSubmitting})
	}
}

func (s *Store) toIdle() {
	s.mu.Lock()
	s.setStatusLocked(StatusIdle)
	s.mu.Unlock()
	s.flush()
}

// ValidateField runs the validator and reconciles the issues at p and below
// it; issues elsewhere are left alone. A handle is registered at p if
// missing. It is a no-op unless the store is idle and has a validator.
func (s *Store) ValidateField(ctx context.Context, p fieldpath.Path) error {
	if p == nil {
		p = fieldpath.Path{}
	}
	s.mu.Lock()
	if s.status != StatusIdle || s.validator == nil {
		s.mu.Unlock()
		return nil
	}
	s.setStatusLocked(StatusValidating)
	if _, err := s.registerLocked(p, RegisterOpt{}); err != nil {
		s.setStatusLocked(StatusIdle)
		s.mu.Unlock()
		s.flush()
		return err
	}
	data, v := s.data, s.validator
	s.mu.Unlock()
	s.flush()
	defer s.toIdle()

	res, err := v.Validate(ctx, data)
	if err != nil {
		return fmt.Errorf("formkit: validate %s: %w", pathLabel(p), err)
	}

	s.mu.Lock()
	s.enqueuePath(EventValidationTriggered, p)
	if s.reconcileLocked(res.Issues, func(it Issue) bool { return fieldpath.IsWithin(p, it.Path) }) {
		s.enqueuePath(EventFieldIssuesUpdated, p)
	}
	s.log.Debug("field validated", zap.String("path", pathLabel(p)), zap.Int("issues", len(s.issues.Within(p))))
	s.mu.Unlock()
	return nil
}

// ValidateForm runs the validator and reconciles the issues of every
// registered field, then those belonging to no registered field (form-level
// issues included). It is a no-op unless the store is idle and has a
// validator.
func (s *Store) ValidateForm(ctx context.Context) error {
	s.mu.Lock()
	if s.status != StatusIdle || s.validator == nil {
		s.mu.Unlock()
		return nil
	}
	s.setStatusLocked(StatusValidating)
	s.mu.Unlock()
	s.flush()
	defer s.toIdle()
	return s.validateAll(ctx)
}

// validateAll requires the caller to hold the validating status.
func (s *Store) validateAll(ctx context.Context) error {
	s.mu.Lock()
	data, v := s.data, s.validator
	s.mu.Unlock()

	res, err := v.Validate(ctx, data)
	if err != nil {
		return fmt.Errorf("formkit: validate form: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	fields := s.fieldsLocked()
	for _, f := range fields {
		s.enqueuePath(EventValidationTriggered, f.path)
		if s.reconcileLocked(res.Issues, func(it Issue) bool { return fieldpath.IsWithin(f.path, it.Path) }) {
			s.enqueuePath(EventFieldIssuesUpdated, f.path)
		}
	}
	s.reconcileLocked(res.Issues, func(it Issue) bool {
		for _, f := range fields {
			if fieldpath.IsWithin(f.path, it.Path) {
				return false
			}
		}
		return true
	})
	s.log.Debug("form validated", zap.Int("fields", len(fields)), zap.Int("issues", len(s.issues)))
	return nil
}

// reconcileLocked merges next into the issue list within the scope selected
// by inScope. Issues out of scope are untouched, unchanged ones keep their
// place, stale ones are removed and new ones appended once. It reports
// whether the list changed.
func (s *Store) reconcileLocked(next Issues, inScope func(Issue) bool) bool {
	d := reconcile.Diff(s.issues, next, issueEqual, inScope)
	if !d.Changed() {
		return false
	}
	s.issues = slices.DeleteFunc(s.issues, func(it Issue) bool {
		return inScope(it) && reconcile.Contains(d.Removed, it, issueEqual)
	})
	for _, it := range d.Added {
		if !reconcile.Contains(s.issues, it, issueEqual) {
			s.issues = append(s.issues, it)
		}
	}
	return true
}

func issueEqual(a, b Issue) bool {
	return fieldpath.Equal(a.Path, b.Path) &&
		a.Code == b.Code &&
		a.Message == b.Message &&
		a.Hint == b.Hint &&
		a.Rule == b.Rule &&
		reconcile.DeepEqual(a.Params, b.Params)
}
