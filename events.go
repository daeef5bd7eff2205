package formkit

import (
	"go.uber.org/zap"

	"github.com/reoring/formkit/fieldpath"
)

// EventName identifies a store notification channel.
type EventName string

const (
	EventSubmissionStatusChange EventName = "submissionStatusChange"
	EventValidationStatusChange EventName = "validationStatusChange"
	EventFieldRegistered        EventName = "fieldRegistered"
	EventFieldUnregistered      EventName = "fieldUnregistered"
	EventFieldTouchUpdated      EventName = "fieldTouchUpdated"
	EventFieldDirtyUpdated      EventName = "fieldDirtyUpdated"
	EventFieldIssuesUpdated     EventName = "fieldIssuesUpdated"
	EventValueChanged           EventName = "valueChanged"
	EventElementBound           EventName = "elementBound"
	EventElementUnbound         EventName = "elementUnbound"
	EventValidationTriggered    EventName = "validationTriggered"
)

// EventNames lists every channel in a stable order.
var EventNames = []EventName{
	EventSubmissionStatusChange,
	EventValidationStatusChange,
	EventFieldRegistered,
	EventFieldUnregistered,
	EventFieldTouchUpdated,
	EventFieldDirtyUpdated,
	EventFieldIssuesUpdated,
	EventValueChanged,
	EventElementBound,
	EventElementUnbound,
	EventValidationTriggered,
}

// Event is the payload delivered to listeners. Only the fields relevant to
// Name are set.
type Event struct {
	Name EventName
	// Path of the field concerned; nil for status events.
	Path fieldpath.Path
	// Active is the new status flag for the two status channels.
	Active bool
	// Value and OldValue are set for valueChanged.
	Value, OldValue any
	// Element is set for elementBound.
	Element any
}

// On subscribes fn to the named channel and returns its unsubscribe
// function. Listeners run synchronously after the store has released its
// lock, so they may call back into the store.
func (s *Store) On(name EventName, fn func(Event)) (unsubscribe func()) {
	return s.bus.Subscribe(name, fn)
}

func (s *Store) onPath(name EventName, fn func(fieldpath.Path)) func() {
	return s.On(name, func(ev Event) { fn(ev.Path) })
}

// OnSubmissionStatusChange reports entering and leaving the submitting status.
func (s *Store) OnSubmissionStatusChange(fn func(isSubmitting bool)) func() {
	return s.On(EventSubmissionStatusChange, func(ev Event) { fn(ev.Active) })
}

// OnValidationStatusChange reports entering and leaving the validating status.
func (s *Store) OnValidationStatusChange(fn func(isValidating bool)) func() {
	return s.On(EventValidationStatusChange, func(ev Event) { fn(ev.Active) })
}

// OnFieldRegistered fires after a handle is created.
func (s *Store) OnFieldRegistered(fn func(path fieldpath.Path)) func() {
	return s.onPath(EventFieldRegistered, fn)
}

// OnFieldUnregistered fires after a handle is removed.
func (s *Store) OnFieldUnregistered(fn func(path fieldpath.Path)) func() {
	return s.onPath(EventFieldUnregistered, fn)
}

// OnFieldTouchUpdated fires when a touched flag flips, for the field and
// each registered ascendant.
func (s *Store) OnFieldTouchUpdated(fn func(path fieldpath.Path)) func() {
	return s.onPath(EventFieldTouchUpdated, fn)
}

// OnFieldDirtyUpdated fires when a dirty flag flips.
func (s *Store) OnFieldDirtyUpdated(fn func(path fieldpath.Path)) func() {
	return s.onPath(EventFieldDirtyUpdated, fn)
}

// OnFieldIssuesUpdated fires with the validated scope whenever the issues at
// or below it actually changed.
func (s *Store) OnFieldIssuesUpdated(fn func(path fieldpath.Path)) func() {
	return s.onPath(EventFieldIssuesUpdated, fn)
}

// OnValueChanged fires leaf to root for every registered handle at or above
// a write that changed the value.
func (s *Store) OnValueChanged(fn func(path fieldpath.Path, newValue, oldValue any)) func() {
	return s.On(EventValueChanged, func(ev Event) { fn(ev.Path, ev.Value, ev.OldValue) })
}

// OnElementBound fires when an element is bound to a handle.
func (s *Store) OnElementBound(fn func(path fieldpath.Path, element any)) func() {
	return s.On(EventElementBound, func(ev Event) { fn(ev.Path, ev.Element) })
}

// OnElementUnbound fires when a bound element is released.
func (s *Store) OnElementUnbound(fn func(path fieldpath.Path)) func() {
	return s.onPath(EventElementUnbound, fn)
}

// OnValidationTriggered fires once per ValidateField run.
func (s *Store) OnValidationTriggered(fn func(path fieldpath.Path)) func() {
	return s.onPath(EventValidationTriggered, fn)
}

// enqueue requires s.mu.
func (s *Store) enqueue(ev Event) {
	s.pending = append(s.pending, ev)
}

func (s *Store) enqueuePath(name EventName, p fieldpath.Path) {
	s.enqueue(Event{Name: name, Path: p})
}

// flush delivers queued events in order. It must be called without s.mu.
// A flush already running, on this goroutine or another, picks up the new
// events instead.
func (s *Store) flush() {
	for {
		s.mu.Lock()
		if s.flushing || len(s.pending) == 0 {
			s.mu.Unlock()
			return
		}
		s.flushing = true
		batch := s.pending
		s.pending = nil
		s.mu.Unlock()
		s.deliver(batch)
	}
}

func (s *Store) deliver(batch []Event) {
	defer func() {
		s.mu.Lock()
		s.flushing = false
		s.mu.Unlock()
	}()
	for _, ev := range batch {
		if ce := s.log.Check(zap.DebugLevel, "event"); ce != nil {
			ce.Write(zap.String("name", string(ev.Name)), zap.String("path", pathLabel(ev.Path)))
		}
		s.bus.Emit(ev.Name, ev)
	}
}
