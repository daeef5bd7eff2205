package formkit

import (
	"context"
	"slices"

	"go.uber.org/zap"

	"github.com/reoring/formkit/fieldpath"
)

// Preventable is an event whose default action can be cancelled, such as a
// form submit event coming from a UI binding.
type Preventable interface {
	PreventDefault()
}

// SubmitSuccessFunc receives the data that passed validation.
type SubmitSuccessFunc func(ctx context.Context, data any, ev Preventable) error

// SubmitErrorFunc receives the issues that blocked submission.
type SubmitErrorFunc func(ctx context.Context, issues Issues, ev Preventable) error

// SubmitHandler runs one submission. ev may be nil.
type SubmitHandler func(ctx context.Context, ev Preventable) error

// CreateSubmitHandler returns a handler that validates the whole form and
// then calls onSuccess with the data, or focuses the first invalid bound
// field and calls onError with the issues. Either callback may be nil.
//
// A handler invoked while the store is not idle returns nil without doing
// anything. The store stays in the submitting status until the callback
// returns; the context handed to it is cancelled afterwards. Validator and
// callback errors are returned unchanged in meaning.
func (s *Store) CreateSubmitHandler(onSuccess SubmitSuccessFunc, onError SubmitErrorFunc) SubmitHandler {
	return func(ctx context.Context, ev Preventable) error {
		if ev != nil {
			ev.PreventDefault()
		}

		s.mu.Lock()
		if st := s.status; st != StatusIdle {
			s.mu.Unlock()
			s.log.Debug("submit ignored", zap.Stringer("status", st))
			return nil
		}
		hasValidator := s.validator != nil
		if hasValidator {
			s.setStatusLocked(StatusValidating)
		} else {
			s.setStatusLocked(StatusSubmitting)
		}
		s.mu.Unlock()
		s.flush()
		defer s.toIdle()

		if hasValidator {
			if err := s.validateAll(ctx); err != nil {
				return err
			}
		}

		s.mu.Lock()
		s.setStatusLocked(StatusSubmitting)
		data := s.data
		issues := slices.Clone(s.issues)
		var target *Field
		if len(issues) > 0 {
			target = s.focusTargetLocked()
		}
		s.mu.Unlock()
		s.flush()

		cbCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		if len(issues) == 0 {
			s.log.Debug("submit succeeded")
			if onSuccess == nil {
				return nil
			}
			return onSuccess(cbCtx, data, ev)
		}

		s.log.Debug("submit blocked", zap.Int("issues", len(issues)))
		if target != nil {
			target.Focus()
		}
		if onError == nil {
			return nil
		}
		return onError(cbCtx, issues, ev)
	}
}

// focusTargetLocked finds the first issue pointing at a registered field
// with a bound element.
func (s *Store) focusTargetLocked() *Field {
	for _, it := range s.issues {
		if it.Path == nil {
			continue
		}
		f, ok := s.fields[fieldpath.Canonical(it.Path)]
		if !ok || f.element == nil {
			continue
		}
		return f
	}
	return nil
}
