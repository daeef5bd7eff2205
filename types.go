package formkit

import (
	"go.uber.org/zap"

	"github.com/reoring/formkit/produce"
	"github.com/reoring/formkit/reconcile"
)

// Status is the store's lifecycle state. Exactly one holds at a time.
type Status int

const (
	StatusIdle       Status = iota // Ready for validation or submission.
	StatusValidating               // A validator run is in flight.
	StatusSubmitting               // A submit callback is in flight.
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusValidating:
		return "validating"
	case StatusSubmitting:
		return "submitting"
	}
	return "unknown"
}

// Config bundles store construction options.
type Config struct {
	// InitialData is deep-copied on the way in. nil starts from an empty
	// object.
	InitialData any
	// Validator is optional; without it validation and the validation step
	// of submission are no-ops.
	Validator Validator
	// Comparators override equality per Go type for dirty and change
	// detection.
	Comparators *reconcile.Comparators
	// Cloners opts custom container types into copy-on-write.
	Cloners *produce.Registry
	// Logger receives debug logs. Defaults to zap.NewNop().
	Logger *zap.Logger
}

// RegisterOpt configures RegisterField.
type RegisterOpt struct {
	// DefaultValue is written when the current value at the path is nil.
	DefaultValue any
	// OverrideInitialValue also writes DefaultValue into the initial data,
	// so the field starts clean.
	OverrideInitialValue bool
	// Element is bound to the field right after registration.
	Element any
}

// MutateOpt configures SetValue and ModifyValue. The zero value touches the
// field and recomputes its dirty flag.
type MutateOpt struct {
	SkipTouch bool
	SkipDirty bool
}

// FocusOpt configures Field.Focus.
type FocusOpt struct {
	// SkipTouch leaves the touched flag alone.
	SkipTouch bool
}

func firstOpt[T any](opts []T) T {
	var zero T
	if len(opts) == 0 {
		return zero
	}
	return opts[0]
}
