package formkit

import (
	"context"
	"fmt"

	"github.com/reoring/formkit/fieldpath"
)

// Result is what a Validator reports for one run: either the parsed Value or
// the Issues found. An empty Issues list means the data is valid.
type Result struct {
	Value  any
	Issues Issues
}

// Valid reports whether the result carries no issues.
func (r Result) Valid() bool { return len(r.Issues) == 0 }

// Validator checks a full data tree. It is treated as opaque by the store.
// A returned error is a validator failure, not an invalid form: it
// propagates to the caller unchanged and no issues are reconciled.
type Validator interface {
	Validate(ctx context.Context, data any) (Result, error)
}

// ValidatorFunc adapts a function to Validator.
type ValidatorFunc func(ctx context.Context, data any) (Result, error)

// Validate calls f.
func (f ValidatorFunc) Validate(ctx context.Context, data any) (Result, error) { return f(ctx, data) }

// ValidatorOf adapts a function that only reports issues.
func ValidatorOf(fn func(data any) Issues) Validator {
	return ValidatorFunc(func(_ context.Context, data any) (Result, error) {
		if iss := fn(data); len(iss) > 0 {
			return Result{Issues: iss}, nil
		}
		return Result{Value: data}, nil
	})
}

// CustomIssue is a finding reported by a CustomStrategy. Path uses the
// string path syntax accepted by fieldpath.Parse; "" addresses the root.
type CustomIssue struct {
	Path    string
	Message string
}

// CustomStrategy checks data with plain code. A nil or empty result means
// the data is valid.
type CustomStrategy func(ctx context.Context, data any) ([]CustomIssue, error)

// CustomValidator adapts a CustomStrategy to Validator. Reported issues get
// CodeBusinessRule and their parsed paths. An error from the strategy
// becomes a single form-level CodeUnknown issue carrying its message, unless
// ctx is already done, in which case the context error is returned. A
// malformed issue path is returned as an error.
func CustomValidator(strategy CustomStrategy) Validator {
	return ValidatorFunc(func(ctx context.Context, data any) (Result, error) {
		found, err := strategy(ctx, data)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return Result{}, ctxErr
			}
			msg := err.Error()
			if msg == "" {
				msg = "unknown error"
			}
			return Result{Issues: Issues{FormIssue(CodeUnknown, msg)}}, nil
		}
		if len(found) == 0 {
			return Result{Value: data}, nil
		}
		iss := make(Issues, 0, len(found))
		for _, ci := range found {
			p, err := fieldpath.Parse(ci.Path)
			if err != nil {
				return Result{}, fmt.Errorf("formkit: custom issue path: %w", err)
			}
			iss = append(iss, Issue{Path: p, Code: CodeBusinessRule, Message: ci.Message, Rule: "custom"})
		}
		return Result{Issues: iss}, nil
	})
}
