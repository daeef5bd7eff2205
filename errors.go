package formkit

import (
	"errors"
	"fmt"
	"strings"

	"github.com/reoring/formkit/fieldpath"
)

// Issue codes produced by the rules package and expected from adapters.
const (
	CodeRequired      = "required"
	CodeInvalidType   = "invalid_type"
	CodeTooSmall      = "too_small"
	CodeTooBig        = "too_big"
	CodeTooShort      = "too_short"
	CodeTooLong       = "too_long"
	CodePattern       = "pattern"
	CodeInvalidEnum   = "invalid_enum"
	CodeInvalidFormat = "invalid_format"
	// Cross-field passes
	CodeUniqueness   = "uniqueness"
	CodeBusinessRule = "business_rule"
	CodeConflict     = "conflict"
	// Adapters that turn a validator failure into an issue use this code.
	CodeUnknown = "unknown"
)

// Issue is a single validation finding. A nil Path marks a form-level issue
// that belongs to no field.
type Issue struct {
	Path    fieldpath.Path
	Code    string // One of the codes listed above, or adapter specific.
	Message string
	Hint    string // Optional: remediation hints, format names, etc.
	// Params carries structured parameters (e.g., {"min":1, "got":0}) for
	// i18n and logging.
	Params map[string]any
	// Rule optionally records the rule name that produced this issue.
	Rule string
}

// IsFormLevel reports whether the issue has no path.
func (it Issue) IsFormLevel() bool { return it.Path == nil }

func (it Issue) String() string {
	return fmt.Sprintf("%s at %s: %s", it.Code, pathLabel(it.Path), it.Message)
}

func pathLabel(p fieldpath.Path) string {
	switch {
	case p == nil:
		return "(form)"
	case len(p) == 0:
		return "(root)"
	}
	return fieldpath.Render(p)
}

// Issues is a collection of validation findings that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := min(n, maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		// e.g. required at address.city
		fmt.Fprintf(b, "%s at %s", iss[i].Code, pathLabel(iss[i].Path))
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// At returns the issues whose path equals p exactly.
func (iss Issues) At(p fieldpath.Path) Issues {
	var out Issues
	for _, it := range iss {
		if fieldpath.Equal(it.Path, p) {
			out = append(out, it)
		}
	}
	return out
}

// Within returns the issues at p or below it.
func (iss Issues) Within(p fieldpath.Path) Issues {
	var out Issues
	for _, it := range iss {
		if fieldpath.IsWithin(p, it.Path) {
			out = append(out, it)
		}
	}
	return out
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}
