package fieldpath

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedPath is matched by every *MalformedPathError.
	ErrMalformedPath = errors.New("fieldpath: malformed path")
	// ErrNotContainer is returned when a write has to step through a value
	// that cannot hold children (a string, a number, a struct that does not
	// implement Container...).
	ErrNotContainer = errors.New("fieldpath: value is not a container")
)

// MalformedPathError reports a string path that does not follow the grammar.
type MalformedPathError struct {
	Path   string // The offending input.
	Offset int    // Byte offset of the problem within Path.
	Reason string
}

func (e *MalformedPathError) Error() string {
	return fmt.Sprintf("fieldpath: malformed path %q at offset %d: %s", e.Path, e.Offset, e.Reason)
}

// Is makes errors.Is(err, ErrMalformedPath) hold.
func (e *MalformedPathError) Is(target error) bool { return target == ErrMalformedPath }

func malformed(path string, offset int, reason string) error {
	return &MalformedPathError{Path: path, Offset: offset, Reason: reason}
}
