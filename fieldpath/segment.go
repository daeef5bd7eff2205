package fieldpath

import (
	"strconv"
)

// Segment is a single step of a Path: an object key or an array index.
// Segments are comparable with ==.
type Segment struct {
	key     string
	index   int
	isIndex bool
}

// Key returns a key segment.
func Key(k string) Segment { return Segment{key: k} }

// Index returns an index segment. It panics on a negative index.
func Index(i int) Segment {
	if i < 0 {
		panic("fieldpath.Index: negative index " + strconv.Itoa(i))
	}
	return Segment{index: i, isIndex: true}
}

// wildcard is only produced by Enumerate to stand for "any index".
var wildcard = Segment{index: -1, isIndex: true}

// IsIndex reports whether the segment is an array index.
func (s Segment) IsIndex() bool { return s.isIndex }

// Key returns the key of a key segment, or the decimal form of an index.
func (s Segment) Key() string {
	if s.isIndex {
		return strconv.Itoa(s.index)
	}
	return s.key
}

// Index returns the index of an index segment. For key segments it returns
// the numeric value of an all-digit key and false otherwise.
func (s Segment) Index() (int, bool) {
	if s.isIndex {
		return s.index, s.index >= 0
	}
	if !isDigits(s.key) {
		return 0, false
	}
	n, err := strconv.Atoi(s.key)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (s Segment) String() string {
	if s.isIndex {
		if s.index < 0 {
			return "[*]"
		}
		return "[" + strconv.Itoa(s.index) + "]"
	}
	return s.key
}

// Path is an ordered sequence of segments. The empty path addresses the root
// value. A nil Path is "no path" (for example a form-level issue) and is not
// Equal to the empty root path.
type Path []Segment

// Append returns a new path with segs appended. p is never modified.
func (p Path) Append(segs ...Segment) Path {
	out := make(Path, 0, len(p)+len(segs))
	out = append(out, p...)
	return append(out, segs...)
}

// Field returns a new path extended by a key segment.
func (p Path) Field(k string) Path { return p.Append(Key(k)) }

// At returns a new path extended by an index segment.
func (p Path) At(i int) Path { return p.Append(Index(i)) }

// Parent returns the path without its last segment. The parent of the root is
// the root.
func (p Path) Parent() Path {
	if len(p) == 0 {
		return Path{}
	}
	return p[:len(p)-1 : len(p)-1]
}

// Last returns the final segment.
func (p Path) Last() (Segment, bool) {
	if len(p) == 0 {
		return Segment{}, false
	}
	return p[len(p)-1], true
}

// Clone returns a copy that does not share storage with p.
func (p Path) Clone() Path {
	if p == nil {
		return nil
	}
	return append(Path{}, p...)
}

// Prefixes returns every prefix of p from the root to p itself, so a path of
// length n yields n+1 entries.
func (p Path) Prefixes() []Path {
	out := make([]Path, 0, len(p)+1)
	for i := 0; i <= len(p); i++ {
		out = append(out, p[:i:i])
	}
	return out
}

// String renders p in dot/bracket syntax. See Render; the result parses back
// to p.
func (p Path) String() string { return Render(p) }

// Canonical returns the dot-joined registry key of p. See Canonical.
func (p Path) Canonical() string { return Canonical(p) }

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
