package fieldpath

import (
	"strconv"
	"strings"
)

// Parse converts a string path into segments.
//
// "." separates segments and never produces one. "[" opens a bracket that
// must hold a non-negative integer or a single/double quoted key, in which a
// backslash makes the next character literal. Any other
// run of characters is taken literally as a key. The empty string is the
// root path.
func Parse(s string) (Path, error) {
	out := Path{}
	i := 0
	for i < len(s) {
		switch s[i] {
		case '.':
			i++
		case '[':
			seg, next, err := parseBracket(s, i)
			if err != nil {
				return nil, err
			}
			out = append(out, seg)
			i = next
		default:
			j := i
			for j < len(s) && s[j] != '.' && s[j] != '[' {
				j++
			}
			out = append(out, Key(s[i:j]))
			i = j
		}
	}
	return out, nil
}

// MustParse is like Parse but panics on malformed input. Intended for
// literals in code and tests.
func MustParse(s string) Path {
	p, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return p
}

// parseBracket parses the bracket starting at s[open] == '[' and returns the
// segment together with the offset just past the closing ']'.
func parseBracket(s string, open int) (Segment, int, error) {
	i := open + 1
	if i < len(s) && (s[i] == '"' || s[i] == '\'') {
		q := s[i]
		var key strings.Builder
		j := i + 1
		for ; j < len(s) && s[j] != q; j++ {
			if s[j] == '\\' {
				j++
				if j == len(s) {
					break
				}
			}
			key.WriteByte(s[j])
		}
		if j >= len(s) {
			return Segment{}, 0, malformed(s, i, "unterminated quoted key")
		}
		if j+1 >= len(s) || s[j+1] != ']' {
			return Segment{}, 0, malformed(s, j+1, "expected ']' after quoted key")
		}
		return Key(key.String()), j + 2, nil
	}
	end := strings.IndexByte(s[i:], ']')
	if end < 0 {
		return Segment{}, 0, malformed(s, open, "unterminated bracket")
	}
	content := s[i : i+end]
	if content == "" {
		return Segment{}, 0, malformed(s, i, "empty bracket")
	}
	if !isDigits(content) {
		return Segment{}, 0, malformed(s, i, "bracket content must be a non-negative integer or a quoted key")
	}
	n, err := strconv.Atoi(content)
	if err != nil {
		return Segment{}, 0, malformed(s, i, "index out of range")
	}
	return Index(n), i + end + 1, nil
}

// Render converts segments back into string form. Index segments render as
// "[n]" without a preceding dot; key segments are separated by "." from
// whatever precedes them. Keys that the bare syntax cannot carry (empty, or
// containing "." or "[") are rendered as quoted brackets, escaping the quote
// and backslashes, so Parse(Render(p)) equals p for every p.
func Render(p Path) string {
	var b strings.Builder
	for _, seg := range p {
		if seg.isIndex {
			b.WriteString(seg.String())
			continue
		}
		if q, ok := quoteFor(seg.key); ok {
			b.WriteByte('[')
			b.WriteByte(q)
			for i := 0; i < len(seg.key); i++ {
				if c := seg.key[i]; c == q || c == '\\' {
					b.WriteByte('\\')
				}
				b.WriteByte(seg.key[i])
			}
			b.WriteByte(q)
			b.WriteByte(']')
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(seg.key)
	}
	return b.String()
}

// quoteFor reports whether key needs the bracket form and which quote to use.
// Double quotes are preferred; single quotes avoid escaping when the key
// holds a double quote only.
func quoteFor(key string) (byte, bool) {
	if key != "" && !strings.ContainsAny(key, ".[") {
		return 0, false
	}
	if strings.ContainsRune(key, '"') && !strings.ContainsRune(key, '\'') {
		return '\'', true
	}
	return '"', true
}

// Canonical joins every segment with "." regardless of its kind. It is a
// registry key only: Key("0") and Index(0) share a canonical form and the
// result is not guaranteed to Parse back.
func Canonical(p Path) string {
	switch len(p) {
	case 0:
		return ""
	case 1:
		return p[0].Key()
	}
	var b strings.Builder
	for i, seg := range p {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(seg.Key())
	}
	return b.String()
}
