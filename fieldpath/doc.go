// Package fieldpath addresses values inside nested form data.
//
// A Path is an ordered list of Segments, each either a string key (objects)
// or a non-negative integer index (arrays, tuples). The package provides:
//
//   - Parse/Render: the dot/bracket string syntax ("a.b[3].c", `a["x.y"]`).
//   - Canonical: a dot-joined key used for registries (not parseable back).
//   - Get/Lookup/Set/Modify/Delete: in-place access over map[string]any,
//     []any and Container implementations, with auto-vivification on writes.
//   - Equal/IsDescendant/IsWithin: relations between paths.
//   - Of/KeyOf/Root: typed and chainable ways of building paths without strings.
//   - Enumerate/Paths: the set of paths a Go struct type exposes.
//
// Grammar
//
//	path    = [ segment ] { "." segment | "[" bracket "]" }
//	segment = 1*( any char except "." and "[" )
//	bracket = 1*DIGIT | DQUOTE *( qchar | "\" any ) DQUOTE
//	                  | "'" *( qchar | "\" any ) "'"
//
// Bare segments are taken literally. Inside a quoted key a backslash makes
// the next character literal. Keys that contain "." or "[" render in quoted
// bracket form, so Parse(Render(p)) reproduces every p.
//
// Example
//
//	p := fieldpath.MustParse("address.lines[0]")
//	data, _ := fieldpath.Set(map[string]any{}, p, "221B")
//	// data == map[string]any{"address": map[string]any{"lines": []any{"221B"}}}
package fieldpath
