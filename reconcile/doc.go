// Package reconcile compares form values structurally.
//
// DeepEqual walks maps, slices, arrays, pointers and structs, compares
// time.Time by epoch milliseconds and *regexp.Regexp by source, and lets a
// Comparators registry override equality per Go type. Diff classifies two
// lists into added, removed and unchanged elements; the form store uses it to
// merge validation issues without re-announcing ones that did not change.
package reconcile
