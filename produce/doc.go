// Package produce implements copy-on-write updates of form data trees.
//
// Produce hands a Draft of a root value to a mutator. Writes through the
// Draft copy only the containers on the path from the root to the write
// site, once per Produce call; everything the mutator does not touch stays
// shared between the old and the new root. A Produce call without writes
// returns the input root itself.
//
// map[string]any and []any are copied natively. Other container types must
// implement Cloner or be registered in a Registry; values that are neither
// are opaque leaves, and a write that would have to step into one fails
// with ErrOpaque instead of mutating shared state.
package produce
