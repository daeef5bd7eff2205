package reconcile

// Result classifies the elements of two lists.
type Result[T any] struct {
	Added     []T // In next but not in prev.
	Removed   []T // In prev but not in next.
	Unchanged []T // In both (the next-side element).
}

// Changed reports whether anything was added or removed.
func (r Result[T]) Changed() bool { return len(r.Added) > 0 || len(r.Removed) > 0 }

// Diff compares prev and next with equal. When filter is non-nil only
// elements it accepts are classified; the rest are ignored on both sides.
func Diff[T any](prev, next []T, equal func(a, b T) bool, filter func(T) bool) Result[T] {
	var r Result[T]
	keep := func(v T) bool { return filter == nil || filter(v) }
	for _, n := range next {
		if !keep(n) {
			continue
		}
		if contains(prev, n, equal) {
			r.Unchanged = append(r.Unchanged, n)
		} else {
			r.Added = append(r.Added, n)
		}
	}
	for _, p := range prev {
		if !keep(p) {
			continue
		}
		if !contains(next, p, equal) {
			r.Removed = append(r.Removed, p)
		}
	}
	return r
}

// Contains reports whether list holds an element equal to v.
func Contains[T any](list []T, v T, equal func(a, b T) bool) bool {
	return contains(list, v, equal)
}

func contains[T any](list []T, v T, equal func(a, b T) bool) bool {
	for _, it := range list {
		if equal(it, v) {
			return true
		}
	}
	return false
}
