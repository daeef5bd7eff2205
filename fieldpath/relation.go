package fieldpath

// Equal reports whether a and b hold the same segments in the same order.
// A nil path equals only another nil path.
func Equal(a, b Path) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// IsDescendant reports whether child lies strictly below parent. A path is
// never its own descendant.
func IsDescendant(parent, child Path) bool {
	if parent == nil || child == nil || len(parent) >= len(child) {
		return false
	}
	for i := range parent {
		if parent[i] != child[i] {
			return false
		}
	}
	return true
}

// IsWithin reports whether p equals scope or is one of its descendants.
func IsWithin(scope, p Path) bool {
	return Equal(scope, p) || IsDescendant(scope, p)
}

// Equal is the method form of the package-level Equal.
func (p Path) Equal(q Path) bool { return Equal(p, q) }
