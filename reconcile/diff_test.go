package reconcile_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/reoring/formkit/reconcile"
)

func TestDiff(t *testing.T) {
	eq := func(a, b string) bool { return a == b }
	r := reconcile.Diff([]string{"a", "b", "c"}, []string{"b", "c", "d"}, eq, nil)

	if diff := cmp.Diff([]string{"d"}, r.Added); diff != "" {
		t.Fatalf("added (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a"}, r.Removed); diff != "" {
		t.Fatalf("removed (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"b", "c"}, r.Unchanged); diff != "" {
		t.Fatalf("unchanged (-want +got):\n%s", diff)
	}
	if !r.Changed() {
		t.Fatalf("expected Changed")
	}
}

func TestDiff_Filter(t *testing.T) {
	eq := func(a, b string) bool { return a == b }
	inScope := func(s string) bool { return strings.HasPrefix(s, "x.") }
	r := reconcile.Diff(
		[]string{"x.a", "y.a", "x.b"},
		[]string{"x.b", "x.c", "y.z"},
		eq, inScope,
	)
	if diff := cmp.Diff([]string{"x.c"}, r.Added); diff != "" {
		t.Fatalf("added (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"x.a"}, r.Removed); diff != "" {
		t.Fatalf("removed (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"x.b"}, r.Unchanged); diff != "" {
		t.Fatalf("unchanged (-want +got):\n%s", diff)
	}
}

func TestDiff_NoChange(t *testing.T) {
	eq := func(a, b int) bool { return a == b }
	r := reconcile.Diff([]int{1, 2}, []int{2, 1}, eq, nil)
	if r.Changed() {
		t.Fatalf("reordering is not a change: %+v", r)
	}
	if !reconcile.Contains([]int{1, 2}, 2, eq) || reconcile.Contains([]int{1}, 3, eq) {
		t.Fatalf("Contains mismatch")
	}
}
