package fieldpath_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	fp "github.com/reoring/formkit/fieldpath"
)

func TestSet_AutoVivify(t *testing.T) {
	root, err := fp.Set(map[string]any{}, fp.Path{fp.Key("a"), fp.Key("b"), fp.Index(0)}, "x")
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	want := map[string]any{"a": map[string]any{"b": []any{"x"}}}
	if diff := cmp.Diff(want, root); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestSet_NilRootAndGrowth(t *testing.T) {
	root, err := fp.Set(nil, fp.MustParse("foo.bar[3]"), "C")
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	want := map[string]any{"foo": map[string]any{"bar": []any{nil, nil, nil, "C"}}}
	if diff := cmp.Diff(want, root); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}

	root, err = fp.Set(nil, fp.MustParse("[1].a"), 1)
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	if diff := cmp.Diff([]any{nil, map[string]any{"a": 1}}, root); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestSet_InPlace(t *testing.T) {
	inner := map[string]any{"x": 1}
	root := map[string]any{"a": inner}
	out, err := fp.Set(root, fp.MustParse("a.x"), 2)
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	if inner["x"] != 2 {
		t.Fatalf("expected in-place mutation, got %v", inner)
	}
	if out.(map[string]any)["a"].(map[string]any)["x"] != 2 {
		t.Fatalf("unexpected result %v", out)
	}
}

func TestSet_RootPath(t *testing.T) {
	out, err := fp.Set(map[string]any{"a": 1}, fp.Path{}, "replaced")
	if err != nil || out != "replaced" {
		t.Fatalf("Set(root) = %v, %v", out, err)
	}
}

func TestSet_ThroughLeafFails(t *testing.T) {
	_, err := fp.Set(map[string]any{"a": "text"}, fp.MustParse("a.b"), 1)
	if !errors.Is(err, fp.ErrNotContainer) {
		t.Fatalf("expected ErrNotContainer, got %v", err)
	}
	_, err = fp.Set(map[string]any{"a": []any{}}, fp.MustParse("a.name"), 1)
	if !errors.Is(err, fp.ErrNotContainer) {
		t.Fatalf("expected ErrNotContainer for key on array, got %v", err)
	}
}

func TestGet(t *testing.T) {
	root := map[string]any{
		"a": nil,
		"b": []any{map[string]any{"c": 3}},
		"m": map[string]any{"0": "zero"},
	}
	if v := fp.Get(root, fp.MustParse("a.b")); v != nil {
		t.Fatalf("expected nil through null, got %v", v)
	}
	if v := fp.Get(root, fp.MustParse("b[0].c")); v != 3 {
		t.Fatalf("got %v", v)
	}
	if v := fp.Get(root, fp.MustParse("b.0.c")); v != 3 {
		t.Fatalf("digit key on array should index, got %v", v)
	}
	if v := fp.Get(root, fp.MustParse("m[0]")); v != "zero" {
		t.Fatalf("index on map should use decimal key, got %v", v)
	}
	if v := fp.Get(root, fp.MustParse("b[5].c")); v != nil {
		t.Fatalf("out of range should be nil, got %v", v)
	}
	if v := fp.Get(root, fp.Path{}); v == nil {
		t.Fatalf("root path should return root")
	}
	if _, ok := fp.Lookup(root, fp.MustParse("a")); !ok {
		t.Fatalf("explicit nil should be found")
	}
	if _, ok := fp.Lookup(root, fp.MustParse("zz")); ok {
		t.Fatalf("missing key reported as found")
	}
}

func TestModify(t *testing.T) {
	root := map[string]any{"tags": []any{"a"}}

	out, err := fp.Modify(root, fp.MustParse("tags"), func(cur any) (any, bool) {
		return append(cur.([]any), "b"), true
	})
	if err != nil {
		t.Fatalf("Modify: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"tags": []any{"a", "b"}}, out); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}

	// in-place mutation without replacement
	_, err = fp.Modify(out, fp.MustParse("tags"), func(cur any) (any, bool) {
		cur.([]any)[0] = "z"
		return nil, false
	})
	if err != nil {
		t.Fatalf("Modify: %v", err)
	}
	if got := fp.Get(out, fp.MustParse("tags[0]")); got != "z" {
		t.Fatalf("in-place mutation lost: %v", got)
	}
}

func TestDelete(t *testing.T) {
	root := map[string]any{"a": map[string]any{"b": 1, "c": 2}, "l": []any{1, 2, 3}}
	if !fp.Delete(root, fp.MustParse("a.b")) {
		t.Fatalf("expected delete")
	}
	if _, ok := fp.Lookup(root, fp.MustParse("a.b")); ok {
		t.Fatalf("a.b still present")
	}
	if !fp.Delete(root, fp.MustParse("l[1]")) {
		t.Fatalf("expected delete of array element")
	}
	if diff := cmp.Diff([]any{1, nil, 3}, root["l"]); diff != "" {
		t.Fatalf("array delete should leave a hole (-want +got):\n%s", diff)
	}
	if fp.Delete(root, fp.MustParse("x.y.z")) {
		t.Fatalf("missing intermediate must be a no-op")
	}
	if _, ok := root["x"]; ok {
		t.Fatalf("delete must not vivify")
	}
	if fp.Delete(root, fp.Path{}) {
		t.Fatalf("root cannot be deleted in place")
	}
}

// bag is a Container used to check custom addressable types.
type bag struct{ m map[string]any }

func (b *bag) Child(seg fp.Segment) (any, bool) {
	v, ok := b.m[seg.Key()]
	return v, ok
}

func (b *bag) SetChild(seg fp.Segment, v any) error {
	if seg.IsIndex() {
		return errors.New("bag: no indices")
	}
	b.m[seg.Key()] = v
	return nil
}
func (b *bag) DeleteChild(seg fp.Segment) bool {
	_, ok := b.m[seg.Key()]
	delete(b.m, seg.Key())
	return ok
}

func TestContainer(t *testing.T) {
	b := &bag{m: map[string]any{}}
	root := map[string]any{"bag": b}
	if _, err := fp.Set(root, fp.MustParse("bag.k"), 7); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if fp.Get(root, fp.MustParse("bag.k")) != 7 {
		t.Fatalf("container child not stored")
	}
	if _, err := fp.Set(root, fp.MustParse("bag[0]"), 1); err == nil {
		t.Fatalf("expected container error to propagate")
	}
	if !fp.Delete(root, fp.MustParse("bag.k")) {
		t.Fatalf("expected container delete")
	}
	if !fp.IsContainer(b) || fp.IsContainer("x") {
		t.Fatalf("IsContainer misclassified")
	}
}
