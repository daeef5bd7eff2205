package produce_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/google/go-cmp/cmp"

	fp "github.com/reoring/formkit/fieldpath"
	"github.com/reoring/formkit/produce"
	"github.com/reoring/formkit/reconcile"
)

func same(a, b any) bool {
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Kind() != vb.Kind() {
		return false
	}
	switch va.Kind() {
	case reflect.Map, reflect.Slice, reflect.Pointer:
		return va.Pointer() == vb.Pointer()
	}
	return a == b
}

func TestProduce_StructuralSharing(t *testing.T) {
	root1 := map[string]any{
		"a": map[string]any{"b": 0, "x": "keep"},
		"c": map[string]any{"d": []any{1, 2}},
	}
	root2, err := produce.Produce(root1, func(d *produce.Draft) error {
		return d.Set(fp.MustParse("a.b"), 1)
	})
	if err != nil {
		t.Fatalf("Produce: %v", err)
	}
	r1, r2 := root1, root2.(map[string]any)
	if same(r1, r2) {
		t.Fatalf("root must be copied")
	}
	if same(r1["a"], r2["a"]) {
		t.Fatalf("touched path must be copied")
	}
	if !same(r1["c"], r2["c"]) {
		t.Fatalf("untouched sibling must be shared")
	}
	if fp.Get(root1, fp.MustParse("a.b")) != 0 {
		t.Fatalf("base was mutated: %v", root1)
	}
	if fp.Get(root2, fp.MustParse("a.b")) != 1 || fp.Get(root2, fp.MustParse("a.x")) != "keep" {
		t.Fatalf("unexpected result: %v", root2)
	}
}

func TestProduce_NoWritesReturnsInput(t *testing.T) {
	root := map[string]any{"a": []any{1}}
	out, err := produce.Produce(root, func(d *produce.Draft) error { return nil })
	if err != nil {
		t.Fatalf("Produce: %v", err)
	}
	if !same(root, out) || !reconcile.DeepEqual(root, out) {
		t.Fatalf("no-op produce must return the input")
	}
}

func TestProduce_MultipleWritesCopyOnce(t *testing.T) {
	root := map[string]any{"list": []any{"a", "b"}}
	var mid any
	out, err := produce.Produce(root, func(d *produce.Draft) error {
		if err := d.Set(fp.MustParse("list[0]"), "A"); err != nil {
			return err
		}
		mid = d.Get(fp.MustParse("list"))
		return d.Set(fp.MustParse("list[1]"), "B")
	})
	if err != nil {
		t.Fatalf("Produce: %v", err)
	}
	if diff := cmp.Diff([]any{"A", "B"}, fp.Get(out, fp.MustParse("list"))); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if !same(mid, fp.Get(out, fp.MustParse("list"))) {
		t.Fatalf("second write should reuse the draft copy")
	}
	if diff := cmp.Diff([]any{"a", "b"}, root["list"]); diff != "" {
		t.Fatalf("base mutated (-want +got):\n%s", diff)
	}
}

func TestProduce_ReplacedSubtreeIsNotMutated(t *testing.T) {
	supplied := map[string]any{"city": "Arkham"}
	out, err := produce.Produce(map[string]any{}, func(d *produce.Draft) error {
		if err := d.Set(fp.MustParse("address"), supplied); err != nil {
			return err
		}
		return d.Set(fp.MustParse("address.zip"), "01234")
	})
	if err != nil {
		t.Fatalf("Produce: %v", err)
	}
	if _, ok := supplied["zip"]; ok {
		t.Fatalf("caller-supplied value was mutated")
	}
	if fp.Get(out, fp.MustParse("address.zip")) != "01234" {
		t.Fatalf("write lost: %v", out)
	}
}

func TestProduce_OwnershipDistinguishesLookalikePaths(t *testing.T) {
	odd := "b\"'"
	root1 := map[string]any{
		"a":       map[string]any{odd: map[string]any{}},
		"a." + odd: map[string]any{"keep": 1},
	}
	nested := fp.Path{fp.Key("a"), fp.Key(odd)}
	dotted := fp.Path{fp.Key("a." + odd)}
	if nested.String() != dotted.String() {
		t.Fatalf("paths expected to render alike: %q %q", nested, dotted)
	}
	root2, err := produce.Produce(root1, func(d *produce.Draft) error {
		if err := d.Set(nested.Field("x"), 1); err != nil {
			return err
		}
		return d.Set(dotted.Field("y"), 2)
	})
	if err != nil {
		t.Fatalf("Produce: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"keep": 1}, root1["a."+odd]); diff != "" {
		t.Fatalf("base mutated (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]any{}, fp.Get(root1, nested)); diff != "" {
		t.Fatalf("base mutated (-want +got):\n%s", diff)
	}
	if fp.Get(root2, dotted.Field("y")) != 2 || fp.Get(root2, nested.Field("x")) != 1 {
		t.Fatalf("writes lost: %v", root2)
	}
}

func TestProduce_ModifyInPlace(t *testing.T) {
	tags := []any{"x"}
	root := map[string]any{"tags": tags}
	out, err := produce.Produce(root, func(d *produce.Draft) error {
		return d.Modify(fp.MustParse("tags"), func(cur any) (any, bool) {
			cur.([]any)[0] = "y"
			return nil, false
		})
	})
	if err != nil {
		t.Fatalf("Produce: %v", err)
	}
	if tags[0] != "x" {
		t.Fatalf("in-place modification leaked into base")
	}
	if fp.Get(out, fp.MustParse("tags[0]")) != "y" {
		t.Fatalf("in-place modification lost: %v", out)
	}
}

func TestProduce_Delete(t *testing.T) {
	root := map[string]any{"a": map[string]any{"b": 1}}
	out, err := produce.Produce(root, func(d *produce.Draft) error {
		removed, err := d.Delete(fp.MustParse("x.y"))
		if removed {
			t.Fatalf("missing path reported removed")
		}
		return err
	})
	if err != nil || !same(out, root) {
		t.Fatalf("no-op delete must not copy")
	}
	out, err = produce.Produce(root, func(d *produce.Draft) error {
		_, err := d.Delete(fp.MustParse("a.b"))
		return err
	})
	if err != nil {
		t.Fatalf("Produce: %v", err)
	}
	if _, ok := fp.Lookup(out, fp.MustParse("a.b")); ok {
		t.Fatalf("a.b not deleted")
	}
	if _, ok := fp.Lookup(root, fp.MustParse("a.b")); !ok {
		t.Fatalf("base mutated")
	}
}

func TestProduce_ErrorDiscardsDraft(t *testing.T) {
	root := map[string]any{"a": 1}
	boom := errors.New("boom")
	out, err := produce.Produce(root, func(d *produce.Draft) error {
		_ = d.Set(fp.MustParse("a"), 2)
		return boom
	})
	if !errors.Is(err, boom) || !same(out, root) {
		t.Fatalf("expected original root and error, got %v %v", out, err)
	}
}

// box is an addressable container that is not copyable by default.
type box struct{ vals map[string]any }

func (b *box) Child(seg fp.Segment) (any, bool) {
	v, ok := b.vals[seg.Key()]
	return v, ok
}

func (b *box) SetChild(seg fp.Segment, v any) error {
	b.vals[seg.Key()] = v
	return nil
}

func (b *box) DeleteChild(seg fp.Segment) bool {
	_, ok := b.vals[seg.Key()]
	delete(b.vals, seg.Key())
	return ok
}

func TestProduce_OpaqueAndRegistered(t *testing.T) {
	orig := &box{vals: map[string]any{"k": 1}}
	root := map[string]any{"box": orig}

	_, err := produce.Produce(root, func(d *produce.Draft) error {
		return d.Set(fp.MustParse("box.k"), 2)
	})
	if !errors.Is(err, produce.ErrOpaque) {
		t.Fatalf("expected ErrOpaque, got %v", err)
	}

	reg := produce.NewRegistry()
	first := produce.RegisterType(reg, func(b *box) *box {
		cp := &box{vals: map[string]any{}}
		for k, v := range b.vals {
			cp.vals[k] = v
		}
		return cp
	})
	again := produce.RegisterType(reg, func(b *box) *box { return b })
	if !first || again {
		t.Fatalf("registration must be idempotent: first=%v again=%v", first, again)
	}

	out, err := produce.New(reg).Produce(root, func(d *produce.Draft) error {
		return d.Set(fp.MustParse("box.k"), 2)
	})
	if err != nil {
		t.Fatalf("Produce: %v", err)
	}
	if orig.vals["k"] != 1 {
		t.Fatalf("registered container mutated in place")
	}
	if fp.Get(out, fp.MustParse("box.k")) != 2 {
		t.Fatalf("write lost")
	}
	if !reg.Registered(reflect.TypeOf(orig)) || !reg.Copyable(orig) {
		t.Fatalf("box should be registered")
	}
}

func TestDeepClone(t *testing.T) {
	reg := produce.NewRegistry()
	in := map[string]any{"a": []any{map[string]any{"b": 1}}}
	out := reg.DeepClone(in).(map[string]any)
	if !reconcile.DeepEqual(in, out) {
		t.Fatalf("clone differs")
	}
	out["a"].([]any)[0].(map[string]any)["b"] = 2
	if fp.Get(in, fp.MustParse("a[0].b")) != 1 {
		t.Fatalf("deep clone shares nested containers")
	}
}
