package fieldpath_test

import (
	"reflect"
	"testing"
	"time"

	fp "github.com/reoring/formkit/fieldpath"
)

type city struct {
	Name string `json:"name"`
	Zip  string `json:"zip,omitempty"`
}

type address struct {
	City  city      `json:"city"`
	Lines [2]string `json:"lines"`
}

type profile struct {
	Name     string            `json:"name"`
	Address  address           `json:"address"`
	Nick     string            `formkit:"name=nickname" json:"nick"`
	Tags     []string          `json:"tags"`
	Contacts []city            `json:"contacts"`
	Meta     map[string]string `json:"meta"`
	Born     time.Time         `json:"born"`
	Hidden   string            `json:"-"`
	OnSave   func()            `json:"onSave"`
	Parent   *profile          `json:"parent"`
	internal int
}

func TestOf(t *testing.T) {
	tests := []struct {
		got  fp.Path
		want string
	}{
		{fp.Of(func(p *profile) *string { return &p.Name }), "name"},
		{fp.Of(func(p *profile) *address { return &p.Address }), "address"},
		{fp.Of(func(p *profile) *city { return &p.Address.City }), "address.city"},
		{fp.Of(func(p *profile) *string { return &p.Address.City.Name }), "address.city.name"},
		{fp.Of(func(p *profile) *string { return &p.Address.Lines[1] }), "address.lines[1]"},
		{fp.Of(func(p *profile) *string { return &p.Nick }), "nickname"},
	}
	for _, tt := range tests {
		if got := tt.got.String(); got != tt.want {
			t.Fatalf("Of = %q, want %q", got, tt.want)
		}
	}
	if k := fp.KeyOf(func(p *profile) *[]string { return &p.Tags }); k != "tags" {
		t.Fatalf("KeyOf = %q", k)
	}
}

func TestOf_PanicsOutsideValue(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	other := ""
	fp.Of(func(p *profile) *string { return &other })
}

func TestBuilder(t *testing.T) {
	base := fp.Root().Field("items")
	a := base.Index(2).Field("price")
	b := base.Index(3)
	if a.String() != "items[2].price" || b.String() != "items[3]" {
		t.Fatalf("builder aliasing: %s %s", a, b)
	}
	if base.Field("").String() != "items" {
		t.Fatalf("empty field must be ignored")
	}
	if got := fp.From(fp.MustParse("x")).Index(0).Path(); got.String() != "x[0]" {
		t.Fatalf("From = %s", got)
	}
	if p := fp.Root().Path(); p == nil || len(p) != 0 {
		t.Fatalf("root builder path must be empty and non-nil")
	}
}

func TestEnumerate(t *testing.T) {
	var patterns []string
	for _, tpl := range fp.Enumerate[profile]() {
		patterns = append(patterns, tpl.Pattern())
	}
	want := []string{
		"name",
		"address", "address.city", "address.city.name", "address.city.zip",
		"address.lines", "address.lines[*]",
		"nickname",
		"tags", "tags[*]",
		"contacts", "contacts[*]", "contacts[*].name", "contacts[*].zip",
		"meta", "born", "parent",
	}
	if len(patterns) != len(want) {
		t.Fatalf("patterns = %v", patterns)
	}
	for i := range want {
		if patterns[i] != want[i] {
			t.Fatalf("pattern[%d] = %q, want %q (all: %v)", i, patterns[i], want[i], patterns)
		}
	}
}

func TestPaths_AllParse(t *testing.T) {
	for _, s := range fp.Paths[profile]() {
		p, err := fp.Parse(s)
		if err != nil {
			t.Fatalf("generated path %q does not parse: %v", s, err)
		}
		if _, ok := fp.MatchTemplate[profile](p); !ok {
			t.Fatalf("generated path %q matches no template", s)
		}
	}
}

func TestTemplate_Instantiate(t *testing.T) {
	tpl, ok := fp.MatchTemplate[profile](fp.MustParse("contacts[7].zip"))
	if !ok {
		t.Fatalf("expected a template")
	}
	if tpl.Wildcards() != 1 {
		t.Fatalf("wildcards = %d", tpl.Wildcards())
	}
	p, ok := tpl.Instantiate(4)
	if !ok || p.String() != "contacts[4].zip" {
		t.Fatalf("Instantiate = %v %v", p, ok)
	}
	if _, ok := tpl.Instantiate(); ok {
		t.Fatalf("wrong arity must fail")
	}
	if tpl.Representative().String() != "contacts[0].zip" {
		t.Fatalf("representative = %s", tpl.Representative())
	}
	if _, ok := fp.MatchTemplate[profile](fp.MustParse("onSave")); ok {
		t.Fatalf("func fields have no path")
	}
}

func TestStructKey(t *testing.T) {
	type tagged struct {
		Plain   string
		Named   string `json:"named"`
		Opts    string `json:",omitempty"`
		Dash    string `json:"-,"`
		Skip    string `json:"-"`
		Over    string `formkit:"name=other" json:"over"`
		Private string `formkit:"-" json:"private"`
	}
	want := map[string]struct {
		key string
		ok  bool
	}{
		"Plain":   {"Plain", true},
		"Named":   {"named", true},
		"Opts":    {"Opts", true},
		"Dash":    {"-", true},
		"Skip":    {"", false},
		"Over":    {"other", true},
		"Private": {"", false},
	}
	rt := reflect.TypeFor[tagged]()
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		key, ok := fp.StructKey(sf)
		if w := want[sf.Name]; key != w.key || ok != w.ok {
			t.Fatalf("StructKey(%s) = %q %v, want %q %v", sf.Name, key, ok, w.key, w.ok)
		}
	}
	got := fp.Of(func(v *tagged) *string { return &v.Dash })
	if !fp.Equal(got, fp.Path{fp.Key("-")}) {
		t.Fatalf("Of(Dash) = %v", got)
	}
}
