package fieldpath

import (
	"reflect"
	"strings"
)

// StructKey resolves the data key a struct field is stored under and reports
// whether the field is addressable at all.
//
// Keys follow the JSON encoder, so typed paths line up with trees built by
// formkit.ToTree: the json tag name wins over the Go field name, json:"-"
// hides the field and json:"-," names it "-". A formkit:"name=..." tag
// overrides both, for data whose keys come from elsewhere (hand-built maps,
// YAML files); formkit:"-" hides a field from paths only.
func StructKey(sf reflect.StructField) (string, bool) {
	if ft := sf.Tag.Get("formkit"); ft != "" {
		if ft == "-" {
			return "", false
		}
		for _, p := range strings.Split(ft, ",") {
			p = strings.TrimSpace(p)
			if name, ok := strings.CutPrefix(p, "name="); ok && name != "" {
				return name, true
			}
		}
	}
	jt, ok := sf.Tag.Lookup("json")
	if !ok {
		return sf.Name, true
	}
	if jt == "-" {
		return "", false
	}
	name, _, _ := strings.Cut(jt, ",")
	if name == "" {
		return sf.Name, true
	}
	return name, true
}
