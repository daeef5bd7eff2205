package rules

import (
	"errors"
	"fmt"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/reoring/formkit"
	"github.com/reoring/formkit/fieldpath"
)

// File is the on-disk form of a rule set:
//
//	rules:
//	  - path: name
//	    required: true
//	    maxLength: 40
//	  - path: friends
//	    atLeastOne: true
//	    uniqueBy: name
//	  - when: {path: kind, op: eq, value: company}
//	    rules:
//	      - path: vat
//	        required: true
type File struct {
	Rules []Spec `yaml:"rules" json:"rules"`
}

// Spec declares the checks for one path, or a nested group under When.
type Spec struct {
	Path       string   `yaml:"path,omitempty" json:"path,omitempty"`
	Required   bool     `yaml:"required,omitempty" json:"required,omitempty"`
	MinLength  *int     `yaml:"minLength,omitempty" json:"minLength,omitempty"`
	MaxLength  *int     `yaml:"maxLength,omitempty" json:"maxLength,omitempty"`
	Min        *float64 `yaml:"min,omitempty" json:"min,omitempty"`
	Max        *float64 `yaml:"max,omitempty" json:"max,omitempty"`
	Pattern    string   `yaml:"pattern,omitempty" json:"pattern,omitempty"`
	OneOf      []any    `yaml:"oneOf,omitempty" json:"oneOf,omitempty"`
	AtLeastOne bool     `yaml:"atLeastOne,omitempty" json:"atLeastOne,omitempty"`
	UniqueBy   *string  `yaml:"uniqueBy,omitempty" json:"uniqueBy,omitempty"`
	Each       []Spec   `yaml:"each,omitempty" json:"each,omitempty"`
	When       *When    `yaml:"when,omitempty" json:"when,omitempty"`
	Rules      []Spec   `yaml:"rules,omitempty" json:"rules,omitempty"`
}

// When is the condition of a nested group.
type When struct {
	Path  string `yaml:"path" json:"path"`
	Op    string `yaml:"op,omitempty" json:"op,omitempty"`
	Value any    `yaml:"value" json:"value"`
}

// Load decodes a rule file and builds its Set.
func Load(b []byte, f formkit.Format, opts ...Option) (*Set, error) {
	var file File
	switch f {
	case formkit.FormatYAML:
		if err := yaml.Unmarshal(b, &file); err != nil {
			return nil, fmt.Errorf("rules: yaml: %w", err)
		}
	default:
		if err := json.Unmarshal(b, &file); err != nil {
			return nil, fmt.Errorf("rules: json: %w", err)
		}
	}
	rules, err := Build(file.Rules)
	if err != nil {
		return nil, err
	}
	return New(rules, opts...), nil
}

// Build turns specs into rules, one per spec. Path and pattern errors are
// reported instead of panicking.
func Build(specs []Spec) ([]Rule, error) {
	out := make([]Rule, 0, len(specs))
	var errs []error
	for i, sp := range specs {
		r, err := build(sp)
		if err != nil {
			errs = append(errs, fmt.Errorf("rules[%d]: %w", i, err))
			continue
		}
		out = append(out, r)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

func build(sp Spec) (r Rule, err error) {
	// the builders panic on malformed input; surface that as an error
	defer func() {
		if rec := recover(); rec != nil {
			r, err = nil, fmt.Errorf("%v", rec)
		}
	}()
	if sp.When != nil {
		if _, err := fieldpath.Parse(sp.When.Path); err != nil {
			return nil, err
		}
		op := Eq
		if sp.When.Op != "" {
			var ok bool
			if op, ok = ParseOp(sp.When.Op); !ok {
				return nil, fmt.Errorf("unknown op %q", sp.When.Op)
			}
		}
		inner, err := Build(sp.Rules)
		if err != nil {
			return nil, err
		}
		return If(sp.When.Path, op, sp.When.Value).Then(inner...), nil
	}
	if _, err := fieldpath.Parse(sp.Path); err != nil {
		return nil, err
	}

	var rs []Rule
	if sp.Required {
		rs = append(rs, Required(sp.Path))
	}
	if sp.MinLength != nil {
		rs = append(rs, MinLength(sp.Path, *sp.MinLength))
	}
	if sp.MaxLength != nil {
		rs = append(rs, MaxLength(sp.Path, *sp.MaxLength))
	}
	if sp.Min != nil {
		rs = append(rs, Min(sp.Path, *sp.Min))
	}
	if sp.Max != nil {
		rs = append(rs, Max(sp.Path, *sp.Max))
	}
	if sp.Pattern != "" {
		rs = append(rs, Pattern(sp.Path, sp.Pattern))
	}
	if len(sp.OneOf) > 0 {
		rs = append(rs, OneOf(sp.Path, sp.OneOf...))
	}
	if sp.AtLeastOne {
		rs = append(rs, AtLeastOne(sp.Path))
	}
	if sp.UniqueBy != nil {
		if _, err := fieldpath.Parse(*sp.UniqueBy); err != nil {
			return nil, err
		}
		rs = append(rs, UniqueBy(sp.Path, *sp.UniqueBy))
	}
	if len(sp.Each) > 0 {
		inner, err := Build(sp.Each)
		if err != nil {
			return nil, err
		}
		rs = append(rs, Each(sp.Path, inner...))
	}
	if len(sp.Rules) > 0 {
		return nil, fmt.Errorf("%s: nested rules need a when condition", sp.Path)
	}
	if len(rs) == 0 {
		return nil, fmt.Errorf("%s: no checks declared", sp.Path)
	}
	return And(rs...), nil
}
