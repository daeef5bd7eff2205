package rules

import (
	"context"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/reoring/formkit"
	"github.com/reoring/formkit/fieldpath"
	"github.com/reoring/formkit/i18n"
)

// Rule inspects a data tree and reports issues. Rules only read data, so a
// Set may run them concurrently.
type Rule func(ctx context.Context, data any) formkit.Issues

func issue(p fieldpath.Path, code, rule string, params map[string]any) formkit.Issue {
	data := make(map[string]string, len(params))
	for k, v := range params {
		data[k] = fmt.Sprint(v)
	}
	it := formkit.IssueAt(p, code, i18n.T(code, data), params)
	it.Rule = rule
	return it
}

// isBlank treats nil, "" and empty collections as absent.
func isBlank(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	}
	return false
}

// Required reports a missing or blank value at path.
func Required(path string) Rule {
	p := fieldpath.MustParse(path)
	return func(_ context.Context, data any) formkit.Issues {
		if isBlank(fieldpath.Get(data, p)) {
			return formkit.Issues{issue(p, formkit.CodeRequired, "required", nil)}
		}
		return nil
	}
}

// length returns the rune count of a string or the length of a collection.
func length(v any) (int, bool) {
	switch t := v.(type) {
	case string:
		return utf8.RuneCountInString(t), true
	case []any:
		return len(t), true
	case map[string]any:
		return len(t), true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len(), true
	}
	return 0, false
}

// MinLength checks strings (in runes) and collections. Missing values are
// left to Required.
func MinLength(path string, n int) Rule {
	p := fieldpath.MustParse(path)
	return func(_ context.Context, data any) formkit.Issues {
		l, ok := length(fieldpath.Get(data, p))
		if !ok || l >= n {
			return nil
		}
		return formkit.Issues{issue(p, formkit.CodeTooShort, "minLength", map[string]any{"min": n, "got": l})}
	}
}

// MaxLength is the upper bound counterpart of MinLength.
func MaxLength(path string, n int) Rule {
	p := fieldpath.MustParse(path)
	return func(_ context.Context, data any) formkit.Issues {
		l, ok := length(fieldpath.Get(data, p))
		if !ok || l <= n {
			return nil
		}
		return formkit.Issues{issue(p, formkit.CodeTooLong, "maxLength", map[string]any{"max": n, "got": l})}
	}
}

// AtLeastOne ensures the collection at path has at least 1 element.
func AtLeastOne(path string) Rule {
	p := fieldpath.MustParse(path)
	return func(_ context.Context, data any) formkit.Issues {
		v, ok := fieldpath.Lookup(data, p)
		if !ok {
			return nil
		}
		if l, ok := length(v); ok && l == 0 {
			if _, isStr := v.(string); !isStr {
				return formkit.Issues{issue(p, formkit.CodeTooShort, "minItems", map[string]any{"min": 1, "got": 0})}
			}
		}
		// Not a collection; do not issue error here to avoid noise
		return nil
	}
}

// Pattern checks string values against a regular expression. It panics on
// an invalid expression, like regexp.MustCompile.
func Pattern(path, expr string) Rule {
	p := fieldpath.MustParse(path)
	re := regexp.MustCompile(expr)
	return func(_ context.Context, data any) formkit.Issues {
		s, ok := fieldpath.Get(data, p).(string)
		if !ok || s == "" || re.MatchString(s) {
			return nil
		}
		return formkit.Issues{issue(p, formkit.CodePattern, "pattern", map[string]any{"pattern": expr})}
	}
}

// Min checks numeric values.
func Min(path string, min float64) Rule {
	p := fieldpath.MustParse(path)
	return func(_ context.Context, data any) formkit.Issues {
		f, ok := toFloat64(fieldpath.Get(data, p))
		if !ok || f >= min {
			return nil
		}
		return formkit.Issues{issue(p, formkit.CodeTooSmall, "min", map[string]any{"min": min, "got": f})}
	}
}

// Max checks numeric values.
func Max(path string, max float64) Rule {
	p := fieldpath.MustParse(path)
	return func(_ context.Context, data any) formkit.Issues {
		f, ok := toFloat64(fieldpath.Get(data, p))
		if !ok || f <= max {
			return nil
		}
		return formkit.Issues{issue(p, formkit.CodeTooBig, "max", map[string]any{"max": max, "got": f})}
	}
}

// OneOf restricts a present value to the allowed set. Numbers compare by
// value regardless of their Go type.
func OneOf(path string, allowed ...any) Rule {
	p := fieldpath.MustParse(path)
	return func(_ context.Context, data any) formkit.Issues {
		v, ok := fieldpath.Lookup(data, p)
		if !ok || v == nil {
			return nil
		}
		for _, a := range allowed {
			if compare(v, Eq, a) {
				return nil
			}
		}
		names := make([]string, len(allowed))
		for i, a := range allowed {
			names[i] = fmt.Sprint(a)
		}
		return formkit.Issues{issue(p, formkit.CodeInvalidEnum, "oneOf", map[string]any{"allowed": strings.Join(names, ", ")})}
	}
}

// UniqueBy ensures elements in a collection have unique key values.
// keyPath is relative to each element; an empty keyPath compares the
// elements themselves. Issues point at the duplicate's key.
// Note: keys are compared by their fmt.Sprint form, so prefer a single key
// type per collection.
func UniqueBy(collectionPath, keyPath string) Rule {
	cp := fieldpath.MustParse(collectionPath)
	kp := fieldpath.MustParse(keyPath)
	return func(_ context.Context, data any) formkit.Issues {
		items, ok := fieldpath.Get(data, cp).([]any)
		if !ok {
			return nil
		}
		seen := map[string]int{}
		var out formkit.Issues
		for i, elem := range items {
			kv, ok := fieldpath.Lookup(elem, kp)
			if !ok || kv == nil {
				continue
			}
			key := fmt.Sprint(kv)
			if j, dup := seen[key]; dup {
				at := cp.At(i).Append(kp...)
				out = append(out, issue(at, formkit.CodeUniqueness, "uniqueBy", map[string]any{"first": j, "dup": i, "key": key}))
			} else {
				seen[key] = i
			}
		}
		return out
	}
}

// Check reports code at path when pred rejects the value there. Missing
// values are passed to pred as nil.
func Check(path, code string, pred func(v any) bool) Rule {
	p := fieldpath.MustParse(path)
	return func(_ context.Context, data any) formkit.Issues {
		if pred(fieldpath.Get(data, p)) {
			return nil
		}
		return formkit.Issues{issue(p, code, "check", nil)}
	}
}

// FormCheck reports a form-level issue when pred rejects the whole tree.
func FormCheck(code string, pred func(data any) bool) Rule {
	return func(_ context.Context, data any) formkit.Issues {
		if pred(data) {
			return nil
		}
		it := formkit.FormIssue(code, i18n.T(code, nil))
		it.Rule = "formCheck"
		return formkit.Issues{it}
	}
}

// Each applies rules to every element of the collection at path. Inner
// rules see the element as their data; their issue paths are prefixed with
// the element's path.
func Each(path string, rules ...Rule) Rule {
	p := fieldpath.MustParse(path)
	inner := And(rules...)
	return func(ctx context.Context, data any) formkit.Issues {
		items, ok := fieldpath.Get(data, p).([]any)
		if !ok {
			return nil
		}
		var out formkit.Issues
		for i, elem := range items {
			base := p.At(i)
			for _, it := range inner(ctx, elem) {
				it.Path = base.Append(it.Path...)
				out = append(out, it)
			}
		}
		return out
	}
}

// ---------- Rule combinators ----------

// And executes all rules and concatenates Issues.
func And(rules ...Rule) Rule {
	return func(ctx context.Context, data any) formkit.Issues {
		var out formkit.Issues
		for _, r := range rules {
			if r == nil {
				continue
			}
			out = append(out, r(ctx, data)...)
		}
		return out
	}
}

// Or succeeds if any rule returns no Issues. When every branch fails the one
// with the fewest Issues is reported.
func Or(rules ...Rule) Rule {
	return func(ctx context.Context, data any) formkit.Issues {
		var best formkit.Issues
		bestSet := false
		for _, r := range rules {
			if r == nil {
				continue
			}
			iss := r(ctx, data)
			if len(iss) == 0 {
				return nil
			}
			if !bestSet || len(iss) < len(best) {
				best = iss
				bestSet = true
			}
		}
		return best
	}
}
