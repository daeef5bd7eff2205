package rules

import (
	"context"
	"reflect"

	"github.com/reoring/formkit"
	"github.com/reoring/formkit/fieldpath"
	"github.com/reoring/formkit/reconcile"
)

// Op defines simple comparison operators for If(...).Then(...)
type Op int

const (
	Eq Op = iota
	Ne
	Lt
	Le
	Gt
	Ge
)

// ParseOp maps "eq", "ne", "lt", "le", "gt" and "ge" to an Op.
func ParseOp(s string) (Op, bool) {
	switch s {
	case "eq", "==":
		return Eq, true
	case "ne", "!=":
		return Ne, true
	case "lt", "<":
		return Lt, true
	case "le", "<=":
		return Le, true
	case "gt", ">":
		return Gt, true
	case "ge", ">=":
		return Ge, true
	}
	return 0, false
}

// Conditional composes conditional execution of rules.
type Conditional struct {
	path fieldpath.Path
	op   Op
	want any
	all  []Conditional // composite AND
	any  []Conditional // composite OR
}

// If builds a conditional that evaluates the value at path against want.
func If(path string, op Op, want any) Conditional {
	return Conditional{path: fieldpath.MustParse(path), op: op, want: want}
}

// IfAll builds a conditional that requires all conditions to hold.
func IfAll(conds ...Conditional) Conditional { return Conditional{all: conds} }

// IfAny builds a conditional that requires any condition to hold.
func IfAny(conds ...Conditional) Conditional { return Conditional{any: conds} }

// And combines the receiver with additional conditions using logical AND.
func (c Conditional) And(others ...Conditional) Conditional {
	conds := append([]Conditional{c}, others...)
	return IfAll(conds...)
}

// Or combines the receiver with additional conditions using logical OR.
func (c Conditional) Or(others ...Conditional) Conditional {
	conds := append([]Conditional{c}, others...)
	return IfAny(conds...)
}

// Holds evaluates the condition against data.
func (c Conditional) Holds(data any) bool {
	// composite AND
	if len(c.all) > 0 {
		for _, it := range c.all {
			if !it.Holds(data) {
				return false
			}
		}
		return true
	}
	// composite OR
	if len(c.any) > 0 {
		for _, it := range c.any {
			if it.Holds(data) {
				return true
			}
		}
		return false
	}
	// simple predicate; a missing value compares as nil
	return compare(fieldpath.Get(data, c.path), c.op, c.want)
}

// Then attaches rules to run when the condition is satisfied.
func (c Conditional) Then(rules ...Rule) Rule {
	inner := And(rules...)
	return func(ctx context.Context, data any) formkit.Issues {
		if !c.Holds(data) {
			return nil
		}
		return inner(ctx, data)
	}
}

func compare(cur any, op Op, want any) bool {
	switch op {
	case Eq, Ne:
		eq := reconcile.DeepEqual(cur, want)
		if a, okA := toFloat64(cur); okA {
			if b, okB := toFloat64(want); okB {
				eq = a == b
			}
		}
		return eq == (op == Eq)
	case Lt, Le, Gt, Ge:
		return compareOrdered(cur, op, want)
	default:
		return false
	}
}

func compareOrdered(cur any, op Op, want any) bool {
	if a, ok := cur.(string); ok {
		if b, ok := want.(string); ok {
			return ordered(a, b, op)
		}
		return false
	}
	a, okA := toFloat64(cur)
	b, okB := toFloat64(want)
	if !okA || !okB {
		return false
	}
	return ordered(a, b, op)
}

func ordered[T ~string | ~float64](a, b T, op Op) bool {
	switch op {
	case Lt:
		return a < b
	case Le:
		return a <= b
	case Gt:
		return a > b
	case Ge:
		return a >= b
	}
	return false
}

func toFloat64(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	default:
		return 0, false
	}
}
