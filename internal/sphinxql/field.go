package sphinxql

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/sphinxql/internal/errs"
)

// Field limits a sub-expression to one or more indexed fields.
//
// Renders as (@field expr), (@(f1,f2) expr), or with @! when the fields are
// excluded from the search.
type Field struct {
	names   []string
	expr    Expr
	exclude bool
}

// Pair is the single-field shortcut form: field name -> search expression.
type Pair struct {
	Field string
	Expr  any
}

// NewField builds a field-scoped term.
//
// Exactly one form must be used:
//   - args: one or more field names followed by the search expression
//   - kwargs: a single Pair
//
// The search expression is a string (wrapped in T) or an Expr without
// nested field limits. Every misuse returns an INVALID_ARGUMENT error.
func NewField(args []any, kwargs []Pair, exclude bool) (Field, error) {
	const op = "sphinxql.NewField"

	var names []string
	var raw any

	switch {
	case len(args) > 0 && len(kwargs) > 0:
		return Field{}, errs.InvalidArgument(op, "don't pass field arguments and keyword pairs simultaneously")
	case len(args) > 0:
		if len(args) < 2 {
			return Field{}, errs.InvalidArgument(op, "pass at least one field name and a single search expression")
		}
		for i, a := range args[:len(args)-1] {
			name, ok := a.(string)
			if !ok {
				return Field{}, errs.InvalidArgument(op, "field name at position %d is %T, not string", i, a)
			}
			names = append(names, name)
		}
		raw = args[len(args)-1]
	case len(kwargs) > 0:
		if len(kwargs) > 1 {
			return Field{}, errs.InvalidArgument(op, "only a single keyword pair is supported, got %d", len(kwargs))
		}
		names = []string{kwargs[0].Field}
		raw = kwargs[0].Expr
	default:
		return Field{}, errs.InvalidArgument(op, "pass field arguments or a keyword pair")
	}

	for _, name := range names {
		if !isIdentifier(name) {
			return Field{}, errs.InvalidArgument(op, "invalid field name %q", name)
		}
	}

	expr, err := fieldExpr(raw)
	if err != nil {
		return Field{}, err
	}

	return Field{names: names, expr: expr, exclude: exclude}, nil
}

// F builds a field term from positional arguments:
//
//	F("title", "hello")
//	F("title", "body", And(T("text"), Not(T("other"))))
func F(args ...any) (Field, error) {
	return NewField(args, nil, false)
}

// Exclude builds a field term that searches everywhere except the named
// fields.
func Exclude(args ...any) (Field, error) {
	return NewField(args, nil, true)
}

// FieldOf builds a single-field term using the keyword shortcut.
func FieldOf(name string, expr any) (Field, error) {
	return NewField(nil, []Pair{{Field: name, Expr: expr}}, false)
}

// Names returns the field names in declaration order.
func (f Field) Names() []string {
	return slices.Clone(f.names)
}

// Expr returns the field sub-expression.
func (f Field) Expr() Expr {
	return f.expr
}

// Excluded reports whether the fields are excluded from the search.
func (f Field) Excluded() bool {
	return f.exclude
}

func (Field) matchExpr() {}

// Render implements Expr.
func (f Field) Render() (string, []string) {
	var fields string
	if len(f.names) == 1 {
		fields = f.names[0]
	} else {
		fields = "(" + strings.Join(f.names, ",") + ")"
	}
	prefix := "@"
	if f.exclude {
		prefix = "@!"
	}

	var expr string
	var params []string
	if f.expr != nil {
		expr, params = renderBare(f.expr)
	}
	return fmt.Sprintf("(%s%s %s)", prefix, fields, expr), params
}

// fieldExpr converts the raw search expression of a Field.
func fieldExpr(raw any) (Expr, error) {
	const op = "sphinxql.NewField"

	switch v := raw.(type) {
	case nil:
		return nil, errs.InvalidArgument(op, "missing search expression")
	case string:
		return T(v), nil
	case Field, *Field:
		return nil, errs.InvalidArgument(op, "field term cannot contain another field term")
	case Expr:
		if containsField(v) {
			return nil, errs.InvalidArgument(op, "field term cannot contain another field term")
		}
		return v, nil
	default:
		return nil, errs.InvalidArgument(op, "unsupported search expression type %T", raw)
	}
}

// containsField reports whether e has a Field anywhere in its tree.
func containsField(e Expr) bool {
	found := false
	Walk(e, func(x Expr) bool {
		switch x.(type) {
		case Field, *Field:
			found = true
		}
		return !found
	})
	return found
}

// isIdentifier reports whether s is a valid engine field identifier.
func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
