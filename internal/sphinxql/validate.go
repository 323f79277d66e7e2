package sphinxql

import (
	"github.com/roach88/sphinxql/internal/errs"
)

// Validate checks the construction invariants of an expression tree:
//   - quorum counts are non-negative and fractions lie in (0, 1]
//   - an exact phrase carries no quorum
//   - field terms name at least one valid field and have an expression
//   - nodes have no nil children
//
// Violations are INVALID_ARGUMENT errors.
func Validate(e Expr) error {
	const op = "sphinxql.Validate"

	var err error
	Walk(e, func(x Expr) bool {
		if err != nil {
			return false
		}
		switch v := x.(type) {
		case Phrase:
			err = validatePhrase(op, v)
		case *Phrase:
			err = validatePhrase(op, *v)
		case Field:
			err = validateField(op, v)
		case *Field:
			err = validateField(op, *v)
		case Node:
			err = validateChildren(op, v.children)
		case *Node:
			err = validateChildren(op, v.children)
		}
		return err == nil
	})
	return err
}

func validatePhrase(op string, p Phrase) error {
	q := p.Quorum
	if !q.IsSet() {
		return nil
	}
	if p.Exact {
		return errs.InvalidArgument(op, "exact phrase %q cannot have a quorum", p.Text)
	}
	if q.IsFraction() {
		if q.ratio <= 0 || q.ratio > 1 {
			return errs.InvalidArgument(op, "quorum fraction %v is not in (0, 1]", q.ratio)
		}
		return nil
	}
	if q.count < 0 {
		return errs.InvalidArgument(op, "quorum count %d is negative", q.count)
	}
	return nil
}

func validateField(op string, f Field) error {
	if len(f.names) == 0 {
		return errs.InvalidArgument(op, "field term without field names")
	}
	for _, name := range f.names {
		if !isIdentifier(name) {
			return errs.InvalidArgument(op, "invalid field name %q", name)
		}
	}
	if f.expr == nil {
		return errs.InvalidArgument(op, "field term without search expression")
	}
	return nil
}

func validateChildren(op string, children []Expr) error {
	for i, child := range children {
		if child == nil {
			return errs.InvalidArgument(op, "nil child at position %d", i)
		}
	}
	return nil
}

// FieldNames returns the distinct field names referenced by e in order of
// first appearance.
func FieldNames(e Expr) []string {
	var names []string
	seen := make(map[string]struct{})
	Walk(e, func(x Expr) bool {
		var f Field
		switch v := x.(type) {
		case Field:
			f = v
		case *Field:
			f = *v
		default:
			return true
		}
		for _, name := range f.names {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			names = append(names, name)
		}
		return true
	})
	return names
}
