package queryir

import (
	"errors"

	"github.com/roach88/sphinxql/internal/errs"
	"github.com/roach88/sphinxql/internal/sphinxql"
)

// Validate checks the structural rules of a query:
//  1. Every statement names a table
//  2. Comparison operators and connectors are known
//  3. Insert rows match the column list
//  4. Updates assign at least one column
//  5. Paging bounds are non-negative
//  6. Option names, identifier values and function names are identifiers
//  7. Match expressions are well formed
//
// All problems are reported together as INVALID_ARGUMENT errors joined
// with errors.Join. Placement rules for match predicates are enforced by
// the compiler, not here.
//
// Validate is a pure function with no side effects.
func Validate(query Query) error {
	v := &validator{}
	v.validateQuery(query)
	return errors.Join(v.problems...)
}

// validator accumulates problems during traversal.
type validator struct {
	problems []error
}

func (v *validator) addProblem(format string, args ...any) {
	v.problems = append(v.problems, errs.InvalidArgument("queryir.Validate", format, args...))
}

func (v *validator) validateQuery(q Query) {
	if q == nil {
		v.addProblem("nil query")
		return
	}

	switch query := q.(type) {
	case Select:
		v.validateSelect(query)
	case *Select:
		v.validateSelect(*query)
	case Insert:
		v.validateInsert(query)
	case *Insert:
		v.validateInsert(*query)
	case Update:
		v.validateUpdate(query)
	case *Update:
		v.validateUpdate(*query)
	case Delete:
		v.requireTable("delete", query.Table)
		v.validatePredicate(query.Filter)
	case *Delete:
		v.requireTable("delete", query.Table)
		v.validatePredicate(query.Filter)
	case Truncate:
		v.requireTable("truncate", query.Table)
	case *Truncate:
		v.requireTable("truncate", query.Table)
	case CreateTable:
		if err := query.Table.Validate(); err != nil {
			v.addProblem("%v", err)
		}
	case *CreateTable:
		if err := query.Table.Validate(); err != nil {
			v.addProblem("%v", err)
		}
	default:
		v.addProblem("unknown query type: %T", q)
	}
}

func (v *validator) requireTable(kind, table string) {
	if table == "" {
		v.addProblem("%s without table", kind)
	}
}

func (v *validator) validateSelect(sel Select) {
	v.requireTable("select", sel.Table)
	if sel.Offset < 0 {
		v.addProblem("negative offset %d", sel.Offset)
	}
	if sel.Limit < 0 {
		v.addProblem("negative limit %d", sel.Limit)
	}
	for i, o := range sel.OrderBy {
		if (o.Column == "") == (o.Expr == nil) {
			v.addProblem("order key %d must set exactly one of column and expression", i)
		}
		if o.Expr != nil {
			v.validateExpression(o.Expr)
		}
	}
	for _, opt := range sel.Options.Entries() {
		if !isIdentifier(opt.Name) {
			v.addProblem("invalid option name %q", opt.Name)
		}
		if expr, ok := opt.Value.(Expression); ok {
			v.validateExpression(expr)
		}
	}
	v.validateMatch(sel.Match)
	v.validatePredicate(sel.Filter)
}

func (v *validator) validateInsert(ins Insert) {
	v.requireTable("insert", ins.Table)
	if len(ins.Columns) == 0 {
		v.addProblem("insert without columns")
	}
	if len(ins.Rows) == 0 {
		v.addProblem("insert without rows")
	}
	for i, row := range ins.Rows {
		if len(row) != len(ins.Columns) {
			v.addProblem("row %d has %d values for %d columns", i, len(row), len(ins.Columns))
		}
	}
}

func (v *validator) validateUpdate(upd Update) {
	v.requireTable("update", upd.Table)
	if len(upd.Set) == 0 {
		v.addProblem("update without assignments")
	}
	seen := make(map[string]bool, len(upd.Set))
	for _, a := range upd.Set {
		if seen[a.Column] {
			v.addProblem("column %q assigned twice", a.Column)
		}
		seen[a.Column] = true
	}
	v.validatePredicate(upd.Filter)
}

// validateExpression checks the names an expression splices into the
// statement text.
func (v *validator) validateExpression(e Expression) {
	switch expr := e.(type) {
	case Func:
		v.validateFunc(expr)
	case *Func:
		v.validateFunc(*expr)
	case FieldWeights:
		for _, w := range expr {
			if !isIdentifier(w.Field) {
				v.addProblem("invalid field weight name %q", w.Field)
			}
		}
	case Ident:
		if !isIdentifier(string(expr)) {
			v.addProblem("invalid identifier option value %q", expr)
		}
	}
}

func (v *validator) validateFunc(f Func) {
	if !isIdentifier(f.Name) {
		v.addProblem("invalid function name %q", f.Name)
	}
	for i, arg := range f.Args {
		if _, ok := arg.(Expression); ok {
			v.addProblem("function %s argument %d must be a plain value", f.Name, i)
		}
	}
}

func (v *validator) validateMatch(m sphinxql.Match) {
	if m.IsEmpty() {
		return
	}
	if err := sphinxql.Validate(m.Root()); err != nil {
		v.problems = append(v.problems, err)
	}
}

func (v *validator) validatePredicate(p Predicate) {
	if p == nil {
		return // nil predicates are valid (no filter)
	}

	switch pred := p.(type) {
	case Compare:
		v.validateCompare(pred)
	case *Compare:
		v.validateCompare(*pred)
	case In:
		if pred.Column == "" {
			v.addProblem("IN without column")
		}
	case *In:
		if pred.Column == "" {
			v.addProblem("IN without column")
		}
	case Where:
		v.validateWhere(pred)
	case *Where:
		v.validateWhere(*pred)
	case MatchPredicate:
		v.validateMatch(pred.Match)
	case *MatchPredicate:
		v.validateMatch(pred.Match)
	case Everything, *Everything:
	default:
		v.addProblem("unknown predicate type: %T", p)
	}
}

func (v *validator) validateCompare(c Compare) {
	if c.Column == "" {
		v.addProblem("comparison without column")
	}
	if !ValidOps[c.Op] {
		v.addProblem("column %q: unknown operator %q", c.Column, c.Op)
	}
}

func (v *validator) validateWhere(w Where) {
	if w.Connector != AND && w.Connector != OR {
		v.addProblem("unknown connector %q", w.Connector)
	}
	for _, child := range w.Children {
		if child == nil {
			v.addProblem("nil predicate in %s", w.Connector)
			continue
		}
		v.validatePredicate(child)
	}
}

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
