package querysql

import (
	"reflect"
	"strings"
	"time"

	"github.com/roach88/sphinxql/internal/codec"
	"github.com/roach88/sphinxql/internal/errs"
	"github.com/roach88/sphinxql/internal/queryir"
	"github.com/roach88/sphinxql/internal/schema"
)

// state is the statically known truth of a predicate fragment.
type state int

const (
	normal state = iota // depends on the row
	always              // matches every row
	never               // matches no row
)

// fragment is a compiled predicate.
type fragment struct {
	sql      string
	params   []any
	state    state
	compound bool // top-level connector, needs parentheses when nested
}

// predicateCompiler compiles filter trees. Columns render bare, never
// table-qualified.
type predicateCompiler struct {
	quoter Quoter
	table  *schema.Table
}

func (pc predicateCompiler) compile(p queryir.Predicate) (fragment, error) {
	switch pred := p.(type) {
	case queryir.Compare:
		return pc.compileCompare(pred)
	case *queryir.Compare:
		return pc.compileCompare(*pred)
	case queryir.In:
		return pc.compileIn(pred)
	case *queryir.In:
		return pc.compileIn(*pred)
	case queryir.Where:
		return pc.compileWhere(pred)
	case *queryir.Where:
		return pc.compileWhere(*pred)
	case queryir.Everything, *queryir.Everything:
		return fragment{state: always}, nil
	case queryir.MatchPredicate, *queryir.MatchPredicate:
		return fragment{}, errs.InvalidOperation("querysql.compilePredicate",
			"full-text match can only be combined with other predicates by a top-level AND")
	default:
		return fragment{}, errs.Unsupported("querysql.compilePredicate", "unsupported predicate type: %T", p)
	}
}

// compileCompare compiles "<col> <op> ?". Exact comparisons on multi-value
// columns compile to IN(<col>, ?) and exact nil to IS NULL.
func (pc predicateCompiler) compileCompare(cmp queryir.Compare) (fragment, error) {
	if err := checkColumn(pc.table, cmp.Column); err != nil {
		return fragment{}, err
	}
	col := pc.quoter.Column(cmp.Column)

	if cmp.Op == queryir.Exact && cmp.Value == nil {
		return fragment{sql: col + " IS NULL"}, nil
	}

	v, err := pc.encode(cmp.Column, cmp.Value)
	if err != nil {
		return fragment{}, err
	}
	if cmp.Op == queryir.Exact && pc.multiValued(cmp.Column) {
		return fragment{sql: "IN(" + col + ", ?)", params: []any{v}}, nil
	}
	return fragment{sql: col + " " + string(cmp.Op) + " ?", params: []any{v}}, nil
}

// compileIn compiles IN(<col>, ?, ...) over the distinct values in
// first-seen order. An empty list matches nothing.
func (pc predicateCompiler) compileIn(in queryir.In) (fragment, error) {
	const op = "querysql.compileIn"

	if in.Query != nil {
		return fragment{}, errs.Unsupported(op, "IN with a subquery on %q is not supported", in.Column)
	}
	if err := checkColumn(pc.table, in.Column); err != nil {
		return fragment{}, err
	}

	values := dedupe(in.Values)
	if len(values) == 0 {
		return fragment{state: never}, nil
	}

	slots := make([]string, len(values))
	params := make([]any, len(values))
	for i, v := range values {
		enc, err := pc.encode(in.Column, v)
		if err != nil {
			return fragment{}, err
		}
		slots[i] = "?"
		params[i] = enc
	}
	sql := "IN(" + pc.quoter.Column(in.Column) + ", " + strings.Join(slots, ", ") + ")"
	return fragment{sql: sql, params: params}, nil
}

// compileWhere joins the children with the connector. Statically known
// children fold away: an AND with a never child is never, an OR drops
// never children and is always with an always child. Every child is
// compiled, so errors after a folding child still surface.
func (pc predicateCompiler) compileWhere(w queryir.Where) (fragment, error) {
	var parts []string
	var params []any

	result := fragment{}
	folded := false
	for _, child := range w.Children {
		f, err := pc.compile(child)
		if err != nil {
			return fragment{}, err
		}
		if folded {
			continue
		}
		switch {
		case f.state == never && w.Connector == queryir.AND:
			result, folded = fragment{state: never}, true
			continue
		case f.state == always && w.Connector == queryir.OR:
			result, folded = fragment{state: always}, true
			continue
		case f.state != normal:
			continue
		}
		sql := f.sql
		if f.compound {
			sql = "(" + sql + ")"
		}
		parts = append(parts, sql)
		params = append(params, f.params...)
	}

	if !folded {
		switch {
		case len(parts) > 0:
			result = fragment{
				sql:      strings.Join(parts, " "+string(w.Connector)+" "),
				params:   params,
				compound: len(parts) > 1,
			}
		case w.Connector == queryir.OR:
			result = fragment{state: never}
		default:
			result = fragment{state: always}
		}
	}

	if !w.Negated {
		return result, nil
	}
	switch result.state {
	case always:
		return fragment{state: never}, nil
	case never:
		return fragment{state: always}, nil
	default:
		return fragment{sql: "NOT (" + result.sql + ")", params: result.params}, nil
	}
}

// encode converts a comparison value for the wire. Scalars compared with a
// multi-value column pass through unchanged.
func (pc predicateCompiler) encode(column string, v any) (any, error) {
	if pc.table != nil {
		if col, ok := pc.table.Column(column); ok && !col.Type.MultiValued() {
			return codec.Encode(col, v)
		}
	}
	return plainParam(v), nil
}

func (pc predicateCompiler) multiValued(column string) bool {
	if pc.table == nil {
		return false
	}
	col, ok := pc.table.Column(column)
	return ok && col.Type.MultiValued()
}

// plainParam converts values without a column type.
func plainParam(v any) any {
	switch t := v.(type) {
	case time.Time:
		return t.UTC().Unix()
	case *time.Time:
		if t == nil {
			return nil
		}
		return t.UTC().Unix()
	default:
		return v
	}
}

// dedupe drops repeated values keeping first-seen order. Values that
// cannot be map keys, such as arrays holding slices, are kept as they are.
func dedupe(values []any) []any {
	seen := make(map[any]struct{}, len(values))
	out := make([]any, 0, len(values))
	for _, v := range values {
		if v == nil || reflect.ValueOf(v).Comparable() {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
		}
		out = append(out, v)
	}
	return out
}
