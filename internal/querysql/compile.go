package querysql

import (
	"fmt"
	"strings"

	"github.com/roach88/sphinxql/internal/errs"
	"github.com/roach88/sphinxql/internal/queryir"
	"github.com/roach88/sphinxql/internal/schema"
	"github.com/roach88/sphinxql/internal/sphinxql"
)

// MaxLimit is the row limit emitted when a select sets none. The engine
// otherwise truncates results to its default page size.
const MaxLimit = 1<<31 - 1

// WhereAlias names the projected column carrying the compiled filter.
const WhereAlias = "__where__"

// Kind classifies a compiled statement.
type Kind string

const (
	KindSelect      Kind = "select"
	KindInsert      Kind = "insert"
	KindReplace     Kind = "replace"
	KindUpdate      Kind = "update"
	KindDelete      Kind = "delete"
	KindTruncate    Kind = "truncate"
	KindCreateTable Kind = "create_table"
	KindCluster     Kind = "cluster"
)

// Statement is a compiled statement with positional parameters.
//
// Empty reports a statement known to match nothing, such as a filter on an
// empty IN list. Empty statements carry no SQL and must not be sent.
type Statement struct {
	Kind   Kind
	SQL    string
	Params []any
	Empty  bool
}

// Compiler compiles QueryIR to engine SQL.
//
// CRITICAL: All values are parameterized (never interpolated). The match
// literal is escaped once and bound as a single parameter.
type Compiler struct {
	quoter Quoter
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithQuoter sets the identifier quoter (database and cluster prefixes).
func WithQuoter(q Quoter) Option {
	return func(c *Compiler) {
		c.quoter = q
	}
}

// NewCompiler creates a Compiler.
func NewCompiler(opts ...Option) *Compiler {
	c := &Compiler{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Quoter returns the compiler's identifier quoter.
func (c *Compiler) Quoter() Quoter {
	return c.quoter
}

// Compile validates and compiles a query.
func (c *Compiler) Compile(q queryir.Query) (Statement, error) {
	if err := queryir.Validate(q); err != nil {
		return Statement{}, err
	}

	switch query := q.(type) {
	case queryir.Select:
		return c.compileSelect(query)
	case *queryir.Select:
		return c.compileSelect(*query)
	case queryir.Insert:
		return c.compileInsert(query)
	case *queryir.Insert:
		return c.compileInsert(*query)
	case queryir.Update:
		return c.compileUpdate(query)
	case *queryir.Update:
		return c.compileUpdate(*query)
	case queryir.Delete:
		return c.compileDelete(query)
	case *queryir.Delete:
		return c.compileDelete(*query)
	case queryir.Truncate:
		return c.compileTruncate(query), nil
	case *queryir.Truncate:
		return c.compileTruncate(*query), nil
	case queryir.CreateTable:
		return c.compileCreateTable(query.Table), nil
	case *queryir.CreateTable:
		return c.compileCreateTable(query.Table), nil
	default:
		return Statement{}, errs.Unsupported("querysql.Compile", "unsupported query type: %T", q)
	}
}

// compileSelect compiles a search query:
//
//	SELECT <cols>, (<filter>) AS `__where__` FROM <table>
//	WHERE __where__ = ? AND MATCH(?) ORDER BY ... LIMIT ... OPTION ...
func (c *Compiler) compileSelect(sel queryir.Select) (Statement, error) {
	const op = "querysql.compileSelect"

	rest, embedded := splitMatch(sel.Filter)
	match := sel.Match.Merge(embedded)
	if err := checkMatchFields(sel.Schema, match); err != nil {
		return Statement{}, err
	}

	pc := predicateCompiler{quoter: c.quoter, table: sel.Schema}
	filter := fragment{state: always}
	if rest != nil {
		var err error
		filter, err = pc.compile(rest)
		if err != nil {
			return Statement{}, err
		}
	}
	if filter.state == never {
		return Statement{Kind: KindSelect, Empty: true}, nil
	}

	columns, err := c.selectList(sel)
	if err != nil {
		return Statement{}, err
	}

	var b strings.Builder
	var params []any

	b.WriteString("SELECT ")
	b.WriteString(columns)
	if filter.state == normal {
		fmt.Fprintf(&b, ", (%s) AS %s", filter.sql, c.quoter.Column(WhereAlias))
		params = append(params, filter.params...)
	}
	b.WriteString(" FROM ")
	b.WriteString(c.quoter.Table(sel.Table))

	var conds []string
	if filter.state == normal {
		conds = append(conds, WhereAlias+" = ?")
		params = append(params, true)
	}
	if !match.IsEmpty() {
		literal, err := match.Literal()
		if err != nil {
			return Statement{}, err
		}
		conds = append(conds, "MATCH(?)")
		params = append(params, literal)
	}
	if len(conds) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(conds, " AND "))
	}

	if len(sel.OrderBy) > 0 {
		keys := make([]string, 0, len(sel.OrderBy))
		for _, o := range sel.OrderBy {
			key, keyParams, err := c.orderKey(sel.Schema, o)
			if err != nil {
				return Statement{}, err
			}
			keys = append(keys, key)
			params = append(params, keyParams...)
		}
		b.WriteString(" ORDER BY ")
		b.WriteString(strings.Join(keys, ", "))
	}

	if !sel.Count {
		b.WriteString(" ")
		b.WriteString(limitClause(sel.Offset, sel.Limit))
	}

	if sel.Options.Len() > 0 {
		clause, optParams, err := optionClause(sel.Options)
		if err != nil {
			return Statement{}, fmt.Errorf("%s: %w", op, err)
		}
		b.WriteString(" ")
		b.WriteString(clause)
		params = append(params, optParams...)
	}

	return Statement{Kind: KindSelect, SQL: b.String(), Params: params}, nil
}

func (c *Compiler) selectList(sel queryir.Select) (string, error) {
	if sel.Count {
		return "COUNT(*)", nil
	}
	if len(sel.Columns) == 0 {
		return "*", nil
	}
	cols := make([]string, len(sel.Columns))
	for i, name := range sel.Columns {
		if err := checkColumn(sel.Schema, name); err != nil {
			return "", err
		}
		cols[i] = c.quoter.Column(name)
	}
	return strings.Join(cols, ", "), nil
}

func (c *Compiler) orderKey(table *schema.Table, o queryir.Order) (string, []any, error) {
	dir := " ASC"
	if o.Desc {
		dir = " DESC"
	}
	if o.Expr == nil {
		if err := checkColumn(table, o.Column); err != nil {
			return "", nil, err
		}
		return c.quoter.Column(o.Column) + dir, nil, nil
	}
	sql, params, err := compileExpression(o.Expr)
	if err != nil {
		return "", nil, err
	}
	return sql + dir, params, nil
}

// limitClause renders LIMIT [<offset>, ]<count>. A zero limit is unbounded.
func limitClause(offset, limit int) string {
	count := MaxLimit
	if limit > 0 {
		count = limit
	}
	if offset > 0 {
		return fmt.Sprintf("LIMIT %d, %d", offset, count)
	}
	return fmt.Sprintf("LIMIT %d", count)
}

// optionClause renders OPTION k1 = v1, k2 = v2. Literal values are bound;
// expression values splice their own text and parameters.
func optionClause(opts queryir.Options) (string, []any, error) {
	entries := opts.Entries()
	parts := make([]string, 0, len(entries))
	var params []any
	for _, opt := range entries {
		if expr, ok := opt.Value.(queryir.Expression); ok {
			sql, exprParams, err := compileExpression(expr)
			if err != nil {
				return "", nil, fmt.Errorf("option %s: %w", opt.Name, err)
			}
			parts = append(parts, opt.Name+" = "+sql)
			params = append(params, exprParams...)
			continue
		}
		parts = append(parts, opt.Name+" = ?")
		params = append(params, plainParam(opt.Value))
	}
	return "OPTION " + strings.Join(parts, ", "), params, nil
}

// compileExpression renders an option value or order expression.
func compileExpression(e queryir.Expression) (string, []any, error) {
	switch expr := e.(type) {
	case queryir.Func:
		return compileFunc(expr), append([]any(nil), expr.Args...), nil
	case *queryir.Func:
		return compileFunc(*expr), append([]any(nil), expr.Args...), nil
	case queryir.FieldWeights:
		parts := make([]string, len(expr))
		for i, w := range expr {
			parts[i] = fmt.Sprintf("%s = %d", w.Field, w.Weight)
		}
		return "(" + strings.Join(parts, ", ") + ")", nil, nil
	case queryir.Ident:
		return string(expr), nil, nil
	default:
		return "", nil, errs.Unsupported("querysql.compileExpression", "unsupported expression type: %T", e)
	}
}

func compileFunc(f queryir.Func) string {
	slots := make([]string, len(f.Args))
	for i := range slots {
		slots[i] = "?"
	}
	return f.Name + "(" + strings.Join(slots, ", ") + ")"
}

// splitMatch separates match predicates from the rest of a filter. Only a
// whole-filter match or the direct children of a non-negated AND are
// split; a match anywhere else stays in place and fails compilation.
func splitMatch(p queryir.Predicate) (queryir.Predicate, sphinxql.Match) {
	switch pred := p.(type) {
	case queryir.MatchPredicate:
		return nil, pred.Match
	case *queryir.MatchPredicate:
		return nil, pred.Match
	case queryir.Where:
		return splitWhere(pred)
	case *queryir.Where:
		return splitWhere(*pred)
	default:
		return p, sphinxql.Match{}
	}
}

func splitWhere(w queryir.Where) (queryir.Predicate, sphinxql.Match) {
	if w.Negated || w.Connector != queryir.AND {
		return w, sphinxql.Match{}
	}

	var match sphinxql.Match
	rest := make([]queryir.Predicate, 0, len(w.Children))
	for _, child := range w.Children {
		switch mp := child.(type) {
		case queryir.MatchPredicate:
			match = match.Merge(mp.Match)
		case *queryir.MatchPredicate:
			match = match.Merge(mp.Match)
		default:
			rest = append(rest, child)
		}
	}
	if len(rest) == 0 {
		return nil, match
	}
	return queryir.Where{Connector: queryir.AND, Children: rest}, match
}

// checkMatchFields requires every field named by a match to be an indexed
// text column of the table.
func checkMatchFields(table *schema.Table, m sphinxql.Match) error {
	if table == nil || m.IsEmpty() {
		return nil
	}
	for _, name := range sphinxql.FieldNames(m.Root()) {
		col, ok := table.Column(name)
		if !ok || !col.Indexed() {
			return errs.InvalidArgument("querysql.checkMatchFields",
				"field %q is not an indexed text column of %s", name, table.Name)
		}
	}
	return nil
}

func checkColumn(table *schema.Table, name string) error {
	if table == nil {
		return nil
	}
	if _, ok := table.Column(name); !ok {
		return errs.InvalidArgument("querysql.checkColumn", "unknown column %q in %s", name, table.Name)
	}
	return nil
}
