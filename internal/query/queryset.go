package query

import (
	"slices"
	"strings"

	"github.com/roach88/sphinxql/internal/errs"
	"github.com/roach88/sphinxql/internal/queryir"
	"github.com/roach88/sphinxql/internal/schema"
	"github.com/roach88/sphinxql/internal/sphinxql"
)

// QuerySet builds search queries for one table.
//
// QuerySets are immutable values: every method returns a new QuerySet and
// never changes the receiver, so a base QuerySet can be shared and refined
// concurrently. The first construction error is kept and returned by the
// terminal methods (Query, Count, Update, Delete).
type QuerySet struct {
	table   string
	schema  *schema.Table
	filters []queryir.Predicate
	match   sphinxql.Match
	order   []queryir.Order
	columns []string
	offset  int
	limit   int
	options queryir.Options
	err     error
}

// New creates a QuerySet over table without a schema.
func New(table string) QuerySet {
	return QuerySet{table: table}
}

// For creates a QuerySet over t. The schema enables value encoding,
// column checks and the replace rewrite of updates.
func For(t schema.Table) QuerySet {
	return QuerySet{table: t.Name, schema: &t}
}

// Err returns the first construction error.
func (qs QuerySet) Err() error {
	return qs.err
}

// Filter ANDs a lookup such as Filter("attr_uint__gte", 5).
func (qs QuerySet) Filter(key string, value any) QuerySet {
	p, err := Lookup(qs.resolve(key), value)
	if err != nil {
		return qs.fail(err)
	}
	return qs.Where(p)
}

// Exclude ANDs the negation of a lookup.
func (qs QuerySet) Exclude(key string, value any) QuerySet {
	p, err := Lookup(qs.resolve(key), value)
	if err != nil {
		return qs.fail(err)
	}
	return qs.Where(queryir.Not(p))
}

// Where ANDs arbitrary predicates.
func (qs QuerySet) Where(preds ...queryir.Predicate) QuerySet {
	out := qs.clone()
	out.filters = append(out.filters, preds...)
	return out
}

// Match ANDs full-text expressions. Strings become plain terms.
func (qs QuerySet) Match(exprs ...any) QuerySet {
	const op = "query.Match"

	terms := make([]sphinxql.Expr, 0, len(exprs))
	for _, e := range exprs {
		switch v := e.(type) {
		case string:
			terms = append(terms, sphinxql.T(v))
		case sphinxql.Expr:
			terms = append(terms, v)
		case sphinxql.Match:
			terms = append(terms, v.Root().Children()...)
		default:
			return qs.fail(errs.InvalidArgument(op, "unsupported match expression type %T", e))
		}
	}
	out := qs.clone()
	out.match = out.match.And(terms...)
	return out
}

// MatchFields ANDs one field term per pair, in call order:
//
//	qs.MatchFields(sphinxql.Pair{Field: "title", Expr: "hello"})
func (qs QuerySet) MatchFields(pairs ...sphinxql.Pair) QuerySet {
	terms := make([]any, 0, len(pairs))
	for _, p := range pairs {
		f, err := sphinxql.FieldOf(p.Field, p.Expr)
		if err != nil {
			return qs.fail(err)
		}
		terms = append(terms, f)
	}
	return qs.Match(terms...)
}

// Options sets engine options. A later value for the same name wins.
func (qs QuerySet) Options(opts ...queryir.Option) QuerySet {
	out := qs.clone()
	for _, o := range opts {
		out.options = out.options.With(o.Name, o.Value)
	}
	return out
}

// OrderBy replaces the ordering. A leading "-" sorts descending; "weight"
// orders by relevance.
func (qs QuerySet) OrderBy(keys ...string) QuerySet {
	order := make([]queryir.Order, 0, len(keys))
	for _, key := range keys {
		desc := strings.HasPrefix(key, "-")
		name := qs.resolve(strings.TrimPrefix(key, "-"))
		if name == "weight" {
			order = append(order, queryir.Order{Expr: queryir.Weight(), Desc: desc})
			continue
		}
		order = append(order, queryir.Order{Column: name, Desc: desc})
	}
	out := qs.clone()
	out.order = order
	return out
}

// Slice limits the result window to rows [start, stop). A stop of 0
// leaves the window open.
func (qs QuerySet) Slice(start, stop int) QuerySet {
	const op = "query.Slice"

	if start < 0 || stop < 0 || (stop > 0 && stop < start) {
		return qs.fail(errs.InvalidArgument(op, "invalid slice [%d:%d]", start, stop))
	}
	out := qs.clone()
	out.offset = qs.offset + start
	out.limit = 0
	if stop > 0 {
		out.limit = stop - start
	}
	if qs.limit > 0 {
		remaining := qs.limit - start
		if remaining <= 0 {
			// Past the end of the window: an empty OR matches nothing.
			out.filters = append(out.filters, queryir.Or())
			out.limit = qs.limit
			return out
		}
		if out.limit == 0 || out.limit > remaining {
			out.limit = remaining
		}
	}
	return out
}

// Values restricts the selected columns.
func (qs QuerySet) Values(columns ...string) QuerySet {
	out := qs.clone()
	out.columns = make([]string, len(columns))
	for i, c := range columns {
		out.columns[i] = qs.resolve(c)
	}
	return out
}

// Query returns the select statement.
func (qs QuerySet) Query() (queryir.Select, error) {
	if qs.err != nil {
		return queryir.Select{}, qs.err
	}
	return queryir.Select{
		Table:   qs.table,
		Columns: slices.Clone(qs.columns),
		Filter:  qs.filter(),
		Match:   qs.match,
		OrderBy: slices.Clone(qs.order),
		Offset:  qs.offset,
		Limit:   qs.limit,
		Options: qs.options,
		Schema:  qs.schema,
	}, nil
}

// Count returns the COUNT(*) statement for the filter and match.
func (qs QuerySet) Count() (queryir.Select, error) {
	sel, err := qs.Query()
	if err != nil {
		return queryir.Select{}, err
	}
	sel.Count = true
	sel.Columns = nil
	sel.OrderBy = nil
	sel.Offset, sel.Limit = 0, 0
	return sel, nil
}

// Update returns the update statement assigning set to the filtered rows.
func (qs QuerySet) Update(set ...queryir.Assignment) (queryir.Update, error) {
	const op = "query.Update"

	if qs.err != nil {
		return queryir.Update{}, qs.err
	}
	if !qs.match.IsEmpty() {
		return queryir.Update{}, errs.InvalidOperation(op, "updates cannot filter by full-text match")
	}
	assignments := make([]queryir.Assignment, len(set))
	for i, a := range set {
		assignments[i] = queryir.Assignment{Column: qs.resolve(a.Column), Value: a.Value}
	}
	return queryir.Update{
		Table:  qs.table,
		Set:    assignments,
		Filter: qs.filter(),
		Schema: qs.schema,
	}, nil
}

// Delete returns the delete statement for the filtered rows.
func (qs QuerySet) Delete() (queryir.Delete, error) {
	const op = "query.Delete"

	if qs.err != nil {
		return queryir.Delete{}, qs.err
	}
	if !qs.match.IsEmpty() {
		return queryir.Delete{}, errs.InvalidOperation(op, "deletes cannot filter by full-text match")
	}
	return queryir.Delete{Table: qs.table, Filter: qs.filter(), Schema: qs.schema}, nil
}

// filter returns the ANDed filters, or nil when there are none.
func (qs QuerySet) filter() queryir.Predicate {
	switch len(qs.filters) {
	case 0:
		return nil
	case 1:
		return qs.filters[0]
	default:
		return queryir.And(slices.Clone(qs.filters)...)
	}
}

// resolve replaces the pk alias in a lookup key.
func (qs QuerySet) resolve(key string) string {
	pk := schema.DefaultPrimaryKey
	if qs.schema != nil {
		pk = qs.schema.PrimaryKey().Name
	}
	switch {
	case key == PK:
		return pk
	case strings.HasPrefix(key, PK+"__"):
		return pk + strings.TrimPrefix(key, PK)
	default:
		return key
	}
}

func (qs QuerySet) clone() QuerySet {
	out := qs
	out.filters = slices.Clone(qs.filters)
	out.order = slices.Clone(qs.order)
	out.columns = slices.Clone(qs.columns)
	return out
}

func (qs QuerySet) fail(err error) QuerySet {
	if qs.err != nil {
		return qs
	}
	out := qs.clone()
	out.err = err
	return out
}
