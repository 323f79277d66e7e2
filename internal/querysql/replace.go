package querysql

import (
	"strings"

	"github.com/roach88/sphinxql/internal/errs"
	"github.com/roach88/sphinxql/internal/queryir"
)

// mustReplace reports whether an update assigns a column the engine
// cannot update in place: indexed text or JSON.
func mustReplace(upd queryir.Update) bool {
	if upd.Schema == nil {
		return false
	}
	for _, a := range upd.Set {
		if col, ok := upd.Schema.Column(a.Column); ok && col.Type.RequiresReplace() {
			return true
		}
	}
	return false
}

// compileReplace rewrites an update into a full-row REPLACE:
//
//  1. The filter must be a single primary key equality
//  2. The primary key and the assignments must cover every column
//  3. The row is compiled as an INSERT and the verb rewritten
//
// Omitted columns would silently reset to their type default, so a
// partial column set is rejected.
func (c *Compiler) compileReplace(upd queryir.Update) (Statement, error) {
	const op = "querysql.compileReplace"

	pk := upd.Schema.PrimaryKey()
	id, ok := primaryKeyValue(upd.Filter, pk.Name)
	if !ok {
		return Statement{}, errs.Unsupported(op, "only primary key value updates of indexed or json fields are supported")
	}

	values := map[string]any{pk.Name: id}
	for _, a := range upd.Set {
		if a.Column == pk.Name {
			return Statement{}, errs.Unsupported(op, "primary key %q cannot be assigned by a replace", pk.Name)
		}
		values[a.Column] = a.Value
	}

	// Symmetric difference of the supplied and the declared columns.
	all := upd.Schema.AllColumns()
	declared := make(map[string]bool, len(all))
	var diff []string
	for _, col := range all {
		declared[col.Name] = true
		if _, ok := values[col.Name]; !ok {
			diff = append(diff, col.Name)
		}
	}
	for _, a := range upd.Set {
		if !declared[a.Column] {
			diff = append(diff, a.Column)
		}
	}
	if len(diff) > 0 {
		return Statement{}, errs.Unsupported(op, "REPLACE with partial column set not supported: %s", strings.Join(diff, ", "))
	}

	columns := make([]string, len(all))
	row := make([]any, len(all))
	for i, col := range all {
		columns[i] = col.Name
		row[i] = values[col.Name]
	}

	stmt, err := c.compileInsert(queryir.Insert{
		Table:   upd.Table,
		Columns: columns,
		Rows:    [][]any{row},
		Schema:  upd.Schema,
	})
	if err != nil {
		return Statement{}, err
	}
	stmt.SQL = "REPLACE" + strings.TrimPrefix(stmt.SQL, "INSERT")
	stmt.Kind = KindReplace
	return stmt, nil
}

// primaryKeyValue extracts v from a filter of the form pk = v, bare or as
// the only child of a non-negated Where.
func primaryKeyValue(p queryir.Predicate, pk string) (any, bool) {
	switch pred := p.(type) {
	case queryir.Compare:
		return pkCompare(pred, pk)
	case *queryir.Compare:
		return pkCompare(*pred, pk)
	case queryir.Where:
		return pkWhere(pred, pk)
	case *queryir.Where:
		return pkWhere(*pred, pk)
	default:
		return nil, false
	}
}

func pkCompare(cmp queryir.Compare, pk string) (any, bool) {
	if cmp.Column != pk || cmp.Op != queryir.Exact || cmp.Value == nil {
		return nil, false
	}
	return cmp.Value, true
}

func pkWhere(w queryir.Where, pk string) (any, bool) {
	if w.Negated || len(w.Children) != 1 {
		return nil, false
	}
	switch child := w.Children[0].(type) {
	case queryir.Compare:
		return pkCompare(child, pk)
	case *queryir.Compare:
		return pkCompare(*child, pk)
	default:
		return nil, false
	}
}
