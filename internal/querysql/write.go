package querysql

import (
	"fmt"
	"strings"

	"github.com/roach88/sphinxql/internal/codec"
	"github.com/roach88/sphinxql/internal/errs"
	"github.com/roach88/sphinxql/internal/queryir"
	"github.com/roach88/sphinxql/internal/schema"
)

// compileInsert compiles
//
//	INSERT INTO <table> (<cols>) VALUES (?, ?), (?, ?)
//
// or REPLACE INTO when Replace is set. Tuple values expand to (?, ?, ...).
func (c *Compiler) compileInsert(ins queryir.Insert) (Statement, error) {
	verb, kind := "INSERT", KindInsert
	if ins.Replace {
		verb, kind = "REPLACE", KindReplace
	}

	cols := make([]string, len(ins.Columns))
	for i, name := range ins.Columns {
		if err := checkColumn(ins.Schema, name); err != nil {
			return Statement{}, err
		}
		cols[i] = c.quoter.Column(name)
	}

	var params []any
	rows := make([]string, len(ins.Rows))
	for i, row := range ins.Rows {
		slots := make([]string, len(row))
		for j, v := range row {
			enc, err := encodeValue(ins.Schema, ins.Columns[j], v)
			if err != nil {
				return Statement{}, err
			}
			slot, slotParams := placeholder(enc)
			slots[j] = slot
			params = append(params, slotParams...)
		}
		rows[i] = "(" + strings.Join(slots, ", ") + ")"
	}

	sql := fmt.Sprintf("%s INTO %s (%s) VALUES %s",
		verb,
		c.quoter.Table(ins.Table),
		strings.Join(cols, ", "),
		strings.Join(rows, ", "))

	return Statement{Kind: kind, SQL: sql, Params: params}, nil
}

// compileUpdate compiles
//
//	UPDATE <table> SET <col> = ?, ... WHERE <filter>
//
// An update touching an indexed text or JSON column is rewritten into a
// full-row REPLACE. Without a filter every document is updated through
// WHERE <pk> > 0, the engine requiring a WHERE clause.
func (c *Compiler) compileUpdate(upd queryir.Update) (Statement, error) {
	if mustReplace(upd) {
		return c.compileReplace(upd)
	}

	pc := predicateCompiler{quoter: c.quoter, table: upd.Schema}
	filter := fragment{state: always}
	if upd.Filter != nil {
		var err error
		filter, err = pc.compile(upd.Filter)
		if err != nil {
			return Statement{}, err
		}
	}
	if filter.state == never {
		return Statement{Kind: KindUpdate, Empty: true}, nil
	}

	var params []any
	sets := make([]string, len(upd.Set))
	for i, a := range upd.Set {
		if err := checkColumn(upd.Schema, a.Column); err != nil {
			return Statement{}, err
		}
		enc, err := encodeValue(upd.Schema, a.Column, a.Value)
		if err != nil {
			return Statement{}, err
		}
		slot, slotParams := placeholder(enc)
		sets[i] = c.quoter.Column(a.Column) + " = " + slot
		params = append(params, slotParams...)
	}

	where := filter.sql
	if filter.state == always {
		where = c.quoter.Column(primaryKey(upd.Schema)) + " > ?"
		params = append(params, 0)
	} else {
		params = append(params, filter.params...)
	}

	sql := fmt.Sprintf("UPDATE %s SET %s WHERE %s",
		c.quoter.Table(upd.Table),
		strings.Join(sets, ", "),
		where)

	return Statement{Kind: KindUpdate, SQL: sql, Params: params}, nil
}

// compileDelete compiles DELETE FROM <table> WHERE <filter>. The engine
// has no unfiltered delete; use Truncate instead.
func (c *Compiler) compileDelete(del queryir.Delete) (Statement, error) {
	const op = "querysql.compileDelete"

	if del.Filter == nil {
		return Statement{}, errs.Unsupported(op, "DELETE without a filter is not supported, use TRUNCATE")
	}
	pc := predicateCompiler{quoter: c.quoter, table: del.Schema}
	filter, err := pc.compile(del.Filter)
	if err != nil {
		return Statement{}, err
	}
	switch filter.state {
	case never:
		return Statement{Kind: KindDelete, Empty: true}, nil
	case always:
		return Statement{}, errs.Unsupported(op, "DELETE without a filter is not supported, use TRUNCATE")
	}

	sql := fmt.Sprintf("DELETE FROM %s WHERE %s", c.quoter.Table(del.Table), filter.sql)
	return Statement{Kind: KindDelete, SQL: sql, Params: filter.params}, nil
}

// compileTruncate compiles TRUNCATE RTINDEX <table>.
func (c *Compiler) compileTruncate(tr queryir.Truncate) Statement {
	return Statement{Kind: KindTruncate, SQL: "TRUNCATE RTINDEX " + c.quoter.Table(tr.Table)}
}

// placeholder returns the slot text for an encoded value.
func placeholder(v any) (string, []any) {
	t, ok := v.(codec.Tuple)
	if !ok {
		return "?", []any{v}
	}
	slots := make([]string, len(t))
	for i := range slots {
		slots[i] = "?"
	}
	return "(" + strings.Join(slots, ", ") + ")", append([]any(nil), t...)
}

// encodeValue encodes v for column name, by wire type when the table is
// known.
func encodeValue(table *schema.Table, name string, v any) (any, error) {
	if table != nil {
		if col, ok := table.Column(name); ok {
			return codec.Encode(col, v)
		}
	}
	return plainParam(v), nil
}

func primaryKey(table *schema.Table) string {
	if table == nil {
		return schema.DefaultPrimaryKey
	}
	return table.PrimaryKey().Name
}
