package querysql

import (
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sphinxql/internal/codec"
	"github.com/roach88/sphinxql/internal/errs"
	"github.com/roach88/sphinxql/internal/queryir"
	"github.com/roach88/sphinxql/internal/schema"
	"github.com/roach88/sphinxql/internal/sphinxql"
)

func testTable() *schema.Table {
	return &schema.Table{
		Name: "testmodel",
		Columns: []schema.Column{
			{Name: "sphinx_field", Type: schema.Text},
			{Name: "other_field", Type: schema.Text},
			{Name: "attr_uint", Type: schema.Uint},
			{Name: "attr_bool", Type: schema.Bool},
			{Name: "attr_timestamp", Type: schema.Timestamp},
			{Name: "attr_json", Type: schema.JSON},
			{Name: "attr_multi", Type: schema.Multi},
			{Name: "attr_string", Type: schema.String},
		},
	}
}

func mustCompile(t *testing.T, c *Compiler, q queryir.Query) Statement {
	t.Helper()
	stmt, err := c.Compile(q)
	require.NoError(t, err)
	return stmt
}

// assertGolden compares "<sql>\n<params>\n" against testdata/golden.
func assertGolden(t *testing.T, name string, stmt Statement) {
	t.Helper()

	params, err := codec.MarshalJSON(stmt.Params)
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, []byte(stmt.SQL+"\n"+string(params)+"\n"))
}

func TestCompile_SelectAll(t *testing.T) {
	stmt := mustCompile(t, NewCompiler(), queryir.Select{Table: "testmodel"})

	assert.Equal(t, KindSelect, stmt.Kind)
	assert.Equal(t, "SELECT * FROM `testmodel` LIMIT 2147483647", stmt.SQL)
	assert.Empty(t, stmt.Params)
	assert.False(t, stmt.Empty)
}

func TestCompile_SelectPointer(t *testing.T) {
	stmt := mustCompile(t, NewCompiler(), &queryir.Select{
		Table:  "testmodel",
		Filter: &queryir.Compare{Column: "attr_uint", Op: queryir.Exact, Value: 5},
	})

	assert.Equal(t, "SELECT *, (`attr_uint` = ?) AS `__where__` FROM `testmodel` WHERE __where__ = ? LIMIT 2147483647", stmt.SQL)
	assert.Equal(t, []any{5, true}, stmt.Params)
}

func TestCompile_FilterIsHoistedIntoWhereColumn(t *testing.T) {
	stmt := mustCompile(t, NewCompiler(), queryir.Select{
		Table: "testmodel",
		Filter: queryir.And(
			queryir.Compare{Column: "attr_uint", Op: queryir.GTE, Value: 0},
			queryir.MatchPredicate{Match: sphinxql.NewMatch(sphinxql.T("hello"))},
		),
		Schema: testTable(),
	})

	assert.Equal(t,
		"SELECT *, (`attr_uint` >= ?) AS `__where__` FROM `testmodel` WHERE __where__ = ? AND MATCH(?) LIMIT 2147483647",
		stmt.SQL)
	assert.Equal(t, []any{0, true, "(hello)"}, stmt.Params)
}

func TestCompile_MatchOnly(t *testing.T) {
	stmt := mustCompile(t, NewCompiler(), queryir.Select{
		Table:  "testmodel",
		Filter: queryir.MatchPredicate{Match: sphinxql.NewMatch(sphinxql.T("a(b)"))},
	})

	assert.Equal(t, "SELECT * FROM `testmodel` WHERE MATCH(?) LIMIT 2147483647", stmt.SQL)
	assert.Equal(t, []any{`(a\(b\))`}, stmt.Params)
}

func TestCompile_MatchesAreMerged(t *testing.T) {
	stmt := mustCompile(t, NewCompiler(), queryir.Select{
		Table: "testmodel",
		Match: sphinxql.NewMatch(sphinxql.T("a")),
		Filter: queryir.And(
			queryir.MatchPredicate{Match: sphinxql.NewMatch(sphinxql.T("b"))},
			queryir.MatchPredicate{Match: sphinxql.NewMatch(sphinxql.Not(sphinxql.T("c")))},
		),
	})

	assert.Equal(t, "SELECT * FROM `testmodel` WHERE MATCH(?) LIMIT 2147483647", stmt.SQL)
	assert.Equal(t, []any{"(a) & (b) & !(c)"}, stmt.Params)
}

func TestCompile_MatchOutsideTopLevelAnd(t *testing.T) {
	match := queryir.MatchPredicate{Match: sphinxql.NewMatch(sphinxql.T("hello"))}
	cmp := queryir.Compare{Column: "attr_uint", Op: queryir.Exact, Value: 1}

	filters := map[string]queryir.Predicate{
		"or":              queryir.Or(cmp, match),
		"negated":         queryir.Not(queryir.And(cmp, match)),
		"nested and":      queryir.And(cmp, queryir.And(match)),
		"after empty in":  queryir.And(queryir.In{Column: "attr_uint"}, queryir.Or(match, cmp)),
		"after always or": queryir.And(cmp, queryir.Or(queryir.Everything{}, queryir.And(match))),
	}

	for name, filter := range filters {
		t.Run(name, func(t *testing.T) {
			_, err := NewCompiler().Compile(queryir.Select{Table: "testmodel", Filter: filter})
			require.Error(t, err)
			assert.True(t, errs.IsInvalidOperation(err))
		})
	}
}

func TestCompile_Predicates(t *testing.T) {
	ts := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		filter queryir.Predicate
		sql    string
		params []any
	}{
		{
			name:   "in keeps first occurrence",
			filter: queryir.In{Column: "attr_uint", Values: []any{3, 1, 3, 2}},
			sql:    "IN(`attr_uint`, ?, ?, ?)",
			params: []any{3, 1, 2},
		},
		{
			name:   "multi exact becomes in",
			filter: queryir.Compare{Column: "attr_multi", Op: queryir.Exact, Value: 1},
			sql:    "IN(`attr_multi`, ?)",
			params: []any{1},
		},
		{
			name:   "multi range stays comparison",
			filter: queryir.Compare{Column: "attr_multi", Op: queryir.GT, Value: 1},
			sql:    "`attr_multi` > ?",
			params: []any{1},
		},
		{
			name:   "timestamp encoded",
			filter: queryir.Compare{Column: "attr_timestamp", Op: queryir.LT, Value: ts},
			sql:    "`attr_timestamp` < ?",
			params: []any{int64(1577836800)},
		},
		{
			name:   "bool encoded",
			filter: queryir.Compare{Column: "attr_bool", Op: queryir.Exact, Value: true},
			sql:    "`attr_bool` = ?",
			params: []any{int64(1)},
		},
		{
			name:   "nil is null",
			filter: queryir.Compare{Column: "attr_json", Op: queryir.Exact, Value: nil},
			sql:    "`attr_json` IS NULL",
		},
		{
			name: "nested or is parenthesized",
			filter: queryir.And(
				queryir.Compare{Column: "attr_uint", Op: queryir.Exact, Value: 1},
				queryir.Or(
					queryir.Compare{Column: "attr_bool", Op: queryir.Exact, Value: false},
					queryir.Compare{Column: "attr_string", Op: queryir.Exact, Value: "x"},
				),
			),
			sql:    "`attr_uint` = ? AND (`attr_bool` = ? OR `attr_string` = ?)",
			params: []any{1, int64(0), "x"},
		},
		{
			name:   "negation",
			filter: queryir.Not(queryir.Compare{Column: "attr_uint", Op: queryir.Exact, Value: 1}),
			sql:    "NOT (`attr_uint` = ?)",
			params: []any{1},
		},
		{
			name: "negated and",
			filter: queryir.Not(queryir.And(
				queryir.Compare{Column: "attr_uint", Op: queryir.GT, Value: 1},
				queryir.Compare{Column: "attr_uint", Op: queryir.LT, Value: 9},
			)),
			sql:    "NOT (`attr_uint` > ? AND `attr_uint` < ?)",
			params: []any{1, 9},
		},
		{
			name: "empty in dropped from or",
			filter: queryir.Or(
				queryir.In{Column: "attr_uint", Values: []any{}},
				queryir.Compare{Column: "attr_uint", Op: queryir.Exact, Value: 2},
			),
			sql:    "`attr_uint` = ?",
			params: []any{2},
		},
		{
			name: "everything dropped from and",
			filter: queryir.And(
				queryir.Everything{},
				queryir.Compare{Column: "attr_uint", Op: queryir.Exact, Value: 2},
			),
			sql:    "`attr_uint` = ?",
			params: []any{2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt := mustCompile(t, NewCompiler(), queryir.Select{
				Table:  "testmodel",
				Filter: tt.filter,
				Schema: testTable(),
			})

			want := "SELECT *, (" + tt.sql + ") AS `__where__` FROM `testmodel` WHERE __where__ = ? LIMIT 2147483647"
			assert.Equal(t, want, stmt.SQL)
			assert.Equal(t, append(tt.params, true), stmt.Params)
		})
	}
}

func TestCompile_EmptyResultSet(t *testing.T) {
	emptyIn := queryir.In{Column: "attr_uint", Values: nil}

	filters := map[string]queryir.Predicate{
		"empty in":         emptyIn,
		"and with empty":   queryir.And(queryir.Compare{Column: "attr_uint", Op: queryir.Exact, Value: 1}, emptyIn),
		"or of empties":    queryir.Or(emptyIn, emptyIn),
		"empty or":         queryir.Or(),
		"not everything":   queryir.Not(queryir.Everything{}),
		"match with empty": queryir.And(queryir.MatchPredicate{Match: sphinxql.NewMatch(sphinxql.T("x"))}, emptyIn),
	}

	for name, filter := range filters {
		t.Run(name, func(t *testing.T) {
			stmt := mustCompile(t, NewCompiler(), queryir.Select{Table: "testmodel", Filter: filter})
			assert.True(t, stmt.Empty)
			assert.Empty(t, stmt.SQL)
			assert.Empty(t, stmt.Params)
		})
	}
}

func TestCompile_AlwaysTrueFilterIsDropped(t *testing.T) {
	filters := map[string]queryir.Predicate{
		"everything": queryir.Everything{},
		"empty and":  queryir.And(),
		"not empty":  queryir.Not(queryir.In{Column: "attr_uint"}),
	}

	for name, filter := range filters {
		t.Run(name, func(t *testing.T) {
			stmt := mustCompile(t, NewCompiler(), queryir.Select{Table: "testmodel", Filter: filter})
			assert.Equal(t, "SELECT * FROM `testmodel` LIMIT 2147483647", stmt.SQL)
		})
	}
}

func TestCompile_SubqueryInUnsupported(t *testing.T) {
	_, err := NewCompiler().Compile(queryir.Select{
		Table:  "testmodel",
		Filter: queryir.In{Column: "id", Query: queryir.Select{Table: "other"}},
	})
	require.Error(t, err)
	assert.True(t, errs.IsUnsupported(err))
}

func TestCompile_SchemaChecks(t *testing.T) {
	field, err := sphinxql.F("attr_uint", "text")
	require.NoError(t, err)

	tests := []struct {
		name  string
		query queryir.Select
	}{
		{"unknown column", queryir.Select{Columns: []string{"missing"}}},
		{"unknown filter column", queryir.Select{Filter: queryir.Compare{Column: "missing", Op: queryir.Exact, Value: 1}}},
		{"unknown order column", queryir.Select{OrderBy: []queryir.Order{{Column: "missing"}}}},
		{"field on attribute", queryir.Select{Match: sphinxql.NewMatch(field)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := tt.query
			q.Table = "testmodel"
			q.Schema = testTable()

			_, err := NewCompiler().Compile(q)
			require.Error(t, err)
			assert.True(t, errs.IsInvalidArgument(err))
		})
	}
}

func TestCompile_FieldOnIndexedColumn(t *testing.T) {
	field, err := sphinxql.F("sphinx_field", "text")
	require.NoError(t, err)

	stmt := mustCompile(t, NewCompiler(), queryir.Select{
		Table:  "testmodel",
		Match:  sphinxql.NewMatch(field),
		Schema: testTable(),
	})
	assert.Equal(t, []any{"(@sphinx_field (text))"}, stmt.Params)
}

func TestCompile_ColumnsAndCount(t *testing.T) {
	c := NewCompiler()

	stmt := mustCompile(t, c, queryir.Select{Table: "testmodel", Columns: []string{"id", "attr_uint"}})
	assert.Equal(t, "SELECT `id`, `attr_uint` FROM `testmodel` LIMIT 2147483647", stmt.SQL)

	stmt = mustCompile(t, c, queryir.Select{
		Table:  "testmodel",
		Count:  true,
		Filter: queryir.Compare{Column: "attr_uint", Op: queryir.Exact, Value: 1},
	})
	assert.Equal(t, "SELECT COUNT(*), (`attr_uint` = ?) AS `__where__` FROM `testmodel` WHERE __where__ = ?", stmt.SQL)
	assert.Equal(t, []any{1, true}, stmt.Params)
}

func TestCompile_Limit(t *testing.T) {
	tests := []struct {
		offset, limit int
		want          string
	}{
		{0, 0, "LIMIT 2147483647"},
		{0, 20, "LIMIT 20"},
		{10, 0, "LIMIT 10, 2147483647"},
		{10, 5, "LIMIT 10, 5"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, limitClause(tt.offset, tt.limit))
	}
}

func TestCompile_OrderLimitOptions(t *testing.T) {
	stmt := mustCompile(t, NewCompiler(), queryir.Select{
		Table:   "testmodel",
		Match:   sphinxql.NewMatch(sphinxql.T("hello"), sphinxql.P("big world").Near(3)),
		OrderBy: []queryir.Order{{Expr: queryir.Weight(), Desc: true}, {Column: "id"}},
		Offset:  10,
		Limit:   20,
		Options: queryir.NewOptions(
			queryir.Option{Name: "ranker", Value: queryir.Expr("sum(lcs)")},
			queryir.Option{Name: "field_weights", Value: queryir.FieldWeights{
				{Field: "sphinx_field", Weight: 10},
				{Field: "other_field", Weight: 3},
			}},
			queryir.Option{Name: "max_matches", Value: 1000},
		),
	})

	assertGolden(t, "select_order_limit_options", stmt)
}

func TestCompile_IdentOption(t *testing.T) {
	stmt := mustCompile(t, NewCompiler(), queryir.Select{
		Table:   "testmodel",
		Options: queryir.NewOptions(queryir.Option{Name: "ranker", Value: queryir.Ident("bm25")}),
	})
	assert.Equal(t, "SELECT * FROM `testmodel` LIMIT 2147483647 OPTION ranker = bm25", stmt.SQL)
	assert.Empty(t, stmt.Params)
}

func TestCompile_RejectsFunctionNames(t *testing.T) {
	tests := []struct {
		name string
		sel  queryir.Select
	}{
		{"option", queryir.Select{
			Table:   "t",
			Options: queryir.NewOptions(queryir.Option{Name: "ranker", Value: queryir.Func{Name: "expr(1) ; DROP TABLE t; --"}}),
		}},
		{"order by", queryir.Select{
			Table:   "t",
			OrderBy: []queryir.Order{{Expr: queryir.Func{Name: "1; DELETE FROM t"}}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt, err := NewCompiler().Compile(tt.sel)
			require.Error(t, err)
			assert.True(t, errs.IsInvalidArgument(err))
			assert.Empty(t, stmt.SQL)
		})
	}
}

func TestCompile_QuoterPrefixes(t *testing.T) {
	c := NewCompiler(WithQuoter(Quoter{Database: "db", Cluster: "search"}))

	stmt := mustCompile(t, c, queryir.Select{Table: "testmodel"})
	assert.Equal(t, "SELECT * FROM `search`:`db__testmodel` LIMIT 2147483647", stmt.SQL)

	stmt = mustCompile(t, c, queryir.Truncate{Table: "testmodel"})
	assert.Equal(t, "TRUNCATE RTINDEX `search`:`db__testmodel`", stmt.SQL)
	assert.Equal(t, KindTruncate, stmt.Kind)
}

func TestCompile_Insert(t *testing.T) {
	stmt := mustCompile(t, NewCompiler(), queryir.Insert{
		Table:   "testmodel",
		Columns: []string{"sphinx_field", "attr_multi", "attr_json"},
		Rows: [][]any{
			{"first", []int{1, 2}, map[string]any{"b": 1, "a": []any{true}}},
			{"second", nil, nil},
		},
		Schema: testTable(),
	})

	assert.Equal(t, KindInsert, stmt.Kind)
	assertGolden(t, "insert_multi_row", stmt)
}

func TestCompile_InsertReplace(t *testing.T) {
	stmt := mustCompile(t, NewCompiler(), queryir.Insert{
		Table:   "testmodel",
		Columns: []string{"id", "attr_uint"},
		Rows:    [][]any{{1, 2}},
		Replace: true,
	})

	assert.Equal(t, KindReplace, stmt.Kind)
	assert.Equal(t, "REPLACE INTO `testmodel` (`id`, `attr_uint`) VALUES (?, ?)", stmt.SQL)
	assert.Equal(t, []any{1, 2}, stmt.Params)
}

func TestCompile_Update(t *testing.T) {
	c := NewCompiler()

	stmt := mustCompile(t, c, queryir.Update{
		Table:  "testmodel",
		Set:    []queryir.Assignment{{Column: "attr_uint", Value: 5}, {Column: "attr_multi", Value: []int{3}}},
		Filter: queryir.Compare{Column: "id", Op: queryir.Exact, Value: 1},
		Schema: testTable(),
	})
	assert.Equal(t, KindUpdate, stmt.Kind)
	assert.Equal(t, "UPDATE `testmodel` SET `attr_uint` = ?, `attr_multi` = (?) WHERE `id` = ?", stmt.SQL)
	assert.Equal(t, []any{5, int64(3), 1}, stmt.Params)

	stmt = mustCompile(t, c, queryir.Update{
		Table: "testmodel",
		Set:   []queryir.Assignment{{Column: "attr_uint", Value: 5}},
	})
	assert.Equal(t, "UPDATE `testmodel` SET `attr_uint` = ? WHERE `id` > ?", stmt.SQL)
	assert.Equal(t, []any{5, 0}, stmt.Params)

	stmt = mustCompile(t, c, queryir.Update{
		Table:  "testmodel",
		Set:    []queryir.Assignment{{Column: "attr_uint", Value: 5}},
		Filter: queryir.In{Column: "id"},
	})
	assert.True(t, stmt.Empty)
}

func postTable() *schema.Table {
	return &schema.Table{
		Name: "post",
		Columns: []schema.Column{
			{Name: "title", Type: schema.Text},
			{Name: "meta", Type: schema.JSON},
			{Name: "views", Type: schema.Uint},
		},
	}
}

func TestCompile_UpdateBecomesReplace(t *testing.T) {
	stmt := mustCompile(t, NewCompiler(), queryir.Update{
		Table: "post",
		Set: []queryir.Assignment{
			{Column: "views", Value: 3},
			{Column: "title", Value: "hello"},
			{Column: "meta", Value: map[string]any{"tags": []any{"a", "b"}}},
		},
		Filter: queryir.And(queryir.Compare{Column: "id", Op: queryir.Exact, Value: 7}),
		Schema: postTable(),
	})

	assert.Equal(t, KindReplace, stmt.Kind)
	assertGolden(t, "update_as_replace", stmt)
}

func TestCompile_UpdateAttributeStaysUpdate(t *testing.T) {
	stmt := mustCompile(t, NewCompiler(), queryir.Update{
		Table:  "post",
		Set:    []queryir.Assignment{{Column: "views", Value: 3}},
		Filter: queryir.Compare{Column: "views", Op: queryir.LT, Value: 3},
		Schema: postTable(),
	})

	assert.Equal(t, "UPDATE `post` SET `views` = ? WHERE `views` < ?", stmt.SQL)
	assert.Equal(t, []any{3, 3}, stmt.Params)
}

func TestCompile_ReplaceRejected(t *testing.T) {
	full := []queryir.Assignment{
		{Column: "title", Value: "hello"},
		{Column: "meta", Value: nil},
		{Column: "views", Value: 1},
	}
	pkFilter := queryir.Compare{Column: "id", Op: queryir.Exact, Value: 7}

	tests := []struct {
		name   string
		set    []queryir.Assignment
		filter queryir.Predicate
		errMsg string
	}{
		{"no filter", full, nil, "only primary key"},
		{"range on pk", full, queryir.Compare{Column: "id", Op: queryir.GT, Value: 7}, "only primary key"},
		{"other column", full, queryir.Compare{Column: "views", Op: queryir.Exact, Value: 7}, "only primary key"},
		{"negated", full, queryir.Not(pkFilter), "only primary key"},
		{"two conditions", full, queryir.And(pkFilter, pkFilter), "only primary key"},
		{"in on pk", full, queryir.In{Column: "id", Values: []any{7}}, "only primary key"},
		{"partial", full[:1], pkFilter, "partial column set"},
		{"assigns pk", append([]queryir.Assignment{{Column: "id", Value: 8}}, full...), pkFilter, "cannot be assigned"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCompiler().Compile(queryir.Update{
				Table:  "post",
				Set:    tt.set,
				Filter: tt.filter,
				Schema: postTable(),
			})
			require.Error(t, err)
			assert.True(t, errs.IsUnsupported(err))
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestCompile_Delete(t *testing.T) {
	c := NewCompiler()

	stmt := mustCompile(t, c, queryir.Delete{
		Table:  "testmodel",
		Filter: queryir.In{Column: "id", Values: []any{1, 2, 1}},
	})
	assert.Equal(t, KindDelete, stmt.Kind)
	assert.Equal(t, "DELETE FROM `testmodel` WHERE IN(`id`, ?, ?)", stmt.SQL)
	assert.Equal(t, []any{1, 2}, stmt.Params)

	stmt = mustCompile(t, c, queryir.Delete{Table: "testmodel", Filter: queryir.In{Column: "id"}})
	assert.True(t, stmt.Empty)

	for _, filter := range []queryir.Predicate{nil, queryir.Everything{}} {
		_, err := c.Compile(queryir.Delete{Table: "testmodel", Filter: filter})
		require.Error(t, err)
		assert.True(t, errs.IsUnsupported(err))
	}
}

func TestCompile_DeleteUsesSchema(t *testing.T) {
	c := NewCompiler()

	stmt := mustCompile(t, c, queryir.Delete{
		Table:  "testmodel",
		Filter: queryir.Compare{Column: "attr_bool", Op: queryir.Exact, Value: true},
		Schema: testTable(),
	})
	assert.Equal(t, "DELETE FROM `testmodel` WHERE `attr_bool` = ?", stmt.SQL)
	assert.Equal(t, []any{int64(1)}, stmt.Params)

	_, err := c.Compile(queryir.Delete{
		Table:  "testmodel",
		Filter: queryir.Compare{Column: "rating", Op: queryir.GT, Value: 3},
		Schema: testTable(),
	})
	require.Error(t, err)
	assert.True(t, errs.IsInvalidArgument(err))
	assert.Contains(t, err.Error(), "unknown column")
}

func TestCompile_CreateTable(t *testing.T) {
	c := NewCompiler(WithQuoter(Quoter{Database: "db", Cluster: "search"}))

	table := schema.Table{
		Name: "testmodel",
		Columns: []schema.Column{
			{Name: "id", Type: schema.Bigint, PrimaryKey: true},
			{Name: "sphinx_field", Type: schema.StoredText},
			{Name: "attr_uint", Type: schema.Uint},
			{Name: "attr_multi", Type: schema.Multi},
		},
		Options: schema.IndexOptions{MinPrefixLen: 3, CharsetTable: "non_cjk"},
	}

	stmt := mustCompile(t, c, queryir.CreateTable{Table: table})
	assert.Equal(t, KindCreateTable, stmt.Kind)
	assertGolden(t, "create_table", stmt)
}

func TestCompile_CreateTableAddsStubField(t *testing.T) {
	stmt := mustCompile(t, NewCompiler(), queryir.CreateTable{Table: schema.Table{
		Name:    "counters",
		Columns: []schema.Column{{Name: "hits", Type: schema.Uint}},
	}})

	assert.Equal(t, "CREATE TABLE `counters` (`hits` uint, `__stub__` text indexed)", stmt.SQL)
	assert.Empty(t, stmt.Params)
}

func TestCompiler_ClusterAdd(t *testing.T) {
	_, ok := NewCompiler().ClusterAdd("testmodel")
	assert.False(t, ok)

	stmt, ok := NewCompiler(WithQuoter(Quoter{Database: "db", Cluster: "search"})).ClusterAdd("testmodel")
	require.True(t, ok)
	assert.Equal(t, KindCluster, stmt.Kind)
	assert.Equal(t, "ALTER CLUSTER `search` ADD `db__testmodel`", stmt.SQL)
}

func TestCompiler_ClusterCreate(t *testing.T) {
	_, ok := NewCompiler().ClusterCreate()
	assert.False(t, ok)

	stmt, ok := NewCompiler(WithQuoter(Quoter{Database: "db", Cluster: "search"})).ClusterCreate()
	require.True(t, ok)
	assert.Equal(t, KindCluster, stmt.Kind)
	assert.Equal(t, "CREATE CLUSTER `search`", stmt.SQL)
	assert.Empty(t, stmt.Params)
}

func TestCompile_InvalidQuery(t *testing.T) {
	_, err := NewCompiler().Compile(queryir.Select{Offset: -1})
	require.Error(t, err)
	assert.True(t, errs.IsInvalidArgument(err))

	_, err = NewCompiler().Compile(nil)
	require.Error(t, err)
	assert.True(t, errs.IsInvalidArgument(err))
}

func TestCompile_InvalidMatchQuorum(t *testing.T) {
	_, err := NewCompiler().Compile(queryir.Select{
		Table: "testmodel",
		Match: sphinxql.NewMatch(sphinxql.P("a b").AsExact().WithQuorum(sphinxql.MinMatch(1))),
	})
	require.Error(t, err)
	assert.True(t, errs.IsInvalidArgument(err))
}

func TestDedupe(t *testing.T) {
	assert.Equal(t, []any{3, 1, 2}, dedupe([]any{3, 1, 3, 2, 1}))
	assert.Equal(t, []any{nil, "a"}, dedupe([]any{nil, "a", nil}))
	assert.Equal(t, []any{1, int64(1)}, dedupe([]any{1, int64(1)}), "different types are distinct")

	lists := dedupe([]any{[]int{1}, []int{1}})
	assert.Len(t, lists, 2, "non-comparable values are kept")

	arrays := []any{[1]any{[]int{1}}, [1]any{[]int{1}}, [1]any{1}, [1]any{1}}
	require.NotPanics(t, func() { arrays = dedupe(arrays) })
	assert.Len(t, arrays, 3, "arrays holding slices are kept, comparable arrays deduplicated")
	assert.Empty(t, dedupe(nil))
}
