package querysql

import (
	"fmt"
	"strings"

	"github.com/roach88/sphinxql/internal/schema"
)

// StubColumn is the indexed column added to tables that declare none. The
// engine requires at least one full-text field.
const StubColumn = "__stub__"

// compileCreateTable compiles
//
//	CREATE TABLE <table> (<col> <type>, ...) min_prefix_len = ? ...
//
// The primary key is implicit and never declared. Tables are created
// outside any cluster; see ClusterAdd.
func (c *Compiler) compileCreateTable(t schema.Table) Statement {
	attrs := t.Attributes()
	cols := make([]string, 0, len(attrs)+1)
	for _, col := range attrs {
		cols = append(cols, c.quoter.Column(col.Name)+" "+col.Type.DDL())
	}
	if len(t.IndexedFields()) == 0 {
		cols = append(cols, c.quoter.Column(StubColumn)+" "+schema.Text.DDL())
	}

	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE %s (%s)", c.quoter.DDLTable(t.Name), strings.Join(cols, ", "))

	var params []any
	for _, opt := range t.Options.List() {
		fmt.Fprintf(&b, " %s = ?", opt.Name)
		params = append(params, fmt.Sprint(opt.Value))
	}

	return Statement{Kind: KindCreateTable, SQL: b.String(), Params: params}
}

// ClusterCreate returns the CREATE CLUSTER statement for the configured
// cluster. It reports false when no cluster is configured. The engine
// rejects it when the cluster already exists.
func (c *Compiler) ClusterCreate() (Statement, bool) {
	if c.quoter.Cluster == "" {
		return Statement{}, false
	}
	sql := "CREATE CLUSTER " + c.quoter.Name(c.quoter.Cluster)
	return Statement{Kind: KindCluster, SQL: sql}, true
}

// ClusterAdd returns the statement adding a created table to the
// configured cluster. It reports false when no cluster is configured.
func (c *Compiler) ClusterAdd(table string) (Statement, bool) {
	if c.quoter.Cluster == "" {
		return Statement{}, false
	}
	sql := fmt.Sprintf("ALTER CLUSTER %s ADD %s", c.quoter.Name(c.quoter.Cluster), c.quoter.DDLTable(table))
	return Statement{Kind: KindCluster, SQL: sql}, true
}
