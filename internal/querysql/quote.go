package querysql

import "strings"

// Quoter quotes identifiers for the engine.
//
// Table names carry the database prefix (<database>__<table>) and, outside
// DDL, the cluster prefix (`cluster`:`table`). Tables are always created
// outside a cluster and added to it afterwards.
type Quoter struct {
	Database string
	Cluster  string
}

// Name backtick-quotes an identifier. Embedded backticks are doubled and
// already quoted names are returned unchanged.
func (Quoter) Name(name string) string {
	if len(name) >= 2 && strings.HasPrefix(name, "`") && strings.HasSuffix(name, "`") {
		return name
	}
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// Column quotes a column name. Columns are never table-qualified.
func (q Quoter) Column(name string) string {
	return q.Name(name)
}

// Table quotes a table name with the database and cluster prefixes.
func (q Quoter) Table(name string) string {
	table := q.Name(q.prefixed(name))
	if q.Cluster == "" {
		return table
	}
	return q.Name(q.Cluster) + ":" + table
}

// DDLTable quotes a table name for CREATE TABLE: database prefix only.
func (q Quoter) DDLTable(name string) string {
	return q.Name(q.prefixed(name))
}

// TableName returns the unquoted engine table name with the database
// prefix.
func (q Quoter) TableName(name string) string {
	return q.prefixed(name)
}

// Unprefix strips the database prefix from an engine table name. It
// reports false when name belongs to another database.
func (q Quoter) Unprefix(name string) (string, bool) {
	if q.Database == "" {
		return name, true
	}
	prefix := q.Database + "__"
	if !strings.HasPrefix(name, prefix) {
		return "", false
	}
	return strings.TrimPrefix(name, prefix), true
}

func (q Quoter) prefixed(name string) string {
	if q.Database == "" {
		return name
	}
	return q.Database + "__" + name
}
