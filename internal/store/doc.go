// Package store executes compiled statements against a Manticore/Sphinx
// engine over database/sql.
//
// The store is the transport boundary of the query compiler:
//   - Statements come from querysql and carry positional ? parameters
//   - Empty statements (known to match nothing) never reach the engine
//   - Rows are decoded per column wire type when a table schema is known
//   - Multi-row inserts read their ids from SELECT LAST_INSERT_ID()
//
// # Connection Configuration
//
// The engine speaks the MySQL wire protocol without server-side prepared
// statements, so DSNs for github.com/go-sql-driver/mysql must set
// interpolateParams=true:
//
//	tcp(127.0.0.1:9306)/?interpolateParams=true
//
// # Logging
//
// Every executed statement is logged at debug level with its query id,
// kind, parameters, row count and elapsed time. Query ids are UUIDv7 by
// default and time-sortable.
package store
