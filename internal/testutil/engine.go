package testutil

import (
	"database/sql"
	"path/filepath"
	"sync"
	"testing"

	"github.com/mattn/go-sqlite3"

	"github.com/roach88/sphinxql/internal/codec"
)

// EngineDriver is the database/sql driver name of the engine stand-in.
const EngineDriver = "sqlite3_sphinxql"

var registerOnce sync.Once

// register installs a SQLite driver with the engine's LAST_INSERT_ID():
// the comma-separated ids of every row inserted by the last write
// statement, in insertion order.
func register() {
	registerOnce.Do(func() {
		sql.Register(EngineDriver, &sqlite3.SQLiteDriver{
			ConnectHook: func(conn *sqlite3.SQLiteConn) error {
				ids := &insertIDs{}
				conn.RegisterUpdateHook(ids.update)
				conn.RegisterCommitHook(ids.commit)
				conn.RegisterRollbackHook(ids.rollback)
				return conn.RegisterFunc("last_insert_id", ids.list, false)
			},
		})
	})
}

// insertIDs tracks inserted rowids per connection. Rows collect while a
// statement runs and become visible when it commits.
type insertIDs struct {
	mu        sync.Mutex
	pending   []int64
	committed []int64
}

func (r *insertIDs) update(op int, _, _ string, rowid int64) {
	if op != sqlite3.SQLITE_INSERT {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = append(r.pending, rowid)
}

func (r *insertIDs) commit() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.pending) > 0 {
		r.committed, r.pending = r.pending, nil
	}
	return 0
}

func (r *insertIDs) rollback() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = nil
}

func (r *insertIDs) list() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return codec.FormatInsertIDs(r.committed)
}

// OpenEngine opens a SQLite database standing in for the search engine and
// applies ddl. The database is closed when the test ends.
//
// The stand-in speaks the subset of the dialect SQLite shares: backtick
// identifiers, the __where__ alias in WHERE, LIMIT <offset>, <count>,
// REPLACE INTO and LAST_INSERT_ID(). It has no MATCH, IN() function or
// OPTION clause.
func OpenEngine(t testing.TB, ddl ...string) *sql.DB {
	t.Helper()

	db, err := sql.Open(EngineDSN(t, ddl...))
	if err != nil {
		t.Fatalf("open engine: %v", err)
	}
	// LAST_INSERT_ID() is per connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

// EngineDSN creates an engine stand-in database file with ddl applied and
// returns the driver name and DSN to open it with.
func EngineDSN(t testing.TB, ddl ...string) (driverName, dsn string) {
	t.Helper()
	register()

	dsn = filepath.Join(t.TempDir(), "engine.db")
	db, err := sql.Open(EngineDriver, dsn)
	if err != nil {
		t.Fatalf("open engine: %v", err)
	}
	defer db.Close()

	for _, stmt := range ddl {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("apply %q: %v", stmt, err)
		}
	}
	return EngineDriver, dsn
}
