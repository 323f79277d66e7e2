package testutil

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
)

// Exec is one statement seen by a Recorder.
type Exec struct {
	SQL  string
	Args []any
}

// Recorder is a database/sql driver that accepts every statement, records
// it and returns no rows. It covers statements SQLite cannot parse, such
// as CREATE TABLE with engine column types or TRUNCATE RTINDEX.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type Recorder struct {
	mu       sync.Mutex
	execs    []Exec
	failures map[string]error
}

// OpenRecorder opens a database backed by a new Recorder. The database is
// closed when the test ends.
func OpenRecorder(t testing.TB) (*sql.DB, *Recorder) {
	t.Helper()
	rec := &Recorder{}
	db := sql.OpenDB(recorderConnector{rec: rec})
	t.Cleanup(func() { db.Close() })
	return db, rec
}

// RecorderDriver is the database/sql driver name under which recorders
// opened by RecorderDSN are reachable.
const RecorderDriver = "sphinxql_recorder"

var (
	recorderOnce sync.Once
	recordersMu  sync.Mutex
	recorders    = map[string]*Recorder{}
)

// RecorderDSN registers a new Recorder and returns the driver name and DSN
// that open it, for code that takes a driver name and DSN instead of a
// *sql.DB. The DSN is released when the test ends.
func RecorderDSN(t testing.TB) (driverName, dsn string, rec *Recorder) {
	t.Helper()
	recorderOnce.Do(func() {
		sql.Register(RecorderDriver, registryDriver{})
	})

	rec = &Recorder{}
	dsn = fmt.Sprintf("%s/%p", t.Name(), rec)
	recordersMu.Lock()
	recorders[dsn] = rec
	recordersMu.Unlock()
	t.Cleanup(func() {
		recordersMu.Lock()
		delete(recorders, dsn)
		recordersMu.Unlock()
	})
	return RecorderDriver, dsn, rec
}

type registryDriver struct{}

func (registryDriver) Open(dsn string) (driver.Conn, error) {
	recordersMu.Lock()
	rec, ok := recorders[dsn]
	recordersMu.Unlock()
	if !ok {
		return nil, fmt.Errorf("recorder: unknown dsn %q", dsn)
	}
	return &recorderConn{rec: rec}, nil
}

// Execs returns a copy of the recorded statements in order.
func (r *Recorder) Execs() []Exec {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Exec(nil), r.execs...)
}

// SQL returns the recorded statement texts in order.
func (r *Recorder) SQL() []string {
	execs := r.Execs()
	out := make([]string, len(execs))
	for i, e := range execs {
		out[i] = e.SQL
	}
	return out
}

// FailOn makes statements starting with prefix fail with err. Failed
// statements are still recorded.
func (r *Recorder) FailOn(prefix string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failures == nil {
		r.failures = make(map[string]error)
	}
	r.failures[prefix] = err
}

func (r *Recorder) record(query string, args []driver.NamedValue) error {
	values := make([]any, len(args))
	for i, a := range args {
		values[i] = a.Value
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.execs = append(r.execs, Exec{SQL: query, Args: values})
	for prefix, err := range r.failures {
		if strings.HasPrefix(query, prefix) {
			return err
		}
	}
	return nil
}

type recorderConnector struct {
	rec *Recorder
}

func (c recorderConnector) Connect(context.Context) (driver.Conn, error) {
	return &recorderConn{rec: c.rec}, nil
}

func (c recorderConnector) Driver() driver.Driver {
	return recorderDriver{rec: c.rec}
}

type recorderDriver struct {
	rec *Recorder
}

func (d recorderDriver) Open(string) (driver.Conn, error) {
	return &recorderConn{rec: d.rec}, nil
}

type recorderConn struct {
	rec *Recorder
}

func (c *recorderConn) Prepare(query string) (driver.Stmt, error) {
	return &recorderStmt{rec: c.rec, query: query}, nil
}

func (c *recorderConn) Close() error { return nil }

func (c *recorderConn) Begin() (driver.Tx, error) {
	return nil, errors.New("recorder: transactions are not supported")
}

func (c *recorderConn) ExecContext(_ context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	if err := c.rec.record(query, args); err != nil {
		return nil, err
	}
	return driver.RowsAffected(0), nil
}

func (c *recorderConn) QueryContext(_ context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	if err := c.rec.record(query, args); err != nil {
		return nil, err
	}
	return emptyRows{}, nil
}

type recorderStmt struct {
	rec   *Recorder
	query string
}

func (s *recorderStmt) Close() error  { return nil }
func (s *recorderStmt) NumInput() int { return -1 }

func (s *recorderStmt) Exec(args []driver.Value) (driver.Result, error) {
	if err := s.rec.record(s.query, named(args)); err != nil {
		return nil, err
	}
	return driver.RowsAffected(0), nil
}

func (s *recorderStmt) Query(args []driver.Value) (driver.Rows, error) {
	if err := s.rec.record(s.query, named(args)); err != nil {
		return nil, err
	}
	return emptyRows{}, nil
}

func named(args []driver.Value) []driver.NamedValue {
	out := make([]driver.NamedValue, len(args))
	for i, v := range args {
		out[i] = driver.NamedValue{Ordinal: i + 1, Value: v}
	}
	return out
}

type emptyRows struct{}

func (emptyRows) Columns() []string         { return nil }
func (emptyRows) Close() error              { return nil }
func (emptyRows) Next([]driver.Value) error { return io.EOF }
