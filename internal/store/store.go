package store

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/roach88/sphinxql/internal/queryir"
	"github.com/roach88/sphinxql/internal/querysql"
)

// IDGenerator generates query ids for log correlation.
type IDGenerator interface {
	Generate() string
}

// Store runs queries against the engine.
//
// Thread-safety: Store holds no mutable state and is safe for concurrent
// use as far as the underlying *sql.DB is.
type Store struct {
	db       *sql.DB
	compiler *querysql.Compiler
	logger   *slog.Logger
	ids      IDGenerator
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the statement logger. The default discards.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithQueryIDs sets the query id generator. The default is UUIDv7.
func WithQueryIDs(ids IDGenerator) Option {
	return func(s *Store) {
		s.ids = ids
	}
}

// WithQuoter sets the database and cluster prefixes of table names.
func WithQuoter(q querysql.Quoter) Option {
	return func(s *Store) {
		s.compiler = querysql.NewCompiler(querysql.WithQuoter(q))
	}
}

// New wraps an open database.
func New(db *sql.DB, opts ...Option) *Store {
	s := &Store{
		db:       db,
		compiler: querysql.NewCompiler(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		ids:      UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open opens and pings a database with driverName, typically "mysql".
func Open(ctx context.Context, driverName, dsn string, opts ...Option) (*Store, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return New(db, opts...), nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying sql.DB.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Compiler returns the statement compiler used by the store.
func (s *Store) Compiler() *querysql.Compiler {
	return s.compiler
}

// Compile compiles q with the store's quoter.
func (s *Store) Compile(q queryir.Query) (querysql.Statement, error) {
	return s.compiler.Compile(q)
}

// querier is the subset of *sql.DB and *sql.Conn statements run on.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// exec runs a write statement and returns its result. Empty statements
// return a nil result without touching the connection.
func (s *Store) exec(ctx context.Context, q querier, stmt querysql.Statement) (sql.Result, error) {
	id := s.ids.Generate()
	if stmt.Empty {
		s.logEmpty(ctx, id, stmt)
		return nil, nil
	}

	start := time.Now()
	res, err := q.ExecContext(ctx, stmt.SQL, stmt.Params...)
	if err != nil {
		s.logFailure(ctx, id, stmt, err)
		return nil, fmt.Errorf("exec %s: %w", stmt.Kind, err)
	}

	var affected int64
	if n, err := res.RowsAffected(); err == nil {
		affected = n
	}
	s.logger.DebugContext(ctx, "statement executed",
		"query_id", id,
		"kind", stmt.Kind,
		"sql", stmt.SQL,
		"params", stmt.Params,
		"rows", affected,
		"elapsed", time.Since(start),
	)
	return res, nil
}

// query runs a read statement and hands each row to scan. Empty statements
// call scan zero times.
func (s *Store) query(ctx context.Context, q querier, stmt querysql.Statement, scan func(*sql.Rows) error) error {
	id := s.ids.Generate()
	if stmt.Empty {
		s.logEmpty(ctx, id, stmt)
		return nil
	}

	start := time.Now()
	rows, err := q.QueryContext(ctx, stmt.SQL, stmt.Params...)
	if err != nil {
		s.logFailure(ctx, id, stmt, err)
		return fmt.Errorf("query %s: %w", stmt.Kind, err)
	}
	defer rows.Close()

	var n int
	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
		n++
	}
	if err := rows.Err(); err != nil {
		s.logFailure(ctx, id, stmt, err)
		return fmt.Errorf("iterate %s: %w", stmt.Kind, err)
	}

	s.logger.DebugContext(ctx, "statement executed",
		"query_id", id,
		"kind", stmt.Kind,
		"sql", stmt.SQL,
		"params", stmt.Params,
		"rows", n,
		"elapsed", time.Since(start),
	)
	return nil
}

func (s *Store) logEmpty(ctx context.Context, id string, stmt querysql.Statement) {
	s.logger.DebugContext(ctx, "statement skipped",
		"query_id", id,
		"kind", stmt.Kind,
		"empty", true,
	)
}

func (s *Store) logFailure(ctx context.Context, id string, stmt querysql.Statement, err error) {
	s.logger.ErrorContext(ctx, "statement failed",
		"query_id", id,
		"kind", stmt.Kind,
		"sql", stmt.SQL,
		"error", err,
	)
}
