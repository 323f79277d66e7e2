package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/roach88/sphinxql/internal/codec"
	"github.com/roach88/sphinxql/internal/errs"
	"github.com/roach88/sphinxql/internal/queryir"
	"github.com/roach88/sphinxql/internal/querysql"
	"github.com/roach88/sphinxql/internal/schema"
)

// lastInsertIDs is the engine's comma list of ids generated by the last
// insert on a connection.
const lastInsertIDs = "SELECT LAST_INSERT_ID()"

// InsertOne inserts a single row and returns its generated id.
func (s *Store) InsertOne(ctx context.Context, ins queryir.Insert) (int64, error) {
	const op = "store.InsertOne"

	if len(ins.Rows) != 1 {
		return 0, errs.InvalidArgument(op, "expected 1 row, got %d", len(ins.Rows))
	}
	stmt, err := s.compiler.Compile(ins)
	if err != nil {
		return 0, err
	}
	res, err := s.exec(ctx, s.db, stmt)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read inserted id: %w", err)
	}
	return id, nil
}

// InsertMany inserts rows with one statement and returns the generated
// ids in insertion order.
//
// The ids of a multi-row insert are read with SELECT LAST_INSERT_ID() on
// the same connection as the insert.
func (s *Store) InsertMany(ctx context.Context, ins queryir.Insert) ([]int64, error) {
	if len(ins.Rows) == 1 {
		id, err := s.InsertOne(ctx, ins)
		if err != nil {
			return nil, err
		}
		return []int64{id}, nil
	}

	stmt, err := s.compiler.Compile(ins)
	if err != nil {
		return nil, err
	}

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close()

	if _, err := s.exec(ctx, conn, stmt); err != nil {
		return nil, err
	}

	var ids []int64
	idStmt := querysql.Statement{Kind: querysql.KindSelect, SQL: lastInsertIDs}
	err = s.query(ctx, conn, idStmt, func(r *sql.Rows) error {
		var raw any
		if err := r.Scan(&raw); err != nil {
			return fmt.Errorf("scan inserted ids: %w", err)
		}
		parsed, err := codec.ParseInsertIDs(raw, len(ins.Rows))
		if err != nil {
			return err
		}
		ids = parsed
		return nil
	})
	if err != nil {
		return nil, err
	}
	if ids == nil {
		return nil, fmt.Errorf("%s returned no row", lastInsertIDs)
	}
	return ids, nil
}

// Update runs an update, or the full-row REPLACE it is rewritten into,
// and returns the number of affected rows.
func (s *Store) Update(ctx context.Context, upd queryir.Update) (int64, error) {
	return s.execAffected(ctx, upd)
}

// Delete runs a filtered delete and returns the number of deleted rows.
func (s *Store) Delete(ctx context.Context, del queryir.Delete) (int64, error) {
	return s.execAffected(ctx, del)
}

// Truncate empties each table in order.
func (s *Store) Truncate(ctx context.Context, tables ...string) error {
	for _, table := range tables {
		if _, err := s.execAffected(ctx, queryir.Truncate{Table: table}); err != nil {
			return fmt.Errorf("truncate %s: %w", table, err)
		}
	}
	return nil
}

// CreateTable creates t and, when a cluster is configured, creates the
// cluster unless it exists and adds t to it.
func (s *Store) CreateTable(ctx context.Context, t schema.Table) error {
	if _, err := s.execAffected(ctx, queryir.CreateTable{Table: t}); err != nil {
		return err
	}
	if stmt, ok := s.compiler.ClusterCreate(); ok {
		if _, err := s.exec(ctx, s.db, stmt); err != nil {
			if !clusterExists(err) {
				return fmt.Errorf("create cluster: %w", err)
			}
			s.logger.DebugContext(ctx, "cluster exists", "cluster", s.compiler.Quoter().Cluster)
		}
	}
	if stmt, ok := s.compiler.ClusterAdd(t.Name); ok {
		if _, err := s.exec(ctx, s.db, stmt); err != nil {
			return fmt.Errorf("add %s to cluster: %w", t.Name, err)
		}
	}
	return nil
}

func (s *Store) execAffected(ctx context.Context, q queryir.Query) (int64, error) {
	stmt, err := s.compiler.Compile(q)
	if err != nil {
		return 0, err
	}
	res, err := s.exec(ctx, s.db, stmt)
	if err != nil || res == nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("read affected rows: %w", err)
	}
	return n, nil
}

// clusterExists reports the engine error for a CREATE CLUSTER on an
// existing cluster.
func clusterExists(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "already exists")
}
