package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/sphinxql/internal/codec"
	"github.com/roach88/sphinxql/internal/errs"
	"github.com/roach88/sphinxql/internal/queryir"
	"github.com/roach88/sphinxql/internal/querysql"
	"github.com/roach88/sphinxql/internal/schema"
)

// Row is a decoded result row keyed by column name. The synthetic
// __where__ column is never included.
type Row map[string]any

// Select runs a search query and returns the decoded rows.
//
// Returns an empty slice (not nil) when nothing matches, including for
// queries known to match nothing, which never reach the engine.
func (s *Store) Select(ctx context.Context, sel queryir.Select) ([]Row, error) {
	const op = "store.Select"

	if sel.Count {
		return nil, errs.InvalidArgument(op, "use Count for COUNT(*) queries")
	}
	stmt, err := s.compiler.Compile(sel)
	if err != nil {
		return nil, err
	}

	rows := []Row{}
	var columns []string
	err = s.query(ctx, s.db, stmt, func(r *sql.Rows) error {
		if columns == nil {
			cols, err := r.Columns()
			if err != nil {
				return fmt.Errorf("read columns: %w", err)
			}
			columns = cols
		}
		row, err := scanRow(r, columns, sel.Schema)
		if err != nil {
			return err
		}
		rows = append(rows, row)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Count runs the COUNT(*) form of sel.
func (s *Store) Count(ctx context.Context, sel queryir.Select) (int64, error) {
	sel.Count = true
	sel.Columns = nil
	sel.OrderBy = nil
	stmt, err := s.compiler.Compile(sel)
	if err != nil {
		return 0, err
	}

	var count int64
	err = s.query(ctx, s.db, stmt, func(r *sql.Rows) error {
		columns, err := r.Columns()
		if err != nil {
			return fmt.Errorf("read columns: %w", err)
		}
		raw := make([]any, len(columns))
		dest := make([]any, len(columns))
		for i := range dest {
			dest[i] = &raw[i]
		}
		if err := r.Scan(dest...); err != nil {
			return fmt.Errorf("scan count: %w", err)
		}
		n, err := codec.Decode(schema.Column{Name: "count", Type: schema.Bigint}, raw[0])
		if err != nil {
			return err
		}
		count = n.(int64)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// scanRow scans the current row and decodes each column by the table's
// wire types. Columns unknown to the table are returned as the driver
// produced them, with byte slices converted to strings.
func scanRow(r *sql.Rows, columns []string, table *schema.Table) (Row, error) {
	raw := make([]any, len(columns))
	dest := make([]any, len(columns))
	for i := range dest {
		dest[i] = &raw[i]
	}
	if err := r.Scan(dest...); err != nil {
		return nil, fmt.Errorf("scan row: %w", err)
	}

	row := make(Row, len(columns))
	for i, name := range columns {
		if name == querysql.WhereAlias {
			continue
		}
		if table != nil {
			if col, ok := table.Column(name); ok {
				v, err := codec.Decode(col, raw[i])
				if err != nil {
					return nil, err
				}
				row[name] = v
				continue
			}
		}
		if b, ok := raw[i].([]byte); ok {
			row[name] = string(b)
			continue
		}
		row[name] = raw[i]
	}
	return row, nil
}
