package cli

import (
	"context"
	"fmt"

	_ "github.com/go-sql-driver/mysql" // engine transport: Manticore speaks the MySQL protocol
	"github.com/spf13/cobra"

	"github.com/roach88/sphinxql/internal/queryir"
	"github.com/roach88/sphinxql/internal/store"
)

// ExecOptions holds flags for the exec command.
type ExecOptions struct {
	*RootOptions
	DSN    string
	Driver string
}

// ExecResult is the outcome of one query document.
type ExecResult struct {
	Table    string      `json:"table"`
	Op       string      `json:"op"`
	Rows     []store.Row `json:"rows,omitempty"`
	Count    *int64      `json:"count,omitempty"`
	Affected *int64      `json:"affected,omitempty"`
}

// NewExecCommand creates the exec command.
func NewExecCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExecOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "exec <queries.yaml>",
		Short: "Run query documents against the engine",
		Long: `Run YAML query documents against a Manticore or Sphinx engine.

Selects print their rows, counts the number of matches, and updates and
deletes the number of affected documents. Connect with the MySQL protocol
and interpolateParams=true, which the engine requires.

Example:
  sphinxql exec ./queries.yaml --schema ./schema.cue --dsn 'tcp(127.0.0.1:9306)/?interpolateParams=true'`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExec(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DSN, "dsn", "", "engine DSN (required)")
	cmd.Flags().StringVar(&opts.Driver, "driver", "mysql", "database/sql driver name")
	_ = cmd.MarkFlagRequired("dsn")

	return cmd
}

func runExec(opts *ExecOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())
	ctx := commandContext(cmd)

	catalog, err := opts.catalog()
	if err != nil {
		return loadFailure(formatter, err)
	}
	docs, err := LoadQueries(path)
	if err != nil {
		return loadFailure(formatter, err)
	}
	logger.Debug("queries loaded", "path", path, "documents", len(docs))

	logger.Debug("connecting to engine", "driver", opts.Driver)
	st, err := store.Open(ctx, opts.Driver, opts.DSN, store.WithLogger(logger), store.WithQuoter(opts.quoter()))
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeConnect, err.Error())
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing connection", "error", closeErr)
		}
	}()

	results := make([]ExecResult, 0, len(docs))
	for i, doc := range docs {
		q, err := doc.Build(catalog)
		if err != nil {
			return formatter.failQuery(i, doc.Table, err)
		}
		result, err := execute(ctx, st, doc.Table, q)
		if err != nil {
			return formatter.failQuery(i, doc.Table, err)
		}
		results = append(results, result)
	}

	if formatter.Format == "json" {
		return formatter.Success(results)
	}
	for _, r := range results {
		if err := formatter.Result(r); err != nil {
			return err
		}
	}
	return nil
}

// execute runs one built query on st.
func execute(ctx context.Context, st *store.Store, table string, q queryir.Query) (ExecResult, error) {
	result := ExecResult{Table: table}
	switch q := q.(type) {
	case queryir.Select:
		if q.Count {
			result.Op = "count"
			n, err := st.Count(ctx, q)
			if err != nil {
				return result, err
			}
			result.Count = &n
			return result, nil
		}
		result.Op = "select"
		rows, err := st.Select(ctx, q)
		if err != nil {
			return result, err
		}
		result.Rows = rows
	case queryir.Update:
		result.Op = "update"
		n, err := st.Update(ctx, q)
		if err != nil {
			return result, err
		}
		result.Affected = &n
	case queryir.Delete:
		result.Op = "delete"
		n, err := st.Delete(ctx, q)
		if err != nil {
			return result, err
		}
		result.Affected = &n
	default:
		return result, fmt.Errorf("unsupported query %T", q)
	}
	return result, nil
}
