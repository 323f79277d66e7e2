package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/sphinxql/internal/queryir"
	"github.com/roach88/sphinxql/internal/querysql"
	"github.com/roach88/sphinxql/internal/schema"
	"github.com/roach88/sphinxql/internal/store"
)

// SchemaOptions holds flags for the schema command.
type SchemaOptions struct {
	*RootOptions
	Apply  bool
	DSN    string
	Driver string
}

// TableOutput describes one compiled table.
type TableOutput struct {
	Name       string            `json:"name"`
	PrimaryKey string            `json:"primary_key"`
	Columns    []schema.Column   `json:"columns"`
	Statements []StatementOutput `json:"statements"`
}

// NewSchemaCommand creates the schema command.
func NewSchemaCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SchemaOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "schema [schema.cue | dir]",
		Short: "Compile CUE table definitions to CREATE TABLE statements",
		Long: `Compile CUE table definitions and print their CREATE TABLE statements.

The schema path defaults to --schema. With --apply the tables are created
on the engine at --dsn. With --cluster the cluster is created when missing
and each table is added to it.

Example:
  sphinxql schema ./schema.cue --database blog
  sphinxql schema ./schema --apply --dsn 'tcp(127.0.0.1:9306)/?interpolateParams=true'`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := opts.Schema
			if len(args) == 1 {
				path = args[0]
			}
			return runSchema(opts, path, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Apply, "apply", false, "create the tables on the engine")
	cmd.Flags().StringVar(&opts.DSN, "dsn", "", "engine DSN (required with --apply)")
	cmd.Flags().StringVar(&opts.Driver, "driver", "mysql", "database/sql driver name")

	return cmd
}

func runSchema(opts *SchemaOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	if path == "" {
		return formatter.fail(ExitCommandError, ErrCodeNotFound, "no schema given: pass a path or --schema")
	}
	if opts.Apply && opts.DSN == "" {
		return formatter.fail(ExitCommandError, ErrCodeConnect, "--apply requires --dsn")
	}

	catalog, err := LoadCatalog(path)
	if err != nil {
		return loadFailure(formatter, err)
	}

	c := querysql.NewCompiler(querysql.WithQuoter(opts.quoter()))
	tables := make([]TableOutput, 0, len(catalog.Tables()))
	for _, t := range catalog.Tables() {
		formatter.VerboseLog("Compiling table: %s", t.Name)
		out, err := tableOutput(c, t)
		if err != nil {
			return formatter.fail(ExitCommandError, ErrCodeSchema, fmt.Sprintf("table %s: %v", t.Name, err))
		}
		tables = append(tables, out)
	}

	if opts.Apply {
		if err := applySchema(opts, cmd, formatter, catalog); err != nil {
			return err
		}
	}

	if formatter.Format == "json" {
		return formatter.Success(tables)
	}
	for _, t := range tables {
		fmt.Fprintf(formatter.Writer, "-- %s: %d column(s), primary key %s\n", t.Name, len(t.Columns), t.PrimaryKey)
		for _, s := range t.Statements {
			if err := formatter.Statement(s); err != nil {
				return err
			}
		}
	}
	if opts.Apply {
		fmt.Fprintf(formatter.Writer, "Created %d table(s)\n", len(tables))
	}
	return nil
}

func tableOutput(c *querysql.Compiler, t schema.Table) (TableOutput, error) {
	stmt, err := c.Compile(queryir.CreateTable{Table: t})
	if err != nil {
		return TableOutput{}, err
	}
	out := TableOutput{
		Name:       t.Name,
		PrimaryKey: t.PrimaryKey().Name,
		Columns:    t.Columns,
		Statements: []StatementOutput{statementOutput(t.Name, stmt)},
	}
	if create, ok := c.ClusterCreate(); ok {
		out.Statements = append(out.Statements, statementOutput(t.Name, create))
	}
	if add, ok := c.ClusterAdd(t.Name); ok {
		out.Statements = append(out.Statements, statementOutput(t.Name, add))
	}
	return out, nil
}

func applySchema(opts *SchemaOptions, cmd *cobra.Command, formatter *OutputFormatter, catalog *schema.Catalog) error {
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())
	ctx := commandContext(cmd)

	logger.Info("connecting to engine", "driver", opts.Driver)
	st, err := store.Open(ctx, opts.Driver, opts.DSN, store.WithLogger(logger), store.WithQuoter(opts.quoter()))
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeConnect, err.Error())
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing connection", "error", closeErr)
		}
	}()

	var created []string
	for _, t := range catalog.Tables() {
		if err := st.CreateTable(ctx, t); err != nil {
			message := fmt.Sprintf("failed to create table %s (created: %s): %v", t.Name, strings.Join(created, ", "), err)
			return formatter.report(ExitFailure, Problem{Code: ErrCodeExecute, Message: message, Table: t.Name})
		}
		created = append(created, t.Name)
		logger.Info("table created", "table", t.Name)
	}
	return nil
}

// newLogger configures structured logging on w, at debug level with
// --verbose.
func newLogger(opts *RootOptions, w io.Writer) *slog.Logger {
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: logLevel,
	})
	return slog.New(handler)
}

// commandContext returns the command's context, or a background context
// when the command runs without one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
