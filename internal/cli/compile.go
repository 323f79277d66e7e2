package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/sphinxql/internal/querydoc"
	"github.com/roach88/sphinxql/internal/querysql"
	"github.com/roach88/sphinxql/internal/schema"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path
}

// StatementOutput is one compiled statement.
type StatementOutput struct {
	Table  string `json:"table"`
	Kind   string `json:"kind,omitempty"`
	SQL    string `json:"sql,omitempty"`
	Params []any  `json:"params,omitempty"`
	Empty  bool   `json:"empty,omitempty"` // matches nothing, never sent
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <queries.yaml>",
		Short: "Compile query documents to SphinxQL statements",
		Long: `Compile YAML query documents to SphinxQL statements without running them.

Each document in the stream becomes one statement with positional
parameters. Queries known to match nothing are reported as empty.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write statements as JSON to a file")

	return cmd
}

func runCompile(opts *CompileOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	catalog, err := opts.catalog()
	if err != nil {
		return loadFailure(formatter, err)
	}
	docs, err := LoadQueries(path)
	if err != nil {
		return loadFailure(formatter, err)
	}
	formatter.VerboseLog("Loaded %d query document(s) from %s", len(docs), path)

	c := querysql.NewCompiler(querysql.WithQuoter(opts.quoter()))
	statements := make([]StatementOutput, 0, len(docs))
	for i, doc := range docs {
		formatter.VerboseLog("Compiling query %d on %s", i+1, doc.Table)
		out, err := compileDocument(c, catalog, doc)
		if err != nil {
			return formatter.failQuery(i, doc.Table, err)
		}
		statements = append(statements, out)
	}

	if opts.Output != "" {
		if err := writeStatements(statements, opts.Output); err != nil {
			return formatter.fail(ExitCommandError, ErrCodeGeneric, fmt.Sprintf("writing output file: %v", err))
		}
	}

	if formatter.Format == "json" {
		return formatter.Success(statements)
	}
	for _, s := range statements {
		if err := formatter.Statement(s); err != nil {
			return err
		}
	}
	if opts.Output != "" {
		fmt.Fprintf(formatter.Writer, "Wrote %d statement(s) to %s\n", len(statements), opts.Output)
	}
	return nil
}

func compileDocument(c *querysql.Compiler, catalog *schema.Catalog, doc querydoc.Document) (StatementOutput, error) {
	q, err := doc.Build(catalog)
	if err != nil {
		return StatementOutput{}, err
	}
	stmt, err := c.Compile(q)
	if err != nil {
		return StatementOutput{}, err
	}
	return statementOutput(doc.Table, stmt), nil
}

func statementOutput(table string, stmt querysql.Statement) StatementOutput {
	return StatementOutput{
		Table:  table,
		Kind:   string(stmt.Kind),
		SQL:    stmt.SQL,
		Params: stmt.Params,
		Empty:  stmt.Empty,
	}
}

// writeStatements writes the compiled statements as indented JSON.
func writeStatements(statements []StatementOutput, filename string) error {
	data, err := json.MarshalIndent(statements, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling statements: %w", err)
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	return nil
}
