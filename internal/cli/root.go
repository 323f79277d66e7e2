package cli

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/sphinxql/internal/querysql"
	"github.com/roach88/sphinxql/internal/schema"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose  bool
	Format   string // "json" | "text"
	Schema   string // CUE schema file or directory
	Database string // table name prefix
	Cluster  string // replication cluster
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the sphinxql CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "sphinxql",
		Short: "Compile and run Manticore search queries",
		Long: `sphinxql compiles search queries written as YAML documents into
SphinxQL statements and runs them against a Manticore or Sphinx engine.

Table definitions are written in CUE and enable column checks, value
encoding and the UPDATE to REPLACE rewrite.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Schema, "schema", "", "CUE schema file or directory")
	cmd.PersistentFlags().StringVar(&opts.Database, "database", "", "table name prefix (<database>__<table>)")
	cmd.PersistentFlags().StringVar(&opts.Cluster, "cluster", "", "replication cluster name")

	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewSchemaCommand(opts))
	cmd.AddCommand(NewExecCommand(opts))

	return cmd
}

// Run executes the CLI with args and returns the process exit code.
// Errors already reported by a command are not printed again; usage errors
// from cobra are printed to stderr and exit with ExitCommandError.
func Run(args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.Execute()
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return ExitCommandError
}

// quoter returns the identifier quoter for the database and cluster flags.
func (o *RootOptions) quoter() querysql.Quoter {
	return querysql.Quoter{Database: o.Database, Cluster: o.Cluster}
}

// catalog loads the --schema tables. It returns nil when no schema is set.
func (o *RootOptions) catalog() (*schema.Catalog, error) {
	if o.Schema == "" {
		return nil, nil
	}
	return LoadCatalog(o.Schema)
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
