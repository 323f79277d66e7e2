package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/roach88/sphinxql/internal/codec"
	"github.com/roach88/sphinxql/internal/errs"
)

// Process exit codes.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // a query failed to compile or the engine rejected it
	ExitCommandError = 2 // bad arguments, unreadable input, unreachable engine
)

// ExitError ends a command with Code after its problem has been reported.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}

// NewExitError returns an ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// Response is the JSON envelope written by every command in json format.
type Response struct {
	Status string   `json:"status"` // "ok" or "error"
	Data   any      `json:"data,omitempty"`
	Error  *Problem `json:"error,omitempty"`
}

// Problem describes why a command failed. Problems raised by a query
// document also name the document and, for compile errors, the error
// category.
type Problem struct {
	Code     string `json:"code"` // E001, E201, ...
	Message  string `json:"message"`
	Query    int    `json:"query,omitempty"` // 1-based document index
	Table    string `json:"table,omitempty"`
	Category string `json:"category,omitempty"` // INVALID_ARGUMENT, UNSUPPORTED, ...
}

// text renders p on one line.
func (p Problem) text() string {
	if p.Query == 0 {
		return fmt.Sprintf("Error [%s]: %s", p.Code, p.Message)
	}
	return fmt.Sprintf("Error [%s]: query %d (%s): %s", p.Code, p.Query, p.Table, p.Message)
}

// OutputFormatter writes command results as text or as a JSON Response.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // verbose output; Writer when nil
	Verbose   bool
}

func (f *OutputFormatter) json() bool {
	return f.Format == "json"
}

// Success writes data. Text mode prints it with its default format.
func (f *OutputFormatter) Success(data any) error {
	if f.json() {
		return json.NewEncoder(f.Writer).Encode(Response{Status: "ok", Data: data})
	}
	_, err := fmt.Fprintln(f.Writer, data)
	return err
}

// Report writes p. Text mode adds the category with --verbose.
func (f *OutputFormatter) Report(p Problem) error {
	if f.json() {
		return json.NewEncoder(f.Writer).Encode(Response{Status: "error", Error: &p})
	}
	fmt.Fprintln(f.Writer, p.text())
	if f.Verbose && p.Category != "" {
		fmt.Fprintf(f.Writer, "Category: %s\n", p.Category)
	}
	return nil
}

// Statement writes a compiled statement as an SQL script line followed by
// its parameters as a JSON comment. Statements known to match nothing are
// written as a comment only.
func (f *OutputFormatter) Statement(s StatementOutput) error {
	if s.Empty {
		fmt.Fprintf(f.Writer, "-- %s: matches nothing, not executed\n", s.Table)
		return nil
	}
	fmt.Fprintf(f.Writer, "%s;\n", s.SQL)
	if len(s.Params) == 0 {
		return nil
	}
	params, err := codec.MarshalJSON(s.Params)
	if err != nil {
		return f.fail(ExitFailure, ErrCodeCompile, fmt.Sprintf("encoding params: %v", err))
	}
	fmt.Fprintf(f.Writer, "-- params: %s\n", params)
	return nil
}

// Result writes the outcome of one executed document. Rows are printed as
// canonical JSON, one per line.
func (f *OutputFormatter) Result(r ExecResult) error {
	switch {
	case r.Count != nil:
		fmt.Fprintf(f.Writer, "%s: %d match(es)\n", r.Table, *r.Count)
	case r.Affected != nil:
		fmt.Fprintf(f.Writer, "%s: %d document(s) affected by %s\n", r.Table, *r.Affected, r.Op)
	default:
		fmt.Fprintf(f.Writer, "%s: %d row(s)\n", r.Table, len(r.Rows))
		for _, row := range r.Rows {
			line, err := codec.MarshalJSON(map[string]any(row))
			if err != nil {
				return f.fail(ExitFailure, ErrCodeExecute, fmt.Sprintf("encoding row: %v", err))
			}
			fmt.Fprintf(f.Writer, "  %s\n", line)
		}
	}
	return nil
}

// VerboseLog writes a diagnostic line with --verbose. It goes to ErrWriter
// so json output stays parseable.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}

// fail reports a command problem and returns the ExitError ending the
// command.
func (f *OutputFormatter) fail(exitCode int, code, message string) error {
	return f.report(exitCode, Problem{Code: code, Message: message})
}

// failQuery reports the failure of document index on table. Errors
// carrying an errs code are compile errors; anything else came from the
// engine.
func (f *OutputFormatter) failQuery(index int, table string, err error) error {
	p := Problem{Code: ErrCodeExecute, Message: err.Error(), Query: index + 1, Table: table}
	if code := errs.CodeOf(err); code != "" {
		p.Code, p.Category = ErrCodeCompile, string(code)
	}
	return f.report(ExitFailure, p)
}

func (f *OutputFormatter) report(exitCode int, p Problem) error {
	_ = f.Report(p)
	return NewExitError(exitCode, p.text())
}
