// Package compiler turns CUE table definitions into schema tables.
//
// A schema source declares tables under the top-level "table" field:
//
//	table: post: {
//		columns: {
//			id:        {type: "bigint", primary_key: true}
//			title:     "text"
//			views:     "uint"
//			published: "timestamp"
//		}
//		options: min_prefix_len: 3
//	}
//
// Columns keep their declaration order. A column is either a wire type
// string or a struct with type and primary_key fields.
package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/sphinxql/internal/schema"
)

// CompileSource compiles a CUE schema source into a catalog. filename is
// only used for error positions.
func CompileSource(filename string, src []byte) (*schema.Catalog, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return CompileCatalog(v)
}

// CompileCatalog compiles every table under the "table" field of v.
func CompileCatalog(v cue.Value) (*schema.Catalog, error) {
	tablesVal := v.LookupPath(cue.ParsePath("table"))
	if !tablesVal.Exists() {
		return nil, &CompileError{
			Field:   "table",
			Message: "no tables declared",
			Pos:     v.Pos(),
		}
	}

	iter, err := tablesVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	catalog, _ := schema.NewCatalog()
	for iter.Next() {
		t, err := CompileTable(iter.Value())
		if err != nil {
			return nil, err
		}
		if problems := Validate(*t); len(problems) > 0 {
			return nil, &CompileError{
				Field:   "table." + t.Name,
				Message: problems[0].Error(),
				Pos:     iter.Value().Pos(),
			}
		}
		if err := catalog.Add(*t); err != nil {
			return nil, &CompileError{Field: "table." + t.Name, Message: err.Error(), Pos: iter.Value().Pos()}
		}
	}
	return catalog, nil
}

// CompileTable parses a CUE value into a Table. The table name is the
// value's last path label.
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`table: post: { columns: { title: "text" } }`)
//	t, err := CompileTable(v.LookupPath(cue.ParsePath("table.post")))
func CompileTable(v cue.Value) (*schema.Table, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	t := &schema.Table{}
	labels := v.Path().Selectors()
	if len(labels) > 0 {
		t.Name = labels[len(labels)-1].String()
	}

	columnsVal := v.LookupPath(cue.ParsePath("columns"))
	if !columnsVal.Exists() {
		return nil, &CompileError{
			Field:   fmt.Sprintf("table.%s.columns", t.Name),
			Message: "columns are required",
			Pos:     v.Pos(),
		}
	}
	columns, err := parseColumns(t.Name, columnsVal)
	if err != nil {
		return nil, err
	}
	t.Columns = columns

	optionsVal := v.LookupPath(cue.ParsePath("options"))
	if optionsVal.Exists() {
		opts, err := parseOptions(t.Name, optionsVal)
		if err != nil {
			return nil, err
		}
		t.Options = opts
	}

	return t, nil
}

// parseColumns reads the columns struct in declaration order.
func parseColumns(table string, v cue.Value) ([]schema.Column, error) {
	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var columns []schema.Column
	for iter.Next() {
		name := iter.Label()
		colVal := iter.Value()
		if err := colVal.Err(); err != nil {
			return nil, formatCUEError(err)
		}
		field := fmt.Sprintf("table.%s.columns.%s", table, name)

		col := schema.Column{Name: name}
		switch colVal.IncompleteKind() {
		case cue.StringKind:
			typ, err := colVal.String()
			if err != nil {
				return nil, formatCUEError(err)
			}
			col.Type = schema.WireType(typ)
		case cue.StructKind:
			typeVal := colVal.LookupPath(cue.ParsePath("type"))
			if !typeVal.Exists() {
				return nil, &CompileError{Field: field + ".type", Message: "column type is required", Pos: colVal.Pos()}
			}
			typ, err := typeVal.String()
			if err != nil {
				return nil, formatCUEError(err)
			}
			col.Type = schema.WireType(typ)

			pkVal := colVal.LookupPath(cue.ParsePath("primary_key"))
			if pkVal.Exists() {
				pk, err := pkVal.Bool()
				if err != nil {
					return nil, formatCUEError(err)
				}
				col.PrimaryKey = pk
			}
		default:
			return nil, &CompileError{
				Field:   field,
				Message: fmt.Sprintf("must be a type name or a struct with a type field, got %v", colVal.IncompleteKind()),
				Pos:     colVal.Pos(),
			}
		}

		if !schema.ValidWireTypes[col.Type] {
			return nil, &CompileError{
				Field:   field,
				Message: fmt.Sprintf("unknown column type %q", col.Type),
				Pos:     colVal.Pos(),
			}
		}
		columns = append(columns, col)
	}
	return columns, nil
}

// parseOptions reads the recognized index options.
func parseOptions(table string, v cue.Value) (schema.IndexOptions, error) {
	var opts schema.IndexOptions

	iter, err := v.Fields()
	if err != nil {
		return opts, formatCUEError(err)
	}
	for iter.Next() {
		optVal := iter.Value()
		name := iter.Label()

		if name == "min_prefix_len" {
			n, err := optVal.Int64()
			if err != nil {
				return opts, formatCUEError(err)
			}
			opts.MinPrefixLen = int(n)
			continue
		}

		var dest *string
		switch name {
		case "regexp_filter":
			dest = &opts.RegexpFilter
		case "blend_chars":
			dest = &opts.BlendChars
		case "charset_table":
			dest = &opts.CharsetTable
		default:
			return opts, &CompileError{
				Field:   fmt.Sprintf("table.%s.options.%s", table, name),
				Message: "unknown index option",
				Pos:     optVal.Pos(),
			}
		}
		s, err := optVal.String()
		if err != nil {
			return opts, formatCUEError(err)
		}
		*dest = s
	}
	return opts, nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	list := errors.Errors(err)
	if len(list) == 0 {
		return err
	}

	first := list[0]
	positions := errors.Positions(first)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
