package compiler

import (
	"fmt"
	"regexp"

	"github.com/roach88/sphinxql/internal/schema"
	"github.com/roach88/sphinxql/internal/querysql"
)

// Validation error codes (E100-E199)
const (
	ErrTableNameInvalid    = "E101" // table name missing or not an identifier
	ErrTableNoColumns      = "E102" // at least one column required
	ErrColumnNameInvalid   = "E103" // column name missing or not an identifier
	ErrInvalidColumnType   = "E104" // unknown wire type
	ErrDuplicateName       = "E105" // duplicate column name
	ErrPrimaryKeyType      = "E106" // primary key must be an integer
	ErrMultiplePrimaryKeys = "E107" // more than one primary key
	ErrReservedColumn      = "E108" // column name reserved by the compiler
	ErrInvalidIndexOption  = "E110" // index option out of range
)

// ValidationError represents a table validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// reservedColumns are generated by the statement compiler.
var reservedColumns = map[string]bool{
	querysql.WhereAlias: true,
	querysql.StubColumn: true,
}

// Validate checks a table definition. Returns all errors found (does not
// fail-fast).
func Validate(t schema.Table) []ValidationError {
	var errs []ValidationError

	if !identPattern.MatchString(t.Name) {
		errs = append(errs, ValidationError{
			Field:   "name",
			Message: fmt.Sprintf("table name %q must be an identifier", t.Name),
			Code:    ErrTableNameInvalid,
		})
	}

	if len(t.Columns) == 0 {
		errs = append(errs, ValidationError{
			Field:   "columns",
			Message: "at least one column is required",
			Code:    ErrTableNoColumns,
		})
	}

	seen := make(map[string]bool, len(t.Columns))
	primaryKeys := 0
	for i, col := range t.Columns {
		field := fmt.Sprintf("columns[%d]", i)

		if !identPattern.MatchString(col.Name) {
			errs = append(errs, ValidationError{
				Field:   field + ".name",
				Message: fmt.Sprintf("column name %q must be an identifier", col.Name),
				Code:    ErrColumnNameInvalid,
			})
		}
		if reservedColumns[col.Name] {
			errs = append(errs, ValidationError{
				Field:   field + ".name",
				Message: fmt.Sprintf("column name %q is reserved", col.Name),
				Code:    ErrReservedColumn,
			})
		}
		if seen[col.Name] {
			errs = append(errs, ValidationError{
				Field:   field + ".name",
				Message: fmt.Sprintf("duplicate column name: %q", col.Name),
				Code:    ErrDuplicateName,
			})
		}
		seen[col.Name] = true

		if !schema.ValidWireTypes[col.Type] {
			errs = append(errs, ValidationError{
				Field:   field + ".type",
				Message: fmt.Sprintf("invalid type %q for column %q", col.Type, col.Name),
				Code:    ErrInvalidColumnType,
			})
		}

		if col.PrimaryKey {
			primaryKeys++
			if col.Type != schema.Bigint && col.Type != schema.Uint && col.Type != schema.Int {
				errs = append(errs, ValidationError{
					Field:   field + ".primary_key",
					Message: fmt.Sprintf("primary key %q must be an integer column, got %s", col.Name, col.Type),
					Code:    ErrPrimaryKeyType,
				})
			}
		}
	}

	if primaryKeys > 1 {
		errs = append(errs, ValidationError{
			Field:   "columns",
			Message: fmt.Sprintf("%d primary keys declared, at most 1 allowed", primaryKeys),
			Code:    ErrMultiplePrimaryKeys,
		})
	}

	if t.Options.MinPrefixLen < 0 {
		errs = append(errs, ValidationError{
			Field:   "options.min_prefix_len",
			Message: "must not be negative",
			Code:    ErrInvalidIndexOption,
		})
	}

	return errs
}
