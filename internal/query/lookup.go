package query

import (
	"reflect"
	"strings"

	"github.com/roach88/sphinxql/internal/errs"
	"github.com/roach88/sphinxql/internal/queryir"
)

// PK aliases the primary key column in lookups and order keys.
const PK = "pk"

// lookupOps maps lookup suffixes to comparison operators.
var lookupOps = map[string]queryir.Op{
	"exact": queryir.Exact,
	"gt":    queryir.GT,
	"gte":   queryir.GTE,
	"lt":    queryir.LT,
	"lte":   queryir.LTE,
}

// Lookup parses "<column>[__<suffix>]" into a predicate. Suffixes are
// exact (the default), gt, gte, lt, lte and in. An in value is a slice or
// a QuerySet; a QuerySet becomes a subquery, which the engine rejects at
// compile time.
//
//	Lookup("attr_uint__gte", 5)      // attr_uint >= 5
//	Lookup("id__in", []int{1, 2})    // IN(id, 1, 2)
func Lookup(key string, value any) (queryir.Predicate, error) {
	const op = "query.Lookup"

	column, suffix := key, "exact"
	if i := strings.LastIndex(key, "__"); i > 0 {
		if _, known := lookupOps[key[i+2:]]; known || key[i+2:] == "in" {
			column, suffix = key[:i], key[i+2:]
		}
	}
	if column == "" {
		return nil, errs.InvalidArgument(op, "lookup %q has no column", key)
	}

	if suffix != "in" {
		return queryir.Compare{Column: column, Op: lookupOps[suffix], Value: value}, nil
	}

	switch v := value.(type) {
	case QuerySet:
		sel, err := v.Query()
		if err != nil {
			return nil, err
		}
		return queryir.In{Column: column, Query: sel}, nil
	case *QuerySet:
		return Lookup(key, *v)
	}
	values, ok := toList(value)
	if !ok {
		return nil, errs.InvalidArgument(op, "lookup %q needs a list, got %T", key, value)
	}
	return queryir.In{Column: column, Values: values}, nil
}

// toList converts any slice or array to []any.
func toList(v any) ([]any, bool) {
	if list, ok := v.([]any); ok {
		return list, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
