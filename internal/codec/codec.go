// Package codec converts between typed Go values and the engine's wire
// representation of column values.
//
// Mapping per wire type:
//
//	timestamp   time.Time        <-> unix seconds, UTC
//	multi       []uint32         <-> Tuple out, "1,2,3" in
//	multi64     []int64          <-> Tuple out, "1,2,3" in
//	json        any              <-> canonical JSON text, nil <-> NULL
//	bool        bool             <-> 1 / 0
//	uint/int    int64            <-> integer
//	bigint      int64            <-> integer
//	float       float64          <-> float
//	text/string string           <-> string
package codec

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/roach88/sphinxql/internal/schema"
)

// Tuple is an inline value list such as a multi-value attribute. The
// statement compiler expands it to (?, ?, ...) with one param per element.
type Tuple []any

// Encode converts v for writing into column c.
func Encode(c schema.Column, v any) (any, error) {
	if t, ok := v.(Tuple); ok {
		return t, nil
	}
	switch c.Type {
	case schema.Timestamp:
		return encodeTimestamp(c.Name, v)
	case schema.Multi, schema.Multi64:
		return encodeMulti(c, v)
	case schema.JSON:
		if v == nil {
			return nil, nil
		}
		b, err := MarshalJSON(v)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", c.Name, err)
		}
		return string(b), nil
	case schema.Bool:
		switch b := v.(type) {
		case bool:
			if b {
				return int64(1), nil
			}
			return int64(0), nil
		default:
			return v, nil
		}
	case schema.Text, schema.StoredText:
		// Indexed fields cannot be NULL.
		if v == nil {
			return "", nil
		}
		return v, nil
	default:
		return v, nil
	}
}

func encodeTimestamp(column string, v any) (any, error) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC().Unix(), nil
	case *time.Time:
		if t == nil {
			return nil, nil
		}
		return t.UTC().Unix(), nil
	case int, int32, int64, uint32, uint64, nil:
		return v, nil
	default:
		return nil, fmt.Errorf("column %s: cannot encode %T as timestamp", column, v)
	}
}

func encodeMulti(c schema.Column, v any) (any, error) {
	var out Tuple
	switch list := v.(type) {
	case nil:
		return Tuple{}, nil
	case []uint32:
		for _, x := range list {
			out = append(out, int64(x))
		}
	case []int:
		for _, x := range list {
			out = append(out, int64(x))
		}
	case []int64:
		for _, x := range list {
			out = append(out, x)
		}
	case []uint64:
		for _, x := range list {
			if x > math.MaxInt64 {
				return nil, fmt.Errorf("column %s: value %d overflows int64", c.Name, x)
			}
			out = append(out, int64(x))
		}
	case []any:
		out = append(out, list...)
	default:
		return nil, fmt.Errorf("column %s: cannot encode %T as %s", c.Name, v, c.Type)
	}
	if c.Type == schema.Multi {
		for _, x := range out {
			if n, ok := x.(int64); ok && (n < 0 || n > math.MaxUint32) {
				return nil, fmt.Errorf("column %s: value %d out of uint32 range", c.Name, n)
			}
		}
	}
	if out == nil {
		out = Tuple{}
	}
	return out, nil
}

// Decode converts a raw driver value read from column c.
func Decode(c schema.Column, raw any) (any, error) {
	switch c.Type {
	case schema.Timestamp:
		if raw == nil {
			return nil, nil
		}
		n, err := toInt64(raw)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", c.Name, err)
		}
		return time.Unix(n, 0).UTC(), nil
	case schema.Multi:
		return decodeMulti32(c.Name, raw)
	case schema.Multi64:
		return decodeMulti64(c.Name, raw)
	case schema.JSON:
		s := toString(raw)
		if s == "" {
			return nil, nil
		}
		v, err := UnmarshalJSON([]byte(s))
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", c.Name, err)
		}
		return v, nil
	case schema.Bool:
		if raw == nil {
			return false, nil
		}
		if b, ok := raw.(bool); ok {
			return b, nil
		}
		n, err := toInt64(raw)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", c.Name, err)
		}
		return n != 0, nil
	case schema.Uint, schema.Int, schema.Bigint:
		if raw == nil {
			return int64(0), nil
		}
		n, err := toInt64(raw)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", c.Name, err)
		}
		return n, nil
	case schema.Float:
		if raw == nil {
			return float64(0), nil
		}
		f, err := toFloat64(raw)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", c.Name, err)
		}
		return f, nil
	default:
		return toString(raw), nil
	}
}

func decodeMulti32(column string, raw any) ([]uint32, error) {
	parts := splitList(toString(raw))
	out := make([]uint32, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.ParseUint(p, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("column %s: invalid multi value %q: %w", column, p, err)
		}
		out = append(out, uint32(n))
	}
	return out, nil
}

func decodeMulti64(column string, raw any) ([]int64, error) {
	parts := splitList(toString(raw))
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("column %s: invalid multi64 value %q: %w", column, p, err)
		}
		out = append(out, n)
	}
	return out, nil
}

// splitList splits a comma list, returning nil for an empty string.
func splitList(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func toString(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}

func toInt64(raw any) (int64, error) {
	switch v := raw.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case uint64:
		if v > math.MaxInt64 {
			return 0, fmt.Errorf("value %d overflows int64", v)
		}
		return int64(v), nil
	case float64:
		return int64(v), nil
	case []byte, string:
		n, err := strconv.ParseInt(strings.TrimSpace(toString(v)), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid integer %q: %w", toString(v), err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("cannot decode %T as integer", raw)
	}
}

func toFloat64(raw any) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case []byte, string:
		f, err := strconv.ParseFloat(strings.TrimSpace(toString(v)), 64)
		if err != nil {
			return 0, fmt.Errorf("invalid float %q: %w", toString(v), err)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("cannot decode %T as float", raw)
	}
}
