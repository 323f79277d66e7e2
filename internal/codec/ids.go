package codec

import (
	"fmt"
	"strconv"
)

// ParseInsertIDs decodes the comma-separated id list returned by
// SELECT LAST_INSERT_ID() after a multi-row insert. Ids keep insertion
// order. want is the number of inserted rows; a mismatch is an error.
func ParseInsertIDs(raw any, want int) ([]int64, error) {
	parts := splitList(toString(raw))
	if len(parts) != want {
		return nil, fmt.Errorf("last insert id list has %d ids, want %d", len(parts), want)
	}
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid inserted id %q: %w", p, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// FormatInsertIDs is the inverse of ParseInsertIDs.
func FormatInsertIDs(ids []int64) string {
	b := make([]byte, 0, len(ids)*8)
	for i, id := range ids {
		if i > 0 {
			b = append(b, ',')
		}
		b = strconv.AppendInt(b, id, 10)
	}
	return string(b)
}
