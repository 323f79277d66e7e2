package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsSentinel(t *testing.T) {
	err := InvalidArgument("sphinxql.NewField", "no field name given")

	assert.True(t, errors.Is(err, ErrInvalidArgument))
	assert.False(t, errors.Is(err, ErrUnsupported))
	assert.False(t, errors.Is(err, ErrInvalidOperation))
}

func TestError_WrappedHelpers(t *testing.T) {
	testCases := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"invalid argument", InvalidArgument("op", "bad"), IsInvalidArgument},
		{"invalid operation", InvalidOperation("op", "bad"), IsInvalidOperation},
		{"unsupported", Unsupported("op", "bad"), IsUnsupported},
		{"empty result", EmptyResultSet("op"), IsEmptyResultSet},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			wrapped := fmt.Errorf("compile select: %w", tc.err)
			assert.True(t, tc.check(wrapped))
		})
	}
}

func TestError_Message(t *testing.T) {
	err := Unsupported("querysql.compileIn", "subquery right-hand side")
	assert.Equal(t, "querysql.compileIn: UNSUPPORTED: subquery right-hand side", err.Error())

	bare := &Error{Code: CodeEmptyResultSet}
	assert.Equal(t, "EMPTY_RESULT_SET: EMPTY_RESULT_SET", bare.Error())
}

func TestCodeOf_NonQueryError(t *testing.T) {
	assert.Equal(t, Code(""), CodeOf(errors.New("boom")))
	assert.False(t, IsUnsupported(nil))
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("driver failure")
	err := &Error{Code: CodeUnsupported, Op: "store.Exec", Message: "exec", Err: cause}

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "driver failure")
}
