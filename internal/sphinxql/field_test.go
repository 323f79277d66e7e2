package sphinxql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sphinxql/internal/errs"
)

func mustField(f Field, err error) Field {
	if err != nil {
		panic(err)
	}
	return f
}

func TestField_Render(t *testing.T) {
	tests := []struct {
		name  string
		build func() (Field, error)
		want  string
	}{
		{
			name:  "keyword shortcut",
			build: func() (Field, error) { return FieldOf("sphinx_field", "hello") },
			want:  "(@sphinx_field (hello))",
		},
		{
			name:  "several fields",
			build: func() (Field, error) { return F("f1", "f2", T("t")) },
			want:  "(@(f1,f2) (t))",
		},
		{
			name:  "string expression",
			build: func() (Field, error) { return F("sphinx_field", "other_field", "hello") },
			want:  "(@(sphinx_field,other_field) (hello))",
		},
		{
			name:  "excluded",
			build: func() (Field, error) { return Exclude("f1", "t") },
			want:  "(@!f1 (t))",
		},
		{
			name:  "excluded term",
			build: func() (Field, error) { return Exclude("other_field", T("wat")) },
			want:  "(@!other_field (wat))",
		},
		{
			name: "excluded node",
			build: func() (Field, error) {
				return Exclude("sphinx_field", "other_field", And(T("text"), Not(T("exclude"))))
			},
			want: "(@!(sphinx_field,other_field) (text) & !(exclude))",
		},
		{
			name:  "phrase",
			build: func() (Field, error) { return FieldOf("sphinx_field", P("phrase search")) },
			want:  `(@sphinx_field ("phrase search"))`,
		},
		{
			name:  "or node",
			build: func() (Field, error) { return F("title", Or(T("a"), T("b"))) },
			want:  "(@title (a) | (b))",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := tt.build()
			require.NoError(t, err)
			assert.Equal(t, tt.want, Format(f))
		})
	}
}

func TestField_Accessors(t *testing.T) {
	f := mustField(Exclude("a", "b", "text"))

	assert.Equal(t, []string{"a", "b"}, f.Names())
	assert.Equal(t, T("text"), f.Expr())
	assert.True(t, f.Excluded())

	names := f.Names()
	names[0] = "changed"
	assert.Equal(t, []string{"a", "b"}, f.Names())
}

func TestField_NotFlipsExclusion(t *testing.T) {
	f := mustField(F("title", "x"))

	negated := Not(f)
	assert.Equal(t, "(@!title (x))", Format(negated))
	assert.Equal(t, f, Not(negated))
}

func TestNewField_Errors(t *testing.T) {
	nested := mustField(F("other_field", "value"))

	tests := []struct {
		name   string
		args   []any
		kwargs []Pair
	}{
		{"nothing", nil, nil},
		{"name only", []any{"sphinx_field"}, nil},
		{"args and kwargs", []any{"sphinx_field", "text"}, []Pair{{Field: "other_field", Expr: "two"}}},
		{"two kwargs", nil, []Pair{{Field: "sphinx_field", Expr: "one"}, {Field: "other_field", Expr: "two"}}},
		{"nested field", nil, []Pair{{Field: "sphinx_field", Expr: nested}}},
		{"nested field pointer", []any{"sphinx_field", &nested}, nil},
		{"field inside node", []any{"sphinx_field", And(T("a"), nested)}, nil},
		{"unsupported expression", []any{"sphinx_field", 42}, nil},
		{"missing expression", nil, []Pair{{Field: "sphinx_field"}}},
		{"non-string name", []any{1, "text"}, nil},
		{"invalid name", []any{"bad name", "text"}, nil},
		{"empty name", nil, []Pair{{Field: "", Expr: "text"}}},
		{"leading digit", []any{"1field", "text"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewField(tt.args, tt.kwargs, false)
			require.Error(t, err)
			assert.ErrorIs(t, err, errs.ErrInvalidArgument)
		})
	}
}

func TestIsIdentifier(t *testing.T) {
	assert.True(t, isIdentifier("title"))
	assert.True(t, isIdentifier("_private"))
	assert.True(t, isIdentifier("field_2"))
	assert.False(t, isIdentifier(""))
	assert.False(t, isIdentifier("2field"))
	assert.False(t, isIdentifier("with-dash"))
	assert.False(t, isIdentifier("spa ce"))
}
