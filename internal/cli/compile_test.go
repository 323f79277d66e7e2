package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const searchQuery = `
table: post
match: [hello]
filter:
  views__gte: 10
`

func TestCompile_Text(t *testing.T) {
	queries := writeFile(t, "queries.yaml", searchQuery)

	stdout, _, code := runCLI("compile", queries, "--database", "blog")
	require.Equal(t, ExitSuccess, code, stdout)

	assert.Equal(t,
		"SELECT *, (`views` >= ?) AS `__where__` FROM `blog__post` WHERE __where__ = ? AND MATCH(?) LIMIT 2147483647;\n"+
			"-- params: [10,true,\"(hello)\"]\n",
		stdout)
}

func TestCompile_EmptyQuery(t *testing.T) {
	queries := writeFile(t, "queries.yaml", `
table: post
filter:
  pk__in: []
---
table: post
op: count
`)

	stdout, _, code := runCLI("compile", queries)
	require.Equal(t, ExitSuccess, code, stdout)

	assert.Contains(t, stdout, "-- post: matches nothing, not executed\n")
	assert.Contains(t, stdout, "SELECT COUNT(*) FROM `post`;\n")
}

func TestCompile_JSON(t *testing.T) {
	queries := writeFile(t, "queries.yaml", searchQuery)

	stdout, _, code := runCLI("compile", queries, "--format", "json")
	require.Equal(t, ExitSuccess, code, stdout)

	var resp struct {
		Status string            `json:"status"`
		Data   []StatementOutput `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "post", resp.Data[0].Table)
	assert.Equal(t, "select", resp.Data[0].Kind)
	assert.Contains(t, resp.Data[0].SQL, "MATCH(?)")
	assert.Equal(t, []any{float64(10), true, "(hello)"}, resp.Data[0].Params)
	assert.False(t, resp.Data[0].Empty)
}

func TestCompile_OutputFile(t *testing.T) {
	queries := writeFile(t, "queries.yaml", searchQuery)
	out := filepath.Join(t.TempDir(), "statements.json")

	stdout, _, code := runCLI("compile", queries, "-o", out)
	require.Equal(t, ExitSuccess, code, stdout)
	assert.Contains(t, stdout, "Wrote 1 statement(s) to "+out)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var statements []StatementOutput
	require.NoError(t, json.Unmarshal(data, &statements))
	require.Len(t, statements, 1)
	assert.Contains(t, statements[0].SQL, "FROM `post`")
}

func TestCompile_WithSchema(t *testing.T) {
	schemaPath := writeFile(t, "schema.cue", postSchema)
	queries := writeFile(t, "queries.yaml", `
table: post
values: [pk, title]
filter:
  views__gte: 10
`)

	stdout, _, code := runCLI("compile", queries, "--schema", schemaPath)
	require.Equal(t, ExitSuccess, code, stdout)
	assert.Contains(t, stdout, "SELECT `id`, `title`, (`views` >= ?) AS `__where__` FROM `post`")
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name     string
		queries  string
		args     []string
		wantCode int
		wantOut  string
	}{
		{
			name:     "compile error",
			queries:  "table: post\nfilter:\n  pk__in: 3\n",
			wantCode: ExitFailure,
			wantOut:  "Error [E201]: query 1 (post):",
		},
		{
			name:     "second document fails",
			queries:  "table: post\n---\ntable: post\noffset: -1\n",
			wantCode: ExitCommandError,
			wantOut:  "Error [E007]:",
		},
		{
			name:     "unknown field",
			queries:  "table: post\nwhere: 1\n",
			wantCode: ExitCommandError,
			wantOut:  "Error [E007]:",
		},
		{
			name:     "missing schema",
			queries:  searchQuery,
			args:     []string{"--schema", "does-not-exist.cue"},
			wantCode: ExitCommandError,
			wantOut:  "Error [E005]: schema not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			queries := writeFile(t, "queries.yaml", tt.queries)
			args := append([]string{"compile", queries}, tt.args...)

			stdout, _, code := runCLI(args...)
			assert.Equal(t, tt.wantCode, code)
			assert.Contains(t, stdout, tt.wantOut)
		})
	}
}

func TestCompile_MissingQueryFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.yaml")

	stdout, _, code := runCLI("compile", missing)
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stdout, "Error [E005]: query file not found")
}

func TestCompile_UnknownColumnWithSchema(t *testing.T) {
	schemaPath := writeFile(t, "schema.cue", postSchema)
	queries := writeFile(t, "queries.yaml", "table: post\nfilter:\n  rating__gt: 3\n")

	stdout, _, code := runCLI("compile", queries, "--schema", schemaPath, "--format", "json", "-v")
	assert.Equal(t, ExitFailure, code)

	var resp Response
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeCompile, resp.Error.Code)
	assert.Equal(t, 1, resp.Error.Query)
	assert.Equal(t, "post", resp.Error.Table)
	assert.Equal(t, "INVALID_ARGUMENT", resp.Error.Category)
	assert.Contains(t, resp.Error.Message, "unknown column")
}
