package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sphinxql/internal/testutil"
)

func TestSchema_Text(t *testing.T) {
	schemaPath := writeFile(t, "schema.cue", postSchema)

	stdout, _, code := runCLI("schema", schemaPath)
	require.Equal(t, ExitSuccess, code, stdout)

	assert.Contains(t, stdout, "-- post: 3 column(s), primary key id\n")
	assert.Contains(t, stdout, "CREATE TABLE `post` (`title` text indexed, `views` uint, `meta` json) min_prefix_len = ?;\n")
	assert.Contains(t, stdout, "-- params: [\"2\"]\n")
	assert.NotContains(t, stdout, "ALTER CLUSTER")
}

func TestSchema_DefaultsToSchemaFlag(t *testing.T) {
	schemaPath := writeFile(t, "schema.cue", postSchema)

	stdout, _, code := runCLI("schema", "--schema", schemaPath, "--database", "blog", "--cluster", "main")
	require.Equal(t, ExitSuccess, code, stdout)

	assert.Contains(t, stdout, "CREATE TABLE `blog__post` (")
	assert.Contains(t, stdout, "CREATE CLUSTER `main`;\nALTER CLUSTER `main` ADD `blog__post`;\n")
}

func TestSchema_JSON(t *testing.T) {
	schemaPath := writeFile(t, "schema.cue", postSchema)

	stdout, _, code := runCLI("schema", schemaPath, "--format", "json")
	require.Equal(t, ExitSuccess, code, stdout)

	var resp struct {
		Status string        `json:"status"`
		Data   []TableOutput `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "post", resp.Data[0].Name)
	assert.Equal(t, "id", resp.Data[0].PrimaryKey)
	assert.Len(t, resp.Data[0].Columns, 3)
	require.Len(t, resp.Data[0].Statements, 1)
	assert.Equal(t, "create_table", resp.Data[0].Statements[0].Kind)
}

func TestSchema_Apply(t *testing.T) {
	schemaPath := writeFile(t, "schema.cue", postSchema)
	driverName, dsn, rec := testutil.RecorderDSN(t)

	stdout, stderr, code := runCLI("schema", schemaPath, "--apply", "--driver", driverName, "--dsn", dsn, "--cluster", "main")
	require.Equal(t, ExitSuccess, code, stdout)

	assert.Contains(t, stdout, "Created 1 table(s)\n")
	assert.Contains(t, stderr, "table created")
	assert.Equal(t, []string{
		"CREATE TABLE `post` (`title` text indexed, `views` uint, `meta` json) min_prefix_len = ?",
		"CREATE CLUSTER `main`",
		"ALTER CLUSTER `main` ADD `post`",
	}, rec.SQL())
	assert.Equal(t, []any{"2"}, rec.Execs()[0].Args)
}

func TestSchema_Errors(t *testing.T) {
	schemaPath := writeFile(t, "schema.cue", postSchema)

	tests := []struct {
		name    string
		args    []string
		wantOut string
	}{
		{"no path", []string{"schema"}, "Error [E005]: no schema given"},
		{"apply without dsn", []string{"schema", schemaPath, "--apply"}, "Error [E008]: --apply requires --dsn"},
		{"unknown driver", []string{"schema", schemaPath, "--apply", "--driver", "nosuch", "--dsn", "x"}, "Error [E008]:"},
		{"missing schema", []string{"schema", "missing.cue"}, "Error [E005]: schema not found: missing.cue"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, _, code := runCLI(tt.args...)
			assert.Equal(t, ExitCommandError, code)
			assert.Contains(t, stdout, tt.wantOut)
		})
	}
}

func TestSchema_InvalidTable(t *testing.T) {
	schemaPath := writeFile(t, "schema.cue", `
table: post: columns: {
	id:    {type: "bigint", primary_key: true}
	other: {type: "bigint", primary_key: true}
}
`)

	stdout, _, code := runCLI("schema", schemaPath)
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stdout, "Error [E101]:")
}
