package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "sphinxql", cmd.Use)
	assert.Contains(t, cmd.Long, "SphinxQL")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"compile", "schema", "exec"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	for _, name := range []string{"schema", "database", "cluster"} {
		require.NotNil(t, cmd.PersistentFlags().Lookup(name), "missing --%s", name)
	}
}

func TestExecCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	execCmd, _, err := cmd.Find([]string{"exec"})
	require.NoError(t, err)

	require.NotNil(t, execCmd.Flags().Lookup("dsn"))
	driverFlag := execCmd.Flags().Lookup("driver")
	require.NotNil(t, driverFlag)
	assert.Equal(t, "mysql", driverFlag.DefValue)
}

func TestRun_InvalidFormat(t *testing.T) {
	queries := writeFile(t, "queries.yaml", "table: post\n")

	_, stderr, code := runCLI("compile", queries, "--format", "xml")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr, `invalid format "xml"`)
}

func TestRun_MissingRequiredFlag(t *testing.T) {
	queries := writeFile(t, "queries.yaml", "table: post\n")

	_, stderr, code := runCLI("exec", queries)
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr, "dsn")
}
