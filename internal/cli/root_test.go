package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_Subcommands(t *testing.T) {
	cmd := NewRootCommand()

	for _, name := range []string{"call", "get", "events", "verify", "validate", "run", "test"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, sub.Name())
	}
}

func TestRootCommand_GlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	for _, name := range []string{"verbose", "format", "db", "runtime"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), name)
	}
	assert.Equal(t, "v", cmd.PersistentFlags().Lookup("verbose").Shorthand)
	assert.Equal(t, "text", cmd.PersistentFlags().Lookup("format").DefValue)
}

func TestRootCommand_InvalidFormat(t *testing.T) {
	t.Setenv("JANUS_DB", filepath.Join(t.TempDir(), "janus.db"))

	_, err := execute(t, NewRootCommand(), "get", "--format", "yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid format "yaml"`)
}

func TestRootCommand_DatabaseFromEnv(t *testing.T) {
	db := filepath.Join(t.TempDir(), "env.db")
	t.Setenv("JANUS_DB", db)

	_, err := execute(t, NewRootCommand(), "call", "do-something", "--origin", "signed:alice", "--value", "5")
	require.NoError(t, err)

	out, err := execute(t, NewRootCommand(), "get")
	require.NoError(t, err)
	assert.Equal(t, "5\n", out)

	// --db wins over JANUS_DB.
	out, err = execute(t, NewRootCommand(), "get", "--db", filepath.Join(t.TempDir(), "flag.db"))
	require.NoError(t, err)
	assert.Equal(t, "absent\n", out)
}

func TestRootCommand_RuntimeFromEnv(t *testing.T) {
	t.Setenv("JANUS_DB", filepath.Join(t.TempDir(), "janus.db"))
	t.Setenv("JANUS_RUNTIME", writeRuntime(t, `name: "env-runtime"
pallets: Janus: { index: 8, calls: ["do_something"], events: ["SomethingStored"] }
`))

	out, err := execute(t, NewRootCommand(), "validate")
	require.NoError(t, err)
	assert.Contains(t, out, `"env-runtime"`)
}

func TestRootCommand_InvalidLogLevel(t *testing.T) {
	t.Setenv("JANUS_DB", filepath.Join(t.TempDir(), "janus.db"))
	t.Setenv("JANUS_LOG_LEVEL", "loud")

	_, err := execute(t, NewRootCommand(), "get")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestIsValidFormat(t *testing.T) {
	assert.True(t, isValidFormat("text"))
	assert.True(t, isValidFormat("json"))
	assert.False(t, isValidFormat(""))
	assert.False(t, isValidFormat("yaml"))
}

func TestRootCommand_Version(t *testing.T) {
	out, err := execute(t, NewRootCommand(), "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "janus version 0.1.0 (journal format 1)")
}
