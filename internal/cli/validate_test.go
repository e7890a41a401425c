package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRuntime(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "runtime.cue")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestValidate_BuiltIn(t *testing.T) {
	out, err := execute(t, NewValidateCommand(testOptions(t)))
	require.NoError(t, err)
	assert.Contains(t, out, `✓ runtime "janus-dev" is valid`)
	assert.Contains(t, out, "Janus (index 8): calls [do_something], events [SomethingStored]")
	assert.Contains(t, out, "accounts: alice, bob")
}

func TestValidate_MalformedAccount(t *testing.T) {
	path := writeRuntime(t, `name: "x"
pallets: Janus: { index: 8, events: ["SomethingStored"] }
accounts: eve: "has space"
`)

	out, err := execute(t, NewValidateCommand(testOptions(t)), path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, `keyring account "eve"`)
}

func TestValidate_File(t *testing.T) {
	path := writeRuntime(t, `name: "custom"
pallets: Janus: { index: 3, calls: ["do_something"], events: ["SomethingStored"] }
`)
	opts := testOptions(t)
	opts.Format = "json"

	out, err := execute(t, NewValidateCommand(opts), path)
	require.NoError(t, err)

	var res ValidationResult
	resp := decodeResponse(t, out, &res)
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, res.Valid)
	assert.Equal(t, "custom", res.Name)
	require.Len(t, res.Pallets, 1)
	assert.Equal(t, PalletSummary{
		Name:   "Janus",
		Index:  3,
		Calls:  []string{"do_something"},
		Events: []string{"SomethingStored"},
	}, res.Pallets[0])
}

func TestValidate_RuntimeFlagIsDefaultPath(t *testing.T) {
	opts := testOptions(t)
	opts.Runtime = writeRuntime(t, `name: "from-flag"
pallets: Janus: { index: 8, events: ["SomethingStored"] }
`)

	out, err := execute(t, NewValidateCommand(opts))
	require.NoError(t, err)
	assert.Contains(t, out, `"from-flag"`)
}

func TestValidate_Directory(t *testing.T) {
	path := writeRuntime(t, `name: "dir-runtime"
pallets: Janus: { index: 8, calls: ["do_something"], events: ["SomethingStored"] }
`)

	out, err := execute(t, NewValidateCommand(testOptions(t)), filepath.Dir(path))
	require.NoError(t, err)
	assert.Contains(t, out, `✓ runtime "dir-runtime" is valid`)
}

func TestValidate_CompileError(t *testing.T) {
	path := writeRuntime(t, `name: "x"
pallets: {
	A: { index: 1, events: [] }
	B: { index: 1, events: [] }
}
`)
	opts := testOptions(t)

	out, err := execute(t, NewValidateCommand(opts), path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ ")
	assert.Contains(t, out, "pallets.B.index")

	opts.Format = "json"
	out, err = execute(t, NewValidateCommand(opts), path)
	require.Error(t, err)

	resp := decodeResponse(t, out, nil)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeRuntimeInvalid, resp.Error.Code)
	var res ValidationResult
	decodeDetails(t, resp, &res)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "pallets.B.index", res.Errors[0].Field)
	assert.Equal(t, path, res.Errors[0].File)
	assert.Equal(t, 4, res.Errors[0].Line)
}

func TestValidate_MissingFile(t *testing.T) {
	opts := testOptions(t)
	opts.Format = "json"

	out, err := execute(t, NewValidateCommand(opts), filepath.Join(t.TempDir(), "nope.cue"))
	require.Error(t, err)

	var res ValidationResult
	decodeDetails(t, decodeResponse(t, out, nil), &res)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "runtime", res.Errors[0].Field)
}
