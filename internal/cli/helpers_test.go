package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

// testOptions returns text-format options over a fresh database path.
func testOptions(t *testing.T) *RootOptions {
	t.Helper()
	return &RootOptions{
		Format:   "text",
		Database: filepath.Join(t.TempDir(), "janus.db"),
	}
}

// execute runs cmd with args and returns stdout and the error.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// storeValue runs "call do-something" and requires it to succeed.
func storeValue(t *testing.T, opts *RootOptions, origin string, value string) {
	t.Helper()
	_, err := execute(t, NewCallCommand(opts), "do-something", "--origin", origin, "--value", value)
	require.NoError(t, err)
}

// decodeResponse parses a JSON CLI response, re-decoding Data into data.
func decodeResponse(t *testing.T, out string, data any) CLIResponse {
	t.Helper()
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	if data != nil && resp.Data != nil {
		raw, err := json.Marshal(resp.Data)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, data))
	}
	return resp
}

// decodeDetails re-decodes the error details of a JSON CLI response into v.
func decodeDetails(t *testing.T, resp CLIResponse, v any) {
	t.Helper()
	require.NotNil(t, resp.Error)
	raw, err := json.Marshal(resp.Error.Details)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, v))
}
