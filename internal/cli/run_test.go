package cli

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/janus/internal/ir"
	"github.com/roach88/janus/internal/testutil"
)

func newRunCmd(in io.Reader) (*cobra.Command, *bytes.Buffer) {
	out := &bytes.Buffer{}
	cmd := &cobra.Command{}
	cmd.SetIn(in)
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	return cmd, out
}

func decodeResponses(t *testing.T, out string) []CallResponse {
	t.Helper()
	var resps []CallResponse
	dec := json.NewDecoder(strings.NewReader(out))
	for dec.More() {
		var r CallResponse
		require.NoError(t, dec.Decode(&r))
		resps = append(resps, r)
	}
	return resps
}

func TestRunEngine_DispatchesInOrder(t *testing.T) {
	input := strings.Join([]string{
		`{"origin":"signed:alice","args":{"something":42},"token":"line-1"}`,
		`not json`,
		`{"origin":"none","args":{"something":1}}`,
		`{"function":"transfer","origin":"signed:bob","args":{}}`,
		``,
		`{"origin":"signed:bob","args":{"something":7}}`,
	}, "\n")

	opts := &RunOptions{
		RootOptions:    testOptions(t),
		TokenGenerator: testutil.NewSequentialTokens("run"),
		Registry:       prometheus.NewRegistry(),
	}
	cmd, out := newRunCmd(strings.NewReader(input))

	require.NoError(t, runEngine(opts, cmd))

	resps := decodeResponses(t, out.String())
	require.Len(t, resps, 5)

	assert.Equal(t, 1, resps[0].Line)
	require.NotNil(t, resps[0].Receipt)
	assert.Equal(t, "Success", resps[0].Receipt.Outcome)
	assert.Equal(t, "line-1", resps[0].Receipt.Token)
	assert.Equal(t, int64(1), resps[0].Receipt.Seq)
	assert.Empty(t, resps[0].Code)

	assert.Equal(t, 2, resps[1].Line)
	assert.Equal(t, ErrCodeGeneric, resps[1].Code)
	assert.Nil(t, resps[1].Receipt)

	assert.Equal(t, 3, resps[2].Line)
	assert.Equal(t, ErrCodeBadOrigin, resps[2].Code)
	require.NotNil(t, resps[2].Receipt)
	assert.Equal(t, "run-0001", resps[2].Receipt.Token)

	assert.Equal(t, 4, resps[3].Line)
	assert.Equal(t, ErrCodeUnknownCall, resps[3].Code)

	assert.Equal(t, 6, resps[4].Line)
	require.NotNil(t, resps[4].Receipt)
	assert.Equal(t, "Success", resps[4].Receipt.Outcome)
	// Unknown calls never take a token.
	assert.Equal(t, "run-0002", resps[4].Receipt.Token)

	n, err := promtest.GatherAndCount(opts.Registry, "janus_events_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// The last write wins and survives the engine.
	got, err := execute(t, NewGetCommand(opts.RootOptions))
	require.NoError(t, err)
	assert.Equal(t, "7\n", got)
}

func TestRunEngine_ServesMetrics(t *testing.T) {
	var body string
	opts := &RunOptions{
		RootOptions: testOptions(t),
		Registry:    prometheus.NewRegistry(),
		MetricsAddr: "127.0.0.1:0",
		MetricsListening: func(addr string) {
			resp, err := http.Get("http://" + addr + "/metrics")
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			b, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			body = string(b)
		},
	}
	cmd, _ := newRunCmd(strings.NewReader(""))

	require.NoError(t, runEngine(opts, cmd))
	assert.Contains(t, body, "janus_last_seq")
}

func TestRunEngine_StopsOnCancel(t *testing.T) {
	inR, inW := io.Pipe()
	outR, outW := io.Pipe()
	t.Cleanup(func() {
		_ = inW.Close()
		_ = outR.Close()
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	opts := &RunOptions{RootOptions: testOptions(t), Registry: prometheus.NewRegistry()}
	cmd := &cobra.Command{}
	cmd.SetIn(inR)
	cmd.SetOut(outW)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetContext(ctx)

	done := make(chan error, 1)
	go func() { done <- runEngine(opts, cmd) }()

	// One round trip proves the engine is up before it is cancelled.
	_, err := io.WriteString(inW, `{"origin":"signed:alice","args":{"something":1}}`+"\n")
	require.NoError(t, err)
	line, err := bufio.NewReader(outR).ReadString('\n')
	require.NoError(t, err)
	assert.Contains(t, line, `"Success"`)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("engine did not stop after cancellation")
	}
}

func TestRunEngine_NoDatabase(t *testing.T) {
	opts := &RunOptions{RootOptions: &RootOptions{Format: "text"}, Registry: prometheus.NewRegistry()}
	cmd, _ := newRunCmd(strings.NewReader(""))

	err := runEngine(opts, cmd)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestDecodeCallRequest(t *testing.T) {
	call, err := decodeCallRequest([]byte(`{"origin":"signed:alice","args":{"something":3}}`))
	require.NoError(t, err)
	assert.Equal(t, "Janus", call.Module)
	assert.Equal(t, "do_something", call.Function)
	assert.Equal(t, ir.OriginSigned, call.Origin.Kind)
	assert.Equal(t, ir.Int(3), call.Args["something"])

	_, err = decodeCallRequest([]byte(`{"origin":"sudo"}`))
	assert.Error(t, err)

	_, err = decodeCallRequest([]byte(`{`))
	assert.Error(t, err)
}
