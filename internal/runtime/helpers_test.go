package runtime

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/janus/internal/config"
	"github.com/roach88/janus/internal/ir"
	"github.com/roach88/janus/internal/origin"
	"github.com/roach88/janus/internal/store"
	"github.com/roach88/janus/internal/testutil"
)

// newTestRuntime creates a runtime over a fresh store with the default
// runtime description and signed-origin verification.
func newTestRuntime(t *testing.T, opts ...Option) (*Runtime, *store.Store) {
	t.Helper()
	s := testutil.OpenStore(t)
	return newTestRuntimeOn(t, s, config.Default(), opts...), s
}

func newTestRuntimeOn(t *testing.T, s *store.Store, cfg *config.Runtime, opts ...Option) *Runtime {
	t.Helper()
	opts = append([]Option{
		WithTokens(testutil.NewSequentialTokens("tok")),
		WithLogger(testutil.DiscardLogger()),
	}, opts...)
	rt, err := New(t.Context(), s, cfg, origin.EnsureSigned{}, opts...)
	require.NoError(t, err)
	return rt
}

func doSomething(o ir.Origin, value int64) Call {
	return Call{
		Module:   "Janus",
		Function: "do_something",
		Args:     ir.Object{"something": ir.Int(value)},
		Origin:   o,
	}
}

func alice() ir.Origin { return ir.Signed("alice") }
func bob() ir.Origin   { return ir.Signed("bob") }
