package runtime

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/janus/internal/config"
	"github.com/roach88/janus/internal/ir"
	"github.com/roach88/janus/internal/support"
)

func TestVerify_EmptyStore(t *testing.T) {
	rt, _ := newTestRuntime(t)

	rep, err := rt.Verify(context.Background())
	require.NoError(t, err)
	assert.True(t, rep.OK(), rep.Problems)
	assert.False(t, rep.Present)
	assert.Nil(t, rep.Last)
}

func TestVerify_Consistent(t *testing.T) {
	rt, _ := newTestRuntime(t)
	ctx := context.Background()

	_, err := rt.Dispatch(ctx, doSomething(alice(), 42))
	require.NoError(t, err)
	_, _ = rt.Dispatch(ctx, doSomething(ir.None(), 1))
	_, err = rt.Dispatch(ctx, doSomething(bob(), 7))
	require.NoError(t, err)

	rep, err := rt.Verify(ctx)
	require.NoError(t, err)
	assert.True(t, rep.OK(), rep.Problems)
	assert.Equal(t, 2, rep.Events)
	assert.Equal(t, 3, rep.Calls)
	assert.Equal(t, 1, rep.Rejected)
	assert.True(t, rep.Present)
	assert.Equal(t, uint32(7), rep.Stored)
	require.NotNil(t, rep.Last)
	assert.Equal(t, ir.AccountID("bob"), rep.Last.Who)
}

func TestVerify_DetectsStorageDrift(t *testing.T) {
	rt, s := newTestRuntime(t)
	ctx := context.Background()

	_, err := rt.Dispatch(ctx, doSomething(alice(), 42))
	require.NoError(t, err)

	_, err = s.DB().Exec(`UPDATE storage SET value = ? WHERE namespace = 'Janus'`, support.U32{}.Encode(43))
	require.NoError(t, err)

	rep, err := rt.Verify(ctx)
	require.NoError(t, err)
	assert.False(t, rep.OK())
	assert.Contains(t, rep.Problems[0], "43")
}

func TestVerify_DetectsTamperedEvent(t *testing.T) {
	rt, s := newTestRuntime(t)
	ctx := context.Background()

	_, err := rt.Dispatch(ctx, doSomething(alice(), 42))
	require.NoError(t, err)

	_, err = s.DB().Exec(`UPDATE events SET payload = '{"something":42,"who":"mallory"}'`)
	require.NoError(t, err)

	rep, err := rt.Verify(ctx)
	require.NoError(t, err)
	require.False(t, rep.OK())
	assert.Contains(t, rep.Problems[0], "does not match content")
}

func TestVerify_DetectsRebinding(t *testing.T) {
	rt, s := newTestRuntime(t)
	ctx := context.Background()

	_, err := rt.Dispatch(ctx, doSomething(alice(), 42))
	require.NoError(t, err)

	moved, err := config.CompileString(`
		name: "moved"
		pallets: Janus: { index: 12, events: ["SomethingStored"] }
	`, "moved.cue")
	require.NoError(t, err)

	rep, err := newTestRuntimeOn(t, s, moved).Verify(ctx)
	require.NoError(t, err)
	require.False(t, rep.OK())
	assert.Contains(t, rep.Problems[0], "binding says (12, 0)")
}

func TestVerify_DetectsStraySlot(t *testing.T) {
	rt, s := newTestRuntime(t)
	ctx := context.Background()

	_, err := rt.Dispatch(ctx, doSomething(alice(), 42))
	require.NoError(t, err)

	_, err = s.DB().Exec(`INSERT INTO storage (namespace, slot, value, seq) VALUES ('Ghost', 'Extra', x'00', 99)`)
	require.NoError(t, err)

	rep, err := rt.Verify(ctx)
	require.NoError(t, err)
	require.Len(t, rep.Problems, 1)
	assert.Contains(t, rep.Problems[0], "Ghost")
}
