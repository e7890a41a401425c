package support

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/janus/internal/ir"
)

type testEvent struct{ n int }

func (testEvent) Pallet() string  { return "Test" }
func (testEvent) Variant() string { return "Ticked" }
func (e testEvent) Payload() ir.Object {
	return ir.Object{"n": ir.Int(e.n)}
}

func TestMemoryKV_CopiesValues(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	key := StorageKey{Namespace: "N", Slot: "S"}

	buf := []byte{1, 2, 3}
	require.NoError(t, kv.Put(ctx, key, buf))
	buf[0] = 9

	got, ok, err := kv.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte{1, 2, 3}, got)
}

func TestEventLog_PreservesOrder(t *testing.T) {
	ctx := context.Background()
	log := NewEventLog()

	for i := 1; i <= 3; i++ {
		require.NoError(t, log.Deposit(ctx, testEvent{n: i}))
	}

	events := log.Events()
	require.Len(t, events, 3)
	for i, ev := range events {
		assert.Equal(t, ir.Int(i+1), ev.Payload()["n"])
	}
	assert.Equal(t, 3, log.Len())
}

func TestEventLog_NoDeduplication(t *testing.T) {
	ctx := context.Background()
	log := NewEventLog()

	require.NoError(t, log.Deposit(ctx, testEvent{n: 1}))
	require.NoError(t, log.Deposit(ctx, testEvent{n: 1}))
	assert.Equal(t, 2, log.Len())
}
