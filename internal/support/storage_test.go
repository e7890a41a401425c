package support

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestU32Codec(t *testing.T) {
	for _, v := range []uint32{0, 1, 42, 1 << 31, 4294967295} {
		b := U32{}.Encode(v)
		require.Len(t, b, 4)
		got, err := U32{}.Decode(b)
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}

	assert.Equal(t, []byte{42, 0, 0, 0}, U32{}.Encode(42), "little-endian")

	_, err := U32{}.Decode([]byte{1, 2})
	assert.Error(t, err)
}

func TestStorageKey_String(t *testing.T) {
	assert.Equal(t, "Janus::Something", StorageKey{Namespace: "Janus", Slot: "Something"}.String())
}

func TestStorageValue_AbsentUntilWritten(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	slot := NewStorageValue[uint32]("Janus", "Something", U32{})

	_, ok, err := slot.Get(ctx, kv)
	require.NoError(t, err)
	assert.False(t, ok, "fresh slot must be absent, not zero")

	require.NoError(t, slot.Put(ctx, kv, 0))
	v, ok, err := slot.Get(ctx, kv)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint32(0), v)
}

func TestStorageValue_Overwrites(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	slot := NewStorageValue[uint32]("Janus", "Something", U32{})

	require.NoError(t, slot.Put(ctx, kv, 1))
	require.NoError(t, slot.Put(ctx, kv, 2))

	v, ok, err := slot.Get(ctx, kv)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint32(2), v)
}

func TestStorageValue_NamespacesAreIsolated(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	a := NewStorageValue[uint32]("A", "Something", U32{})
	b := NewStorageValue[uint32]("B", "Something", U32{})

	require.NoError(t, a.Put(ctx, kv, 7))
	_, ok, err := b.Get(ctx, kv)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStorageValue_DecodeError(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	slot := NewStorageValue[uint32]("Janus", "Something", U32{})
	require.NoError(t, kv.Put(ctx, slot.Key, []byte{1}))

	_, ok, err := slot.Get(ctx, kv)
	assert.Error(t, err)
	assert.False(t, ok)
	assert.Contains(t, err.Error(), "Janus::Something")
}

type failingKV struct{}

func (failingKV) Get(context.Context, StorageKey) ([]byte, bool, error) {
	return nil, false, errors.New("disk on fire")
}

func (failingKV) Put(context.Context, StorageKey, []byte) error {
	return errors.New("disk on fire")
}

func TestStorageValue_PropagatesBackendErrors(t *testing.T) {
	ctx := context.Background()
	slot := NewStorageValue[uint32]("Janus", "Something", U32{})

	_, _, err := slot.Get(ctx, failingKV{})
	assert.ErrorContains(t, err, "disk on fire")

	err = slot.Put(ctx, failingKV{}, 1)
	assert.ErrorContains(t, err, "disk on fire")
}
