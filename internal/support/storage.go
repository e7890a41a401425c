package support

import (
	"context"
	"encoding/binary"
	"fmt"
)

// StorageKey addresses one storage slot: the owning module's namespace plus the
// slot name. Two modules can never collide because the namespace is part of the key.
type StorageKey struct {
	Namespace string
	Slot      string
}

// String renders the key as "Namespace::Slot".
func (k StorageKey) String() string {
	return k.Namespace + "::" + k.Slot
}

// Reader is read-only slot access. Get reports ok=false for a key that was
// never written; it must not return a zero value in its place.
type Reader interface {
	Get(ctx context.Context, key StorageKey) (value []byte, ok bool, err error)
}

// KV is the generic key-value capability the host provides to a dispatch.
// Put overwrites unconditionally.
type KV interface {
	Reader
	Put(ctx context.Context, key StorageKey, value []byte) error
}

// Codec converts a typed slot value to and from its stored bytes.
type Codec[T any] interface {
	Encode(v T) []byte
	Decode(b []byte) (T, error)
}

// U32 encodes uint32 as 4 bytes little-endian, the fixed-width layout
// used for compact integers on most ledger runtimes.
type U32 struct{}

// Encode implements Codec.
func (U32) Encode(v uint32) []byte {
	return binary.LittleEndian.AppendUint32(nil, v)
}

// Decode implements Codec.
func (U32) Decode(b []byte) (uint32, error) {
	if len(b) != 4 {
		return 0, fmt.Errorf("decode u32: want 4 bytes, got %d", len(b))
	}
	return binary.LittleEndian.Uint32(b), nil
}

// StorageValue is a typed view over a single slot. It holds no state of its own.
type StorageValue[T any] struct {
	Key   StorageKey
	Codec Codec[T]
}

// NewStorageValue declares a typed slot.
func NewStorageValue[T any](namespace, slot string, codec Codec[T]) StorageValue[T] {
	return StorageValue[T]{
		Key:   StorageKey{Namespace: namespace, Slot: slot},
		Codec: codec,
	}
}

// Get reads the slot. ok is false while the slot has never been written.
func (s StorageValue[T]) Get(ctx context.Context, kv Reader) (v T, ok bool, err error) {
	raw, ok, err := kv.Get(ctx, s.Key)
	if err != nil || !ok {
		return v, false, err
	}
	v, err = s.Codec.Decode(raw)
	if err != nil {
		return v, false, fmt.Errorf("storage %s: %w", s.Key, err)
	}
	return v, true, nil
}

// Put overwrites the slot.
func (s StorageValue[T]) Put(ctx context.Context, kv KV, v T) error {
	if err := kv.Put(ctx, s.Key, s.Codec.Encode(v)); err != nil {
		return fmt.Errorf("storage %s: %w", s.Key, err)
	}
	return nil
}
