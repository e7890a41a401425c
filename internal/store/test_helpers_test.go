package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/janus/internal/ir"
	"github.com/roach88/janus/internal/support"
)

var somethingKey = support.StorageKey{Namespace: "Janus", Slot: "Something"}

// createTestStore creates a new store in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestCall creates a call record with minimal required fields.
func createTestCall(id string, seq int64, outcome string) ir.CallRecord {
	return ir.CallRecord{
		ID:       id,
		Token:    "tok-" + id,
		Module:   "Janus",
		Function: "do_something",
		Args:     ir.Object{"something": ir.Int(seq)},
		Origin:   ir.Signed("alice"),
		Seq:      seq,
		Outcome:  outcome,
	}
}

// createTestEvent creates a SomethingStored event record.
func createTestEvent(id, callID string, seq int64, value int64, who string) ir.EventRecord {
	return ir.EventRecord{
		ID:          id,
		Seq:         seq,
		CallID:      callID,
		Pallet:      "Janus",
		PalletIndex: 8,
		Variant:     "SomethingStored",
		EventIndex:  0,
		Payload:     ir.Object{"something": ir.Int(value), "who": ir.String(who)},
	}
}

// commitCall writes a slot, an event and the call row in one transaction.
func commitCall(t *testing.T, s *Store, callID string, seq int64, value int64, who string) {
	t.Helper()
	ctx := context.Background()

	tx, err := s.Begin(ctx, seq)
	require.NoError(t, err)
	defer tx.Rollback()

	require.NoError(t, tx.Put(ctx, somethingKey, support.U32{}.Encode(uint32(value))))
	require.NoError(t, tx.AppendEvent(ctx, createTestEvent("ev-"+callID, callID, seq+1, value, who)))
	require.NoError(t, tx.WriteCall(ctx, createTestCall(callID, seq, ir.OutcomeSuccess)))
	require.NoError(t, tx.Commit())
}
