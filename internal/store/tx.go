package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/janus/internal/ir"
	"github.com/roach88/janus/internal/support"
)

// Tx is the write scope of a single dispatch. It implements support.KV; its
// storage writes and appended events become visible together on Commit.
//
// A Tx is not safe for concurrent use. The runtime holds at most one open.
type Tx struct {
	tx  *sql.Tx
	seq int64
}

// Begin opens a dispatch transaction. seq stamps every slot written through it.
func (s *Store) Begin(ctx context.Context, seq int64) (*Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	return &Tx{tx: tx, seq: seq}, nil
}

// Get implements support.Reader. Reads see this transaction's own writes.
func (t *Tx) Get(ctx context.Context, key support.StorageKey) ([]byte, bool, error) {
	return getSlot(ctx, t.tx, key)
}

// Put implements support.KV.
func (t *Tx) Put(ctx context.Context, key support.StorageKey, value []byte) error {
	return putSlot(ctx, t.tx, key, value, t.seq)
}

// AppendEvent appends ev to the event log.
// ev.Seq must be strictly greater than every seq already in the log.
func (t *Tx) AppendEvent(ctx context.Context, ev ir.EventRecord) error {
	return appendEvent(ctx, t.tx, ev)
}

// WriteCall journals the call this transaction belongs to.
func (t *Tx) WriteCall(ctx context.Context, rec ir.CallRecord) error {
	return writeCall(ctx, t.tx, rec)
}

// Commit makes every write of the transaction visible at once.
func (t *Tx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Rollback discards the transaction. Safe to call after Commit.
func (t *Tx) Rollback() error {
	err := t.tx.Rollback()
	if err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("rollback: %w", err)
	}
	return nil
}
