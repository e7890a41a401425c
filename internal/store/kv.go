package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/janus/internal/support"
)

// querier is the subset of *sql.DB and *sql.Tx the slot helpers need.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Slot is one stored row, as listed by ReadSlots.
type Slot struct {
	Key   support.StorageKey
	Value []byte
	Seq   int64
}

func getSlot(ctx context.Context, q querier, key support.StorageKey) ([]byte, bool, error) {
	var value []byte
	err := q.QueryRowContext(ctx, `
		SELECT value FROM storage
		WHERE namespace = ? AND slot = ?
	`, key.Namespace, key.Slot).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

func putSlot(ctx context.Context, q querier, key support.StorageKey, value []byte, seq int64) error {
	if value == nil {
		value = []byte{}
	}
	_, err := q.ExecContext(ctx, `
		INSERT INTO storage (namespace, slot, value, seq)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(namespace, slot) DO UPDATE SET value = excluded.value, seq = excluded.seq
	`, key.Namespace, key.Slot, value, seq)
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

// Get reads a slot outside any dispatch. Implements support.Reader.
//
// Other modules read the same slots this way; the value may change between two
// reads since no read-side lock is taken.
func (s *Store) Get(ctx context.Context, key support.StorageKey) ([]byte, bool, error) {
	return getSlot(ctx, s.db, key)
}

// ReadSlots lists every stored slot ordered by namespace then slot.
func (s *Store) ReadSlots(ctx context.Context) ([]Slot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT namespace, slot, value, seq FROM storage
		ORDER BY namespace COLLATE BINARY ASC, slot COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query slots: %w", err)
	}
	defer rows.Close()

	slots := []Slot{}
	for rows.Next() {
		var sl Slot
		if err := rows.Scan(&sl.Key.Namespace, &sl.Key.Slot, &sl.Value, &sl.Seq); err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		slots = append(slots, sl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate slots: %w", err)
	}
	return slots, nil
}
