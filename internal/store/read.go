package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/janus/internal/ir"
)

const eventColumns = `seq, id, call_id, pallet, pallet_index, variant, event_index, payload`

const callColumns = `id, token, module, function, args, origin, seq, outcome`

// ReadEvents returns events with seq > afterSeq in append order.
// limit <= 0 means no limit. Returns an empty slice (not nil) when nothing matches.
func (s *Store) ReadEvents(ctx context.Context, afterSeq int64, limit int) ([]ir.EventRecord, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+eventColumns+`
		FROM events
		WHERE seq > ?
		ORDER BY seq ASC
		LIMIT ?
	`, afterSeq, limit)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	return collectEvents(rows)
}

// ReadEventsForCall returns the events deposited by one call, in append order.
func (s *Store) ReadEventsForCall(ctx context.Context, callID string) ([]ir.EventRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+eventColumns+`
		FROM events
		WHERE call_id = ?
		ORDER BY seq ASC
	`, callID)
	if err != nil {
		return nil, fmt.Errorf("query events for call: %w", err)
	}
	return collectEvents(rows)
}

// LastEvent returns the most recently appended event of a pallet variant.
// ok is false if the variant was never deposited.
func (s *Store) LastEvent(ctx context.Context, pallet, variant string) (ev ir.EventRecord, ok bool, err error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+eventColumns+`
		FROM events
		WHERE pallet = ? AND variant = ?
		ORDER BY seq DESC
		LIMIT 1
	`, pallet, variant)

	ev, err = scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ir.EventRecord{}, false, nil
	}
	if err != nil {
		return ir.EventRecord{}, false, err
	}
	return ev, true, nil
}

// ReadCall retrieves a single journaled call by ID.
// Returns sql.ErrNoRows (wrapped) if not found.
func (s *Store) ReadCall(ctx context.Context, id string) (ir.CallRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+callColumns+`
		FROM calls
		WHERE id = ?
	`, id)
	return scanCall(row)
}

// ReadCalls returns every journaled call in seq order.
func (s *Store) ReadCalls(ctx context.Context) ([]ir.CallRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+callColumns+`
		FROM calls
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query calls: %w", err)
	}
	defer rows.Close()

	calls := []ir.CallRecord{}
	for rows.Next() {
		rec, err := scanCall(rows)
		if err != nil {
			return nil, err
		}
		calls = append(calls, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate calls: %w", err)
	}
	return calls, nil
}

// MaxSeq returns the highest seq used by any call or event, 0 for an empty store.
// The runtime resumes its clock from here.
func (s *Store) MaxSeq(ctx context.Context) (int64, error) {
	var seq int64
	err := s.db.QueryRowContext(ctx, `
		SELECT MAX(
			COALESCE((SELECT MAX(seq) FROM calls), 0),
			COALESCE((SELECT MAX(seq) FROM events), 0)
		)
	`).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("max seq: %w", err)
	}
	return seq, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func collectEvents(rows *sql.Rows) ([]ir.EventRecord, error) {
	defer rows.Close()

	events := []ir.EventRecord{}
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

func scanEvent(sc scanner) (ir.EventRecord, error) {
	var ev ir.EventRecord
	var payloadJSON string
	if err := sc.Scan(
		&ev.Seq, &ev.ID, &ev.CallID, &ev.Pallet, &ev.PalletIndex,
		&ev.Variant, &ev.EventIndex, &payloadJSON,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ev, err
		}
		return ev, fmt.Errorf("scan event: %w", err)
	}

	payload, err := unmarshalObject(payloadJSON)
	if err != nil {
		return ev, fmt.Errorf("scan event %s: %w", ev.ID, err)
	}
	ev.Payload = payload
	return ev, nil
}

func scanCall(sc scanner) (ir.CallRecord, error) {
	var rec ir.CallRecord
	var argsJSON, originJSON string
	if err := sc.Scan(
		&rec.ID, &rec.Token, &rec.Module, &rec.Function,
		&argsJSON, &originJSON, &rec.Seq, &rec.Outcome,
	); err != nil {
		return rec, fmt.Errorf("scan call: %w", err)
	}

	args, err := unmarshalObject(argsJSON)
	if err != nil {
		return rec, fmt.Errorf("scan call %s: %w", rec.ID, err)
	}
	rec.Args = args

	origin, err := unmarshalOrigin(originJSON)
	if err != nil {
		return rec, fmt.Errorf("scan call %s: %w", rec.ID, err)
	}
	rec.Origin = origin
	return rec, nil
}
