package store

import (
	"context"
	"fmt"

	"github.com/roach88/janus/internal/ir"
)

// WriteCall journals a call outside any dispatch transaction. The runtime uses
// it for calls that were rolled back, so the journal still shows the attempt.
//
// Uses ON CONFLICT(id) DO NOTHING: journaling the same call twice is a no-op.
func (s *Store) WriteCall(ctx context.Context, rec ir.CallRecord) error {
	return writeCall(ctx, s.db, rec)
}

func writeCall(ctx context.Context, q querier, rec ir.CallRecord) error {
	argsJSON, err := marshalObject(rec.Args)
	if err != nil {
		return fmt.Errorf("write call: %w", err)
	}
	originJSON, err := marshalOrigin(rec.Origin)
	if err != nil {
		return fmt.Errorf("write call: %w", err)
	}

	_, err = q.ExecContext(ctx, `
		INSERT INTO calls
		(id, token, module, function, args, origin, seq, outcome, runtime_version, ir_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		rec.ID,
		rec.Token,
		rec.Module,
		rec.Function,
		argsJSON,
		originJSON,
		rec.Seq,
		rec.Outcome,
		ir.RuntimeVersion,
		ir.IRVersion,
	)
	if err != nil {
		return fmt.Errorf("write call: %w", err)
	}
	return nil
}

func appendEvent(ctx context.Context, q querier, ev ir.EventRecord) error {
	payloadJSON, err := marshalObject(ev.Payload)
	if err != nil {
		return fmt.Errorf("append event: %w", err)
	}

	// No ON CONFLICT here: the log is append-only, a duplicate seq or id is a bug.
	_, err = q.ExecContext(ctx, `
		INSERT INTO events
		(seq, id, call_id, pallet, pallet_index, variant, event_index, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		ev.Seq,
		ev.ID,
		ev.CallID,
		ev.Pallet,
		ev.PalletIndex,
		ev.Variant,
		ev.EventIndex,
		payloadJSON,
	)
	if err != nil {
		return fmt.Errorf("append event %s: %w", ev.ID, err)
	}
	return nil
}
