package store

import (
	"context"
	"fmt"

	"github.com/roach88/janus/internal/ir"
)

// Summary describes the journal for recovery and audit.
type Summary struct {
	Calls    int            // All journaled calls
	Accepted int            // Calls with outcome Success
	Rejected map[string]int // Rejected calls by outcome name
	Events   int
	Slots    int
	LastSeq  int64
	Orphans  int // Accepted calls without a single event; always 0 for a consistent journal
}

// Summarize scans the journal and event log.
func (s *Store) Summarize(ctx context.Context) (Summary, error) {
	sum := Summary{Rejected: map[string]int{}}

	calls, err := s.ReadCalls(ctx)
	if err != nil {
		return sum, fmt.Errorf("summarize: %w", err)
	}
	sum.Calls = len(calls)
	for _, c := range calls {
		if c.Outcome == ir.OutcomeSuccess {
			sum.Accepted++
		} else {
			sum.Rejected[c.Outcome]++
		}
	}

	err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&sum.Events)
	if err != nil {
		return sum, fmt.Errorf("summarize: count events: %w", err)
	}
	err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM storage`).Scan(&sum.Slots)
	if err != nil {
		return sum, fmt.Errorf("summarize: count slots: %w", err)
	}

	// Single query instead of one ReadEventsForCall per call.
	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM calls c
		WHERE c.outcome = ?
		AND NOT EXISTS (SELECT 1 FROM events e WHERE e.call_id = c.id)
	`, ir.OutcomeSuccess).Scan(&sum.Orphans)
	if err != nil {
		return sum, fmt.Errorf("summarize: count orphans: %w", err)
	}

	sum.LastSeq, err = s.MaxSeq(ctx)
	if err != nil {
		return sum, fmt.Errorf("summarize: %w", err)
	}
	return sum, nil
}

// Replay feeds every event to fn in append order, stopping at the first error.
// Used to rebuild derived state or to check it against storage.
func (s *Store) Replay(ctx context.Context, fn func(ir.EventRecord) error) error {
	const page = 512
	var after int64
	for {
		batch, err := s.ReadEvents(ctx, after, page)
		if err != nil {
			return fmt.Errorf("replay: %w", err)
		}
		for _, ev := range batch {
			if err := fn(ev); err != nil {
				return fmt.Errorf("replay event %d: %w", ev.Seq, err)
			}
			after = ev.Seq
		}
		if len(batch) < page {
			return nil
		}
	}
}
