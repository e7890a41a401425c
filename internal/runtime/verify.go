package runtime

import (
	"context"
	"fmt"

	"github.com/roach88/janus/internal/ir"
	"github.com/roach88/janus/internal/pallet/janus"
)

// Report is the result of Verify.
type Report struct {
	Events   int
	Calls    int
	Rejected int
	Present  bool   // Something has been written
	Stored   uint32 // Value of Something when Present
	Last     *janus.SomethingStored
	Problems []string
}

// OK reports whether the journal is consistent.
func (r Report) OK() bool {
	return len(r.Problems) == 0
}

func (r *Report) problem(format string, args ...any) {
	r.Problems = append(r.Problems, fmt.Sprintf(format, args...))
}

// Verify replays the event log and checks it against storage:
//   - every event ID matches its content and its tags match the event binding
//   - every accepted call deposited at least one event
//   - Something equals the value of the last SomethingStored, and is absent
//     if there is none
//   - every stored slot belongs to a configured pallet
func (r *Runtime) Verify(ctx context.Context) (Report, error) {
	var rep Report

	sum, err := r.store.Summarize(ctx)
	if err != nil {
		return rep, fmt.Errorf("verify: %w", err)
	}
	rep.Calls = sum.Calls
	for _, n := range sum.Rejected {
		rep.Rejected += n
	}
	if sum.Orphans > 0 {
		rep.problem("%d accepted calls have no events", sum.Orphans)
	}

	err = r.store.Replay(ctx, func(ev ir.EventRecord) error {
		rep.Events++

		id, err := ir.EventID(ev.CallID, ev.Pallet, ev.Variant, ev.Payload, ev.Seq)
		if err != nil {
			return err
		}
		if id != ev.ID {
			rep.problem("event %d: id %s does not match content", ev.Seq, ev.ID)
		}

		pi, ei, err := r.cfg.EventBinding(ev.Pallet, ev.Variant)
		if err != nil {
			rep.problem("event %d: %v", ev.Seq, err)
		} else if pi != ev.PalletIndex || ei != ev.EventIndex {
			rep.problem("event %d: tagged (%d, %d), binding says (%d, %d)",
				ev.Seq, ev.PalletIndex, ev.EventIndex, pi, ei)
		}

		if ev.Pallet == janus.PalletName && ev.Variant == janus.EventSomethingStored {
			stored, err := janus.DecodeSomethingStored(ev.Payload)
			if err != nil {
				rep.problem("event %d: %v", ev.Seq, err)
				return nil
			}
			rep.Last = &stored
		}
		return nil
	})
	if err != nil {
		return rep, fmt.Errorf("verify: %w", err)
	}

	rep.Stored, rep.Present, err = r.Something(ctx)
	if err != nil {
		return rep, fmt.Errorf("verify: %w", err)
	}

	slots, err := r.store.ReadSlots(ctx)
	if err != nil {
		return rep, fmt.Errorf("verify: %w", err)
	}
	for _, sl := range slots {
		if _, ok := r.cfg.Pallet(sl.Key.Namespace); !ok {
			rep.problem("slot %s (seq %d) belongs to no configured pallet", sl.Key, sl.Seq)
		}
	}

	switch {
	case rep.Last == nil && rep.Present:
		rep.problem("Something = %d but no SomethingStored was ever deposited", rep.Stored)
	case rep.Last != nil && !rep.Present:
		rep.problem("Something is absent but the last SomethingStored carries %d", rep.Last.Something)
	case rep.Last != nil && rep.Last.Something != rep.Stored:
		rep.problem("Something = %d but the last SomethingStored carries %d", rep.Stored, rep.Last.Something)
	}

	return rep, nil
}
