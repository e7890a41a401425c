package runtime

import (
	"context"
	"fmt"

	"github.com/roach88/janus/internal/config"
	"github.com/roach88/janus/internal/ir"
	"github.com/roach88/janus/internal/store"
	"github.com/roach88/janus/internal/support"
)

// RuntimeEvent is a pallet event tagged for the runtime-wide event log.
// (PalletIndex, EventIndex) identify the variant independently of its name.
type RuntimeEvent struct {
	Pallet      string
	PalletIndex uint8
	Variant     string
	EventIndex  uint8
	Payload     ir.Object
}

// Bind tags a pallet event using the runtime's event binding.
func Bind(cfg *config.Runtime, ev support.Event) (RuntimeEvent, error) {
	pi, ei, err := cfg.EventBinding(ev.Pallet(), ev.Variant())
	if err != nil {
		return RuntimeEvent{}, err
	}
	return RuntimeEvent{
		Pallet:      ev.Pallet(),
		PalletIndex: pi,
		Variant:     ev.Variant(),
		EventIndex:  ei,
		Payload:     ev.Payload(),
	}, nil
}

// Record stamps the event with its seq and content-addressed ID.
func (e RuntimeEvent) Record(callID string, seq int64) (ir.EventRecord, error) {
	id, err := ir.EventID(callID, e.Pallet, e.Variant, e.Payload, seq)
	if err != nil {
		return ir.EventRecord{}, err
	}
	return ir.EventRecord{
		ID:          id,
		Seq:         seq,
		CallID:      callID,
		Pallet:      e.Pallet,
		PalletIndex: e.PalletIndex,
		Variant:     e.Variant,
		EventIndex:  e.EventIndex,
		Payload:     e.Payload,
	}, nil
}

// txPublisher appends deposited events to the dispatch transaction.
// Nothing it appends is visible until the transaction commits.
type txPublisher struct {
	tx      *store.Tx
	cfg     *config.Runtime
	clock   Sequencer
	callID  string
	records []ir.EventRecord
}

// Deposit implements support.Publisher.
func (p *txPublisher) Deposit(ctx context.Context, ev support.Event) error {
	re, err := Bind(p.cfg, ev)
	if err != nil {
		return fmt.Errorf("deposit: %w", err)
	}
	rec, err := re.Record(p.callID, p.clock.Next())
	if err != nil {
		return fmt.Errorf("deposit %s.%s: %w", re.Pallet, re.Variant, err)
	}
	if err := p.tx.AppendEvent(ctx, rec); err != nil {
		return fmt.Errorf("deposit: %w", err)
	}
	p.records = append(p.records, rec)
	return nil
}
