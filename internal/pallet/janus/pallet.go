package janus

import (
	"context"
	"fmt"

	"github.com/roach88/janus/internal/ir"
	"github.com/roach88/janus/internal/support"
)

// Call names, indexed as the runtime dispatches them.
const (
	CallDoSomething = "do_something"
)

// Calls lists the pallet's callable functions in call-index order.
var Calls = []string{CallDoSomething}

// Pallet is the Janus state-transition function bound to its host capabilities.
type Pallet struct {
	verifier support.Verifier
	kv       support.KV
	events   support.Publisher
}

// New binds the pallet to a verifier, a storage backend and an event publisher.
//
// The runtime builds a fresh Pallet per dispatch with transaction-scoped kv and
// events; tests can pass support.NewMemoryKV and support.NewEventLog.
func New(verifier support.Verifier, kv support.KV, events support.Publisher) *Pallet {
	return &Pallet{verifier: verifier, kv: kv, events: events}
}

// DoSomething stores value and announces who stored it.
//
// A rejected origin returns BadOrigin before anything is read or written.
// Any u32, zero included, is accepted; the previous value is overwritten.
// Storage or publisher failures are returned wrapped. The slot is written
// before the event is deposited, so a failed deposit leaves the write in kv;
// hosts must discard kv writes of a failed call (the runtime rolls back its Tx).
func (p *Pallet) DoSomething(ctx context.Context, origin ir.Origin, value uint32) error {
	who, err := p.verifier.Verify(ctx, origin)
	if err != nil {
		return fmt.Errorf("%w: %v", BadOrigin, err)
	}

	if err := Something.Put(ctx, p.kv, value); err != nil {
		return fmt.Errorf("do_something: %w", err)
	}

	if err := p.events.Deposit(ctx, SomethingStored{Something: value, Who: who}); err != nil {
		return fmt.Errorf("do_something: deposit event: %w", err)
	}

	return nil
}

// Something returns the stored value; ok is false before the first write.
func (p *Pallet) Something(ctx context.Context) (value uint32, ok bool, err error) {
	return Something.Get(ctx, p.kv)
}
