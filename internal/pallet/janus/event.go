package janus

import "github.com/roach88/janus/internal/ir"

// Event variant names, in declaration order. The runtime's event binding maps
// these to event indices.
const (
	EventSomethingStored = "SomethingStored"
)

// EventNames lists the pallet's event variants in index order.
var EventNames = []string{EventSomethingStored}

// SomethingStored is deposited after every successful DoSomething.
type SomethingStored struct {
	Something uint32
	Who       ir.AccountID
}

// Pallet implements support.Event.
func (SomethingStored) Pallet() string { return PalletName }

// Variant implements support.Event.
func (SomethingStored) Variant() string { return EventSomethingStored }

// Payload implements support.Event.
func (e SomethingStored) Payload() ir.Object {
	return ir.Object{
		"something": ir.Int(e.Something),
		"who":       ir.String(e.Who),
	}
}

// DecodeSomethingStored reads a SomethingStored back out of a journaled payload.
func DecodeSomethingStored(payload ir.Object) (SomethingStored, error) {
	v, err := payload.Uint32("something")
	if err != nil {
		return SomethingStored{}, err
	}
	who, err := payload.Text("who")
	if err != nil {
		return SomethingStored{}, err
	}
	return SomethingStored{Something: v, Who: ir.AccountID(who)}, nil
}
