package support

import (
	"context"

	"github.com/roach88/janus/internal/ir"
)

// Event is a pallet notification. The runtime tags it with the pallet and
// event indices from its configuration before appending it to the log.
type Event interface {
	Pallet() string
	Variant() string
	Payload() ir.Object
}

// Publisher is the host's append-only event capability.
// Deposit order is the order observers read events back in.
type Publisher interface {
	Deposit(ctx context.Context, ev Event) error
}
