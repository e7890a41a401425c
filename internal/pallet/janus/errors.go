package janus

import "fmt"

// Error is the pallet's closed set of rejection reasons.
//
// NoneValue keeps index 0 from the pallet's declared error enum. BadOrigin is
// an origin check other runtimes raise outside the pallet; here the pallet
// owns it, so it takes the next index.
type Error uint8

const (
	// NoneValue is reserved for a read-before-write check on Something.
	// No function raises it yet.
	NoneValue Error = iota
	// BadOrigin: the verifier rejected the call's origin.
	BadOrigin
)

// Errors lists every variant in index order.
var Errors = []Error{NoneValue, BadOrigin}

var errorNames = [...]string{
	NoneValue: "NoneValue",
	BadOrigin: "BadOrigin",
}

// Name returns the variant name, e.g. "BadOrigin".
func (e Error) Name() string {
	if int(e) < len(errorNames) {
		return errorNames[e]
	}
	return fmt.Sprintf("Error(%d)", uint8(e))
}

// Pallet implements support.DispatchError.
func (Error) Pallet() string { return PalletName }

// Index implements support.DispatchError.
func (e Error) Index() uint8 { return uint8(e) }

func (e Error) Error() string {
	return PalletName + ": " + e.Name()
}
