package support

import "errors"

// DispatchError is implemented by the closed error enumerations pallets return.
// The runtime journals Name() as the call outcome.
type DispatchError interface {
	error
	Pallet() string
	Name() string
	Index() uint8
}

// AsDispatchError extracts a DispatchError from err's chain.
func AsDispatchError(err error) (DispatchError, bool) {
	var de DispatchError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}
