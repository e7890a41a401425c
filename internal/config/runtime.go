package config

import (
	"fmt"
	"slices"

	"github.com/roach88/janus/internal/ir"
)

// Pallet binds one pallet into the runtime.
type Pallet struct {
	Name   string
	Index  uint8
	Calls  []string // Call index is the position in this list
	Events []string // Event index is the position in this list
}

// EventIndex returns the index of variant within the pallet.
func (p Pallet) EventIndex(variant string) (uint8, bool) {
	i := slices.Index(p.Events, variant)
	if i < 0 {
		return 0, false
	}
	return uint8(i), true
}

// CallName returns the function bound to call index i.
func (p Pallet) CallName(i int) (string, bool) {
	if i < 0 || i >= len(p.Calls) {
		return "", false
	}
	return p.Calls[i], true
}

// Runtime is the compiled runtime description.
type Runtime struct {
	Name           string
	Pallets        []Pallet // Sorted by index
	Accounts       map[string]ir.AccountID
	StrictAccounts bool
}

// Pallet looks up a pallet by name.
func (r *Runtime) Pallet(name string) (Pallet, bool) {
	for _, p := range r.Pallets {
		if p.Name == name {
			return p, true
		}
	}
	return Pallet{}, false
}

// EventBinding resolves the (pallet index, event index) tag of an event variant.
func (r *Runtime) EventBinding(pallet, variant string) (palletIndex, eventIndex uint8, err error) {
	p, ok := r.Pallet(pallet)
	if !ok {
		return 0, 0, fmt.Errorf("pallet %q is not bound in runtime %q", pallet, r.Name)
	}
	ev, ok := p.EventIndex(variant)
	if !ok {
		return 0, 0, fmt.Errorf("event %s.%s is not bound in runtime %q", pallet, variant, r.Name)
	}
	return p.Index, ev, nil
}
