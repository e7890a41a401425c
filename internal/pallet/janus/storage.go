package janus

import "github.com/roach88/janus/internal/support"

// PalletName is the storage namespace and event/error tag of this pallet.
const PalletName = "Janus"

// SlotSomething is the name of the pallet's only storage slot.
const SlotSomething = "Something"

// Something is the single value this pallet owns.
var Something = support.NewStorageValue[uint32](PalletName, SlotSomething, support.U32{})
