// Package config loads the runtime description and environment overrides.
//
// The runtime description is CUE. It names the runtime, binds every pallet to
// its index and the ordered list of its event variants, and lists development
// accounts for the keyring:
//
//	name: "janus-dev"
//	pallets: Janus: {
//		index: 8
//		calls: ["do_something"]
//		events: ["SomethingStored"]
//	}
//	accounts: alice: "5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY"
//
// An event's index is its position in the events list. Every file is unified
// with the #Runtime schema before compilation so type errors carry CUE
// positions.
package config
