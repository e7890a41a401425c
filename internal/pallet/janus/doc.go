// Package janus implements the Janus pallet: a single authenticated
// state transition over one storage slot.
//
// DoSomething verifies the caller's origin, overwrites the Something slot and
// deposits a SomethingStored event. The write and the deposit happen through
// capabilities the host passes in (support.KV, support.Publisher); the host is
// responsible for making them one atomic step and for serializing calls.
//
// Storage:
//
//	Janus::Something  u32, absent until the first successful call
//
// Events:
//
//	SomethingStored { something: u32, who: AccountID }
//
// Errors:
//
//	0 NoneValue   reserved; no call raises it
//	1 BadOrigin   origin rejected by the verifier; nothing written
package janus
