// Package runtime hosts pallets: it resolves inbound calls, runs each one in a
// storage transaction, tags deposited events with their pallet and event
// indices, and journals every call with its outcome.
//
// Thread-safety model:
//   - Runtime.Dispatch serializes callers on an internal mutex
//   - Engine.Submit is safe from any goroutine; Engine.Run owns the write path
//   - Something and Verify only read and may run alongside dispatches
//
// Invariants:
//   - A call that returns an error leaves storage and the event log untouched
//   - Seq numbers from the Clock strictly increase across calls and events
//   - Every successful call is journaled in the same transaction as its writes
package runtime
