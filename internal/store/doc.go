// Package store provides SQLite-backed durable storage for a janus runtime.
//
// Three tables:
//   - storage: one row per (namespace, slot); a missing row is an absent value
//   - calls: journal of every dispatched call and its outcome
//   - events: append-only event log, ordered by seq
//
// # Atomicity
//
// A successful dispatch writes its storage rows, its events and its call row
// inside one Tx. Either all of them become visible or none do, so no reader
// can see a stored value without the event that announced it. Rejected calls
// roll the Tx back and journal only the call row.
//
// # Ordering
//
// All ordering uses the logical seq assigned by the runtime clock, never
// wall-clock time. Queries return rows ORDER BY seq ASC.
//
// # Database configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL
//   - busy_timeout=5000
//   - foreign_keys=ON (events reference calls, checked at commit)
package store
