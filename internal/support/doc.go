// Package support defines the capabilities a pallet consumes from its host:
// origin verification, a namespaced key-value store, an event publisher and
// the shape of dispatch errors.
//
// Pallets depend only on these interfaces. The runtime wires concrete
// implementations (SQLite-backed, transaction-scoped) at dispatch time, and
// the in-memory versions here serve tests and embedding without a database.
package support
