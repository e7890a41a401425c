// Package ir holds the value types shared by the runtime, the store and the
// pallets: origins, calls, journaled event records and their payloads.
//
// ir imports nothing internal, so every other package may depend on it.
//
// Constraints:
//   - no float payloads; integers are int64 and every u32 fits
//   - JSON tags use snake_case
//   - ordering uses logical seq numbers, never wall-clock time
package ir
