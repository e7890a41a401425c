// Package harness runs YAML scenarios against the Janus runtime.
//
// Each scenario dispatches its steps through a real runtime.Runtime over a
// fresh in-memory store, with a deterministic clock and a fixed call token,
// so traces are reproducible and can be compared against golden files.
//
// # Scenario Format
//
//	name: alice_stores_42
//	description: "A signed origin stores a value"
//	runtime: runtime.cue        # optional, relative to the scenario file
//	token: test-call-alice      # optional, defaults to test-call-default
//	steps:
//	  - origin: signed:alice
//	    value: 42
//	    expect: Success         # defaults to Success
//	assertions:
//	  - type: stored_value
//	    value: 42
//	  - type: event_count
//	    count: 1
//	  - type: events
//	    events:
//	      - { something: 42, who: alice }
//	  - type: call_count
//	    outcome: BadOrigin
//	    count: 0
//
// Dev account names from the runtime description (alice, bob) resolve to
// their account ids both in step origins and in event assertions.
//
// After the steps run, the runtime's journal check (runtime.Verify) must
// also pass for the scenario to pass.
package harness
