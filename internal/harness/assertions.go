package harness

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/janus/internal/ir"
	"github.com/roach88/janus/internal/origin"
	"github.com/roach88/janus/internal/pallet/janus"
	"github.com/roach88/janus/internal/runtime"
	"github.com/roach88/janus/internal/store"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string      // Assertion type for categorization
	Expected string      // Human-readable expected outcome
	Actual   string      // Human-readable actual outcome
	Trace    []TraceStep // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, step := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s %s(%d) -> %s\n",
				step.Step, step.Origin, step.Function, step.Value, step.Outcome)
		}
	}

	return buf.String()
}

// AssertionContext provides the state assertions are evaluated against.
type AssertionContext struct {
	Runtime *runtime.Runtime
	Store   *store.Store
	Keyring *origin.Keyring // Resolves dev names in expected events; may be nil
	Ctx     context.Context
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		if actx == nil || actx.Runtime == nil || actx.Store == nil {
			errors = append(errors, fmt.Sprintf("assertion[%d]: %s requires a runtime context", i, assertion.Type))
			continue
		}

		switch assertion.Type {
		case AssertStoredValue:
			err = assertStoredValue(actx, assertion, result.Trace)
		case AssertEventCount:
			err = assertEventCount(actx, assertion, result.Trace)
		case AssertEvents:
			err = assertEvents(actx, assertion, result.Trace)
		case AssertCallCount:
			err = assertCallCount(actx, assertion, result.Trace)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}

// assertStoredValue checks the Something slot.
func assertStoredValue(actx *AssertionContext, a Assertion, trace []TraceStep) error {
	v, ok, err := actx.Runtime.Something(actx.Ctx)
	if err != nil {
		return fmt.Errorf("stored_value: %w", err)
	}

	actual := "absent"
	if ok {
		actual = fmt.Sprintf("%d", v)
	}

	if a.Absent {
		if ok {
			return &AssertionError{Type: AssertStoredValue, Expected: "absent", Actual: actual, Trace: trace}
		}
		return nil
	}

	if !ok || int64(v) != *a.Value {
		return &AssertionError{
			Type:     AssertStoredValue,
			Expected: fmt.Sprintf("%d", *a.Value),
			Actual:   actual,
			Trace:    trace,
		}
	}
	return nil
}

// assertEventCount checks the number of events in the log.
func assertEventCount(actx *AssertionContext, a Assertion, trace []TraceStep) error {
	events, err := actx.Store.ReadEvents(actx.Ctx, 0, 0)
	if err != nil {
		return fmt.Errorf("event_count: %w", err)
	}

	if len(events) != a.Count {
		return &AssertionError{
			Type:     AssertEventCount,
			Expected: fmt.Sprintf("%d events", a.Count),
			Actual:   fmt.Sprintf("%d events", len(events)),
			Trace:    trace,
		}
	}
	return nil
}

// assertEvents checks the exact SomethingStored sequence, in log order.
func assertEvents(actx *AssertionContext, a Assertion, trace []TraceStep) error {
	records, err := actx.Store.ReadEvents(actx.Ctx, 0, 0)
	if err != nil {
		return fmt.Errorf("events: %w", err)
	}

	var actual []janus.SomethingStored
	for _, rec := range records {
		if rec.Pallet != janus.PalletName || rec.Variant != janus.EventSomethingStored {
			continue
		}
		ev, err := janus.DecodeSomethingStored(rec.Payload)
		if err != nil {
			return fmt.Errorf("events: seq %d: %w", rec.Seq, err)
		}
		actual = append(actual, ev)
	}

	expected := make([]janus.SomethingStored, len(a.Events))
	for i, e := range a.Events {
		expected[i] = janus.SomethingStored{
			Something: uint32(e.Something),
			Who:       resolveAccount(actx.Keyring, e.Who),
		}
	}

	mismatch := len(actual) != len(expected)
	for i := 0; !mismatch && i < len(actual); i++ {
		if actual[i] != expected[i] || int64(expected[i].Something) != a.Events[i].Something {
			mismatch = true
		}
	}
	if mismatch {
		return &AssertionError{
			Type:     AssertEvents,
			Expected: formatEvents(expected),
			Actual:   formatEvents(actual),
			Trace:    trace,
		}
	}
	return nil
}

// assertCallCount checks the number of journaled calls, optionally filtered
// by outcome.
func assertCallCount(actx *AssertionContext, a Assertion, trace []TraceStep) error {
	calls, err := actx.Store.ReadCalls(actx.Ctx)
	if err != nil {
		return fmt.Errorf("call_count: %w", err)
	}

	count := 0
	for _, c := range calls {
		if a.Outcome == "" || c.Outcome == a.Outcome {
			count++
		}
	}

	if count != a.Count {
		what := "calls"
		if a.Outcome != "" {
			what = a.Outcome + " calls"
		}
		return &AssertionError{
			Type:     AssertCallCount,
			Expected: fmt.Sprintf("%d %s", a.Count, what),
			Actual:   fmt.Sprintf("%d %s", count, what),
			Trace:    trace,
		}
	}
	return nil
}

func resolveAccount(k *origin.Keyring, who string) ir.AccountID {
	if k != nil {
		if id, ok := k.Lookup(who); ok {
			return id
		}
	}
	return ir.AccountID(who)
}

func formatEvents(events []janus.SomethingStored) string {
	if len(events) == 0 {
		return "no SomethingStored events"
	}
	parts := make([]string, len(events))
	for i, e := range events {
		parts[i] = fmt.Sprintf("SomethingStored{%d, %s}", e.Something, e.Who)
	}
	return strings.Join(parts, ", ")
}
