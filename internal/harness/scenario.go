package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/janus/internal/ir"
)

// Scenario is one conformance scenario: a sequence of calls and the state
// and events they must leave behind.
type Scenario struct {
	// Name uniquely identifies this scenario. Golden files are named after it.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Runtime is an optional CUE runtime description. Relative paths are
	// resolved against the scenario file. Empty means config.Default().
	Runtime string `yaml:"runtime,omitempty"`

	// Token is the fixed call token. Defaults to "test-call-default".
	Token string `yaml:"token,omitempty"`

	// Steps are dispatched in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final state and event log.
	Assertions []Assertion `yaml:"assertions"`
}

// Step dispatches one call.
type Step struct {
	// Origin in ir.ParseOrigin form: "signed:alice", "none", "root", "bearer:<jwt>".
	Origin string `yaml:"origin"`

	// Function defaults to do_something. A decimal call index works too.
	Function string `yaml:"function,omitempty"`

	// Value is passed as the "something" argument. Values outside u32 make
	// the call fail with INVALID_ARGS.
	Value int64 `yaml:"value"`

	// Expect is the expected outcome: Success, a pallet error name such as
	// BadOrigin, or a runtime error code. Defaults to Success.
	Expect string `yaml:"expect,omitempty"`
}

// DefaultFunction is the function a step calls when none is named.
const DefaultFunction = "do_something"

func (s Step) function() string {
	if s.Function == "" {
		return DefaultFunction
	}
	return s.Function
}

func (s Step) expect() string {
	if s.Expect == "" {
		return ir.OutcomeSuccess
	}
	return s.Expect
}

// Assertion validates the state after all steps ran.
type Assertion struct {
	// Type is one of stored_value, event_count, events, call_count.
	Type string `yaml:"type"`

	// Value is the expected stored value (stored_value).
	Value *int64 `yaml:"value,omitempty"`

	// Absent expects no value to have been stored (stored_value).
	Absent bool `yaml:"absent,omitempty"`

	// Count is the expected number of events or calls (event_count, call_count).
	Count int `yaml:"count,omitempty"`

	// Outcome filters call_count. Empty counts every journaled call.
	Outcome string `yaml:"outcome,omitempty"`

	// Events is the exact expected SomethingStored sequence (events).
	Events []ExpectedEvent `yaml:"events,omitempty"`
}

// ExpectedEvent is one expected SomethingStored notification. Who may be a
// dev account name or an account id.
type ExpectedEvent struct {
	Something int64  `yaml:"something"`
	Who       string `yaml:"who"`
}

// Assertion type constants.
const (
	AssertStoredValue = "stored_value"
	AssertEventCount  = "event_count"
	AssertEvents      = "events"
	AssertCallCount   = "call_count"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.Runtime != "" && !filepath.IsAbs(scenario.Runtime) {
		scenario.Runtime = filepath.Join(filepath.Dir(path), scenario.Runtime)
	}
	if scenario.Runtime != "" {
		if _, err := os.Stat(scenario.Runtime); err != nil {
			return nil, fmt.Errorf("invalid scenario: runtime description not found: %s", scenario.Runtime)
		}
	}

	return scenario, nil
}

// ParseScenario parses scenario YAML. Runtime paths are left as written.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if step.Origin == "" {
			return fmt.Errorf("steps[%d]: origin is required", i)
		}
		if _, err := ir.ParseOrigin(step.Origin); err != nil {
			return fmt.Errorf("steps[%d]: %w", i, err)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertStoredValue:
		if a.Value == nil && !a.Absent {
			return fmt.Errorf("assertions[%d]: value or absent is required for stored_value", index)
		}
		if a.Value != nil && a.Absent {
			return fmt.Errorf("assertions[%d]: value and absent are mutually exclusive", index)
		}
	case AssertEventCount, AssertCallCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	case AssertEvents:
		if a.Events == nil {
			return fmt.Errorf("assertions[%d]: events list is required for events", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
