package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/janus/internal/config"
)

func int64p(v int64) *int64 { return &v }

func TestRun_AliceStores42(t *testing.T) {
	scenario := &Scenario{
		Name:        "alice",
		Description: "d",
		Steps:       []Step{{Origin: "signed:alice", Value: 42}},
		Assertions: []Assertion{
			{Type: AssertStoredValue, Value: int64p(42)},
			{Type: AssertEventCount, Count: 1},
			{Type: AssertEvents, Events: []ExpectedEvent{{Something: 42, Who: "alice"}}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Empty(t, result.Errors)

	require.Len(t, result.Trace, 1)
	step := result.Trace[0]
	assert.Equal(t, "Success", step.Outcome)
	assert.Equal(t, "do_something", step.Function)
	assert.Equal(t, int64(1), step.Seq)
	require.Len(t, step.Events, 1)
	assert.Equal(t, int64(2), step.Events[0].Seq)
	assert.Equal(t, uint8(8), step.Events[0].PalletIndex)
	assert.Equal(t, "SomethingStored", step.Events[0].Variant)
}

func TestRun_ExpectMismatchFails(t *testing.T) {
	// The outcome comes from the runtime, so a wrong expect is caught.
	scenario := &Scenario{
		Name:        "wrong_expect",
		Description: "d",
		Steps:       []Step{{Origin: "none", Value: 1, Expect: "Success"}},
		Assertions:  []Assertion{{Type: AssertEventCount, Count: 0}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "expected Success, got BadOrigin")
	assert.Equal(t, "BadOrigin", result.Trace[0].Outcome)
}

func TestRun_AssertionFailuresAreReported(t *testing.T) {
	scenario := &Scenario{
		Name:        "failing_assertions",
		Description: "d",
		Steps:       []Step{{Origin: "signed:bob", Value: 5}},
		Assertions: []Assertion{
			{Type: AssertStoredValue, Value: int64p(6)},
			{Type: AssertStoredValue, Absent: true},
			{Type: AssertEventCount, Count: 2},
			{Type: AssertEvents, Events: []ExpectedEvent{{Something: 5, Who: "alice"}}},
			{Type: AssertCallCount, Outcome: "BadOrigin", Count: 1},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 5)
	assert.Contains(t, result.Errors[0], "Expected: 6")
	assert.Contains(t, result.Errors[0], "Actual: 5")
	assert.Contains(t, result.Errors[1], "Expected: absent")
	assert.Contains(t, result.Errors[2], "Actual: 1 events")
	assert.Contains(t, result.Errors[3], "Assertion failed: events")
	assert.Contains(t, result.Errors[4], "Actual: 0 BadOrigin calls")
}

func TestRun_UnknownAccountIsUsedVerbatim(t *testing.T) {
	scenario := &Scenario{
		Name:        "raw_account",
		Description: "d",
		Steps:       []Step{{Origin: "signed:charlie", Value: 3}},
		Assertions: []Assertion{
			{Type: AssertEvents, Events: []ExpectedEvent{{Something: 3, Who: "charlie"}}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_StrictRuntimeRejectsUnknownAccount(t *testing.T) {
	dir := t.TempDir()
	src, err := os.ReadFile(filepath.Join("..", "config", "default.cue"))
	require.NoError(t, err)
	rtPath := filepath.Join(dir, "runtime.cue")
	require.NoError(t, os.WriteFile(rtPath, append(src, []byte("\nstrict_accounts: true\n")...), 0644))

	scenario := &Scenario{
		Name:        "strict",
		Description: "d",
		Runtime:     rtPath,
		Steps: []Step{
			{Origin: "signed:charlie", Value: 3, Expect: "BadOrigin"},
			{Origin: "signed:alice", Value: 4},
		},
		Assertions: []Assertion{{Type: AssertStoredValue, Value: int64p(4)}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_BadRuntimeDescription(t *testing.T) {
	scenario := &Scenario{
		Name:        "bad_runtime",
		Description: "d",
		Runtime:     filepath.Join(t.TempDir(), "missing.cue"),
		Steps:       []Step{{Origin: "none", Value: 1}},
		Assertions:  []Assertion{{Type: AssertEventCount}},
	}

	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load runtime description")
}

func TestRun_IsolatedStores(t *testing.T) {
	scenario := &Scenario{
		Name:        "isolated",
		Description: "d",
		Steps:       []Step{{Origin: "signed:alice", Value: 9}},
		Assertions:  []Assertion{{Type: AssertEventCount, Count: 1}},
	}

	for range 2 {
		result, err := Run(scenario)
		require.NoError(t, err)
		assert.True(t, result.Pass, "errors: %v", result.Errors)
	}
}

func TestRun_TestdataScenarios(t *testing.T) {
	files, err := filepath.Glob("testdata/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, file := range files {
		t.Run(filepath.Base(file), func(t *testing.T) {
			scenario, err := LoadScenario(file)
			require.NoError(t, err)

			result, err := RunWithGolden(t, scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestEvaluateAssertions_NoContext(t *testing.T) {
	errs := EvaluateAssertions(NewResult(), []Assertion{{Type: AssertEventCount}}, nil)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "requires a runtime context")
}

func TestDefaultRuntimeHasDevAccounts(t *testing.T) {
	// Testdata scenarios rely on alice and bob resolving through the keyring.
	cfg := config.Default()
	assert.Contains(t, cfg.Accounts, "alice")
	assert.Contains(t, cfg.Accounts, "bob")
}
