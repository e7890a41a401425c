package harness

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/janus/internal/config"
	"github.com/roach88/janus/internal/ir"
	"github.com/roach88/janus/internal/origin"
	"github.com/roach88/janus/internal/pallet/janus"
	"github.com/roach88/janus/internal/runtime"
	"github.com/roach88/janus/internal/store"
	"github.com/roach88/janus/internal/testutil"
)

// Harness is the test execution engine.
// It runs scenarios with a deterministic clock and a fixed call token.
type Harness struct {
	runtime *runtime.Runtime
	store   *store.Store
	keyring *origin.Keyring
	logger  *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
// Execution flow:
//  1. Load the runtime description and build its keyring
//  2. Dispatch every step through the runtime and compare outcomes
//  3. Evaluate assertions against the store
//  4. Check the journal with runtime.Verify
//
// A returned error means the scenario could not run at all; failed
// expectations are reported in Result.Errors.
func Run(scenario *Scenario) (*Result, error) {
	cfg, err := config.Load(scenario.Runtime)
	if err != nil {
		return nil, fmt.Errorf("failed to load runtime description: %w", err)
	}

	keyring, err := origin.NewKeyring(cfg.Accounts, cfg.StrictAccounts)
	if err != nil {
		return nil, fmt.Errorf("failed to build keyring: %w", err)
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	ctx := context.Background()
	logger := testutil.DiscardLogger()

	rt, err := runtime.New(ctx, st, cfg, keyring,
		runtime.WithClock(runtime.NewClock()),
		runtime.WithTokens(testutil.NewFixedTokenGenerator(scenario.Token)),
		runtime.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create runtime: %w", err)
	}

	h := &Harness{runtime: rt, store: st, keyring: keyring, logger: logger}

	result := NewResult()
	if err := h.executeSteps(ctx, scenario.Steps, result); err != nil {
		return nil, fmt.Errorf("failed to execute steps: %w", err)
	}

	actx := &AssertionContext{
		Runtime: rt,
		Store:   st,
		Keyring: keyring,
		Ctx:     ctx,
	}
	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(errMsg)
	}

	report, err := rt.Verify(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to verify journal: %w", err)
	}
	for _, p := range report.Problems {
		result.AddError("journal: " + p)
	}

	return result, nil
}

// executeSteps dispatches each step and compares its outcome with expect.
// Rejections are results, not errors: only an origin that no longer parses
// stops the run.
func (h *Harness) executeSteps(ctx context.Context, steps []Step, result *Result) error {
	for i, step := range steps {
		o, err := ir.ParseOrigin(step.Origin)
		if err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}

		receipt, derr := h.runtime.Dispatch(ctx, runtime.Call{
			Module:   janus.PalletName,
			Function: step.function(),
			Args:     ir.Object{"something": ir.Int(step.Value)},
			Origin:   o,
		})

		result.AddStep(TraceStep{
			Step:     i,
			Origin:   o.String(),
			Function: receipt.Function,
			Value:    step.Value,
			Outcome:  receipt.Outcome,
			Seq:      receipt.Seq,
			Events:   traceEvents(receipt.Events),
		})

		if receipt.Outcome != step.expect() {
			msg := fmt.Sprintf("step %d (%s %s): expected %s, got %s",
				i, o, step.function(), step.expect(), receipt.Outcome)
			if derr != nil {
				msg += ": " + derr.Error()
			}
			result.AddError(msg)
		}

		h.logger.Info("step completed",
			"step", i,
			"origin", o.String(),
			"call", receipt.CallID,
			"outcome", receipt.Outcome,
		)
	}
	return nil
}
