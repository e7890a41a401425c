package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/roach88/janus/internal/config"
	"github.com/roach88/janus/internal/ir"
	"github.com/roach88/janus/internal/pallet/janus"
	"github.com/roach88/janus/internal/store"
	"github.com/roach88/janus/internal/support"
)

// Call is an inbound request. Function is a function name or its decimal
// call index within Module.
type Call struct {
	Module   string    `json:"module"`
	Function string    `json:"function"`
	Args     ir.Object `json:"args"`
	Origin   ir.Origin `json:"origin"`
	Token    string    `json:"token,omitempty"` // Generated when empty
}

// Receipt describes a dispatched call. Outcome is ir.OutcomeSuccess, a pallet
// error name such as "BadOrigin", or a RuntimeErrorCode.
type Receipt struct {
	CallID   string           `json:"call_id,omitempty"`
	Token    string           `json:"token,omitempty"`
	Seq      int64            `json:"seq,omitempty"`
	Module   string           `json:"module"`
	Function string           `json:"function"`
	Outcome  string           `json:"outcome"`
	Events   []ir.EventRecord `json:"events,omitempty"`
}

// Accepted reports whether the call committed.
func (r Receipt) Accepted() bool {
	return r.Outcome == ir.OutcomeSuccess
}

// Runtime dispatches calls to pallets against a Store.
type Runtime struct {
	mu       sync.Mutex // Serializes dispatches: one open transaction at a time
	store    *store.Store
	cfg      *config.Runtime
	verifier support.Verifier
	calls    *callTable
	clock    Sequencer
	tokens   TokenGenerator
	metrics  *Metrics
	logger   *slog.Logger
	extra    []Callable
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithClock replaces the clock resumed from the store.
func WithClock(c Sequencer) Option {
	return func(r *Runtime) { r.clock = c }
}

// WithTokens sets the generator for calls submitted without a token.
func WithTokens(g TokenGenerator) Option {
	return func(r *Runtime) { r.tokens = g }
}

// WithMetrics enables dispatch metrics.
func WithMetrics(m *Metrics) Option {
	return func(r *Runtime) { r.metrics = m }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(r *Runtime) { r.logger = l }
}

// WithCallables registers calls beyond the built-in pallets.
func WithCallables(c ...Callable) Option {
	return func(r *Runtime) { r.extra = append(r.extra, c...) }
}

// New creates a runtime over s. Unless WithClock is given, the clock resumes
// from the store's highest seq so restarts never reuse one.
func New(ctx context.Context, s *store.Store, cfg *config.Runtime, verifier support.Verifier, opts ...Option) (*Runtime, error) {
	r := &Runtime{
		store:    s,
		cfg:      cfg,
		verifier: verifier,
		tokens:   UUIDv7Generator{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}

	for _, name := range janus.EventNames {
		if _, _, err := cfg.EventBinding(janus.PalletName, name); err != nil {
			return nil, fmt.Errorf("new runtime: %w", err)
		}
	}

	calls, err := newCallTable(cfg, append(JanusCalls(), r.extra...))
	if err != nil {
		return nil, fmt.Errorf("new runtime: %w", err)
	}
	r.calls = calls

	if r.clock == nil {
		seq, err := s.MaxSeq(ctx)
		if err != nil {
			return nil, fmt.Errorf("new runtime: %w", err)
		}
		r.clock = NewClockAt(seq)
	}
	r.metrics.setSeq(r.clock.Current())

	return r, nil
}

// Config returns the runtime description the runtime was built with.
func (r *Runtime) Config() *config.Runtime {
	return r.cfg
}

// Dispatch runs call to completion.
//
// On success the pallet's storage writes, its events and the journaled call
// commit together. On any error all of them are rolled back; calls that got
// as far as a seq are then journaled with the failure as outcome. The
// returned error is the pallet error (e.g. janus.BadOrigin) or a *RuntimeError.
func (r *Runtime) Dispatch(ctx context.Context, call Call) (Receipt, error) {
	start := time.Now()
	receipt := Receipt{Module: call.Module, Function: call.Function}

	c, err := r.calls.resolve(call.Module, call.Function)
	if err != nil {
		return r.reject(receipt, start, err)
	}
	receipt.Function = c.Function

	args := call.Args
	if args == nil {
		args = ir.Object{}
	}
	inv, err := c.Bind(args)
	if err != nil {
		return r.reject(receipt, start, newInvalidArgs(c.Module, c.Function, err))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	seq := r.clock.Next()
	token := call.Token
	if token == "" {
		token = r.tokens.Generate()
	}
	callID, err := ir.CallID(token, c.Module, c.Function, args, seq)
	if err != nil {
		return r.reject(receipt, start, newInvalidArgs(c.Module, c.Function, err))
	}
	receipt.CallID, receipt.Token, receipt.Seq = callID, token, seq

	rec := ir.CallRecord{
		ID:       callID,
		Token:    token,
		Module:   c.Module,
		Function: c.Function,
		Args:     args,
		Origin:   call.Origin.Redacted(),
		Seq:      seq,
	}

	events, err := r.execute(ctx, rec, inv, call.Origin)
	if err != nil {
		rec.Outcome = outcomeOf(err)
		if jerr := r.store.WriteCall(ctx, rec); jerr != nil {
			r.logger.Error("journal rejected call", "call", callID, "error", jerr)
			err = errors.Join(err, newDispatchFailed(c.Module, c.Function, jerr))
		}
		r.metrics.setSeq(r.clock.Current())
		return r.reject(receipt, start, err)
	}

	receipt.Outcome = ir.OutcomeSuccess
	receipt.Events = events
	for _, ev := range events {
		r.metrics.observeEvent(ev.Pallet, ev.Variant)
	}
	r.metrics.observeCall(c.Module, c.Function, receipt.Outcome, time.Since(start))
	r.metrics.setSeq(r.clock.Current())
	r.logger.Info("call dispatched",
		"call", callID,
		"module", c.Module,
		"function", c.Function,
		"origin", rec.Origin.String(),
		"seq", seq,
		"events", len(events),
	)
	return receipt, nil
}

// execute runs inv inside one store transaction and commits it with the
// journaled call. Nothing it wrote survives an error.
func (r *Runtime) execute(ctx context.Context, rec ir.CallRecord, inv Invoke, origin ir.Origin) ([]ir.EventRecord, error) {
	tx, err := r.store.Begin(ctx, rec.Seq)
	if err != nil {
		return nil, newDispatchFailed(rec.Module, rec.Function, err)
	}
	defer tx.Rollback()

	pub := &txPublisher{tx: tx, cfg: r.cfg, clock: r.clock, callID: rec.ID}
	env := Env{Verifier: r.verifier, KV: tx, Events: pub}

	if err := inv(ctx, env, origin); err != nil {
		if _, ok := support.AsDispatchError(err); ok {
			return nil, err
		}
		return nil, newDispatchFailed(rec.Module, rec.Function, err)
	}

	rec.Outcome = ir.OutcomeSuccess
	if err := tx.WriteCall(ctx, rec); err != nil {
		return nil, newDispatchFailed(rec.Module, rec.Function, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, newDispatchFailed(rec.Module, rec.Function, err)
	}
	return pub.records, nil
}

func (r *Runtime) reject(receipt Receipt, start time.Time, err error) (Receipt, error) {
	receipt.Outcome = outcomeOf(err)
	module, function := receipt.Module, receipt.Function
	if ErrorCode(err) == ErrCodeUnknownCall {
		// Caller text; keep it out of the label set.
		module, function = unknownLabel, unknownLabel
	}
	r.metrics.observeCall(module, function, receipt.Outcome, time.Since(start))
	r.logger.Info("call rejected",
		"call", receipt.CallID,
		"module", receipt.Module,
		"function", receipt.Function,
		"outcome", receipt.Outcome,
		"error", err,
	)
	return receipt, err
}

// outcomeOf names a dispatch failure for the journal.
func outcomeOf(err error) string {
	if de, ok := support.AsDispatchError(err); ok {
		return de.Name()
	}
	if code := ErrorCode(err); code != "" {
		return string(code)
	}
	return string(ErrCodeDispatchFailed)
}

// Something reads the Janus value outside any dispatch. ok is false before
// the first successful do_something.
func (r *Runtime) Something(ctx context.Context) (value uint32, ok bool, err error) {
	return janus.Something.Get(ctx, r.store)
}
