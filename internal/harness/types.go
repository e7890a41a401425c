package harness

import "github.com/roach88/janus/internal/ir"

// TraceStep records what one scenario step actually did.
type TraceStep struct {
	Step     int          `json:"step"`
	Origin   string       `json:"origin"` // Redacted form
	Function string       `json:"function"`
	Value    int64        `json:"value"`
	Outcome  string       `json:"outcome"`
	Seq      int64        `json:"seq"` // 0 when the call was refused before sequencing
	Events   []TraceEvent `json:"events"`
}

// TraceEvent is an event deposited by a step. IDs are left out so golden
// files stay readable; runtime.Verify checks them instead.
type TraceEvent struct {
	Seq         int64     `json:"seq"`
	Pallet      string    `json:"pallet"`
	PalletIndex uint8     `json:"pallet_index"`
	Variant     string    `json:"variant"`
	EventIndex  uint8     `json:"event_index"`
	Payload     ir.Object `json:"payload"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass is true if every step matched its expect and every assertion held.
	Pass bool `json:"pass"`

	// Trace holds one entry per step, in order.
	Trace []TraceStep `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceStep{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddStep appends a step to the trace.
func (r *Result) AddStep(step TraceStep) {
	if step.Events == nil {
		step.Events = []TraceEvent{}
	}
	r.Trace = append(r.Trace, step)
}

func traceEvents(records []ir.EventRecord) []TraceEvent {
	out := make([]TraceEvent, len(records))
	for i, rec := range records {
		out[i] = TraceEvent{
			Seq:         rec.Seq,
			Pallet:      rec.Pallet,
			PalletIndex: rec.PalletIndex,
			Variant:     rec.Variant,
			EventIndex:  rec.EventIndex,
			Payload:     rec.Payload,
		}
	}
	return out
}
