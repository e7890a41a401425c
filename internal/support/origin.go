package support

import (
	"context"

	"github.com/roach88/janus/internal/ir"
)

// Verifier turns a raw call origin into an authenticated principal.
//
// Implementations must reject unsigned, anonymous and malformed origins with a
// non-nil error. Callers only look at whether verification succeeded.
type Verifier interface {
	Verify(ctx context.Context, origin ir.Origin) (ir.AccountID, error)
}

// VerifierFunc adapts a function to the Verifier interface.
type VerifierFunc func(ctx context.Context, origin ir.Origin) (ir.AccountID, error)

// Verify calls f(ctx, origin).
func (f VerifierFunc) Verify(ctx context.Context, origin ir.Origin) (ir.AccountID, error) {
	return f(ctx, origin)
}
