package origin

import (
	"context"
	"fmt"

	"github.com/roach88/janus/internal/ir"
	"github.com/roach88/janus/internal/support"
)

// Route binds an origin kind to the verifier responsible for it.
type Route struct {
	Kind     ir.OriginKind
	Verifier support.Verifier
}

// Chain dispatches an origin to the first route registered for its kind.
// Origins of a kind with no route are rejected.
type Chain struct {
	routes []Route
}

// NewChain builds a chain from routes, in priority order.
func NewChain(routes ...Route) *Chain {
	return &Chain{routes: routes}
}

// Verify implements support.Verifier.
func (c *Chain) Verify(ctx context.Context, o ir.Origin) (ir.AccountID, error) {
	for _, r := range c.routes {
		if r.Kind == o.Kind {
			return r.Verifier.Verify(ctx, o)
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedOrigin, o)
}
