package origin

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/roach88/janus/internal/ir"
)

// Keyring maps development names to account ids, the way local chains ship
// well-known accounts such as alice and bob.
type Keyring struct {
	accounts map[string]ir.AccountID
	strict   bool
}

// NewKeyring builds a keyring. Every account id is validated up front.
// With strict set, signed origins naming an unknown account are rejected;
// otherwise they pass through unchanged.
func NewKeyring(accounts map[string]ir.AccountID, strict bool) (*Keyring, error) {
	k := &Keyring{accounts: make(map[string]ir.AccountID, len(accounts)), strict: strict}
	for name, id := range accounts {
		if err := ValidateAccount(id); err != nil {
			return nil, fmt.Errorf("keyring account %q: %w", name, err)
		}
		k.accounts[name] = id
	}
	return k, nil
}

// Names returns the known development names, sorted.
func (k *Keyring) Names() []string {
	return slices.Sorted(maps.Keys(k.accounts))
}

// Lookup resolves a development name.
func (k *Keyring) Lookup(name string) (ir.AccountID, bool) {
	id, ok := k.accounts[name]
	return id, ok
}

// Verify implements support.Verifier.
func (k *Keyring) Verify(ctx context.Context, o ir.Origin) (ir.AccountID, error) {
	if o.Kind == ir.OriginSigned {
		if id, ok := k.accounts[string(o.Account)]; ok {
			o.Account = id
		} else if k.strict {
			return "", fmt.Errorf("%w: unknown account %q", ErrBadAccount, o.Account)
		}
	}
	return EnsureSigned{}.Verify(ctx, o)
}
