package origin

import (
	"context"
	"errors"
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/roach88/janus/internal/ir"
)

// MaxAccountLen bounds an account id in bytes.
const MaxAccountLen = 64

var (
	// ErrNotSigned is returned for origins that carry no signer.
	ErrNotSigned = errors.New("origin is not signed")

	// ErrBadAccount is returned for signed origins whose account id is malformed.
	ErrBadAccount = errors.New("malformed account id")

	// ErrUnsupportedOrigin is returned when no verifier handles the origin kind.
	ErrUnsupportedOrigin = errors.New("unsupported origin")
)

// ValidateAccount checks the shape of an account id: non-empty, at most
// MaxAccountLen bytes of valid UTF-8, no whitespace or control characters.
func ValidateAccount(id ir.AccountID) error {
	s := string(id)
	if s == "" {
		return fmt.Errorf("%w: empty", ErrBadAccount)
	}
	if len(s) > MaxAccountLen {
		return fmt.Errorf("%w: %d bytes exceeds %d", ErrBadAccount, len(s), MaxAccountLen)
	}
	if !utf8.ValidString(s) {
		return fmt.Errorf("%w: invalid UTF-8", ErrBadAccount)
	}
	for _, r := range s {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return fmt.Errorf("%w: contains %U", ErrBadAccount, r)
		}
	}
	return nil
}

// EnsureSigned accepts signed origins and returns their account id.
// Every other origin kind is rejected, root included.
type EnsureSigned struct{}

// Verify implements support.Verifier.
func (EnsureSigned) Verify(_ context.Context, o ir.Origin) (ir.AccountID, error) {
	if o.Kind != ir.OriginSigned {
		return "", fmt.Errorf("%w: %s", ErrNotSigned, o)
	}
	if err := ValidateAccount(o.Account); err != nil {
		return "", err
	}
	return o.Account, nil
}
