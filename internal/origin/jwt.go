package origin

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/roach88/janus/internal/ir"
)

// ErrBadToken is returned for bearer origins whose token does not verify.
var ErrBadToken = errors.New("invalid bearer token")

// JWTConfig defines how bearer tokens are verified.
type JWTConfig struct {
	Issuer string
	Key    ed25519.PublicKey
	Leeway time.Duration
	Now    func() time.Time
}

// JWTVerifier accepts bearer origins carrying an EdDSA-signed JWT.
// The token's subject becomes the account id.
type JWTVerifier struct {
	cfg JWTConfig
}

// NewJWTVerifier validates cfg and returns a verifier.
func NewJWTVerifier(cfg JWTConfig) (*JWTVerifier, error) {
	cfg.Issuer = strings.TrimSpace(cfg.Issuer)
	if cfg.Issuer == "" {
		return nil, errors.New("jwt issuer is required")
	}
	if len(cfg.Key) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("jwt public key must be %d bytes", ed25519.PublicKeySize)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &JWTVerifier{cfg: cfg}, nil
}

// ParsePublicKey decodes a base64 (raw or padded) Ed25519 public key.
func ParsePublicKey(value string) (ed25519.PublicKey, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, errors.New("empty public key")
	}
	b, err := base64.RawStdEncoding.DecodeString(value)
	if err != nil {
		b, err = base64.StdEncoding.DecodeString(value)
		if err != nil {
			return nil, fmt.Errorf("decode public key: %w", err)
		}
	}
	if len(b) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("public key must be %d bytes, got %d", ed25519.PublicKeySize, len(b))
	}
	return ed25519.PublicKey(b), nil
}

// Verify implements support.Verifier.
func (v *JWTVerifier) Verify(_ context.Context, o ir.Origin) (ir.AccountID, error) {
	if o.Kind != ir.OriginBearer {
		return "", fmt.Errorf("%w: %s", ErrNotSigned, o)
	}
	token := strings.TrimSpace(o.Token)
	if token == "" {
		return "", fmt.Errorf("%w: empty", ErrBadToken)
	}

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return v.cfg.Key, nil
	},
		jwt.WithValidMethods([]string{"EdDSA"}),
		jwt.WithIssuer(v.cfg.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(v.cfg.Leeway),
		jwt.WithTimeFunc(v.cfg.Now),
	)
	if err != nil {
		return "", mapJWTError(err)
	}

	account := ir.AccountID(claims.Subject)
	if err := ValidateAccount(account); err != nil {
		return "", fmt.Errorf("%w: subject: %v", ErrBadToken, err)
	}
	return account, nil
}

// mapJWTError folds library errors into ErrBadToken with a short reason.
func mapJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrEd25519Verification):
		return fmt.Errorf("%w: signature is invalid", ErrBadToken)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: expired", ErrBadToken)
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return fmt.Errorf("%w: not active yet", ErrBadToken)
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return fmt.Errorf("%w: issuer mismatch", ErrBadToken)
	case errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return fmt.Errorf("%w: exp is required", ErrBadToken)
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: unverifiable", ErrBadToken)
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: malformed", ErrBadToken)
	default:
		return fmt.Errorf("%w: %v", ErrBadToken, err)
	}
}
