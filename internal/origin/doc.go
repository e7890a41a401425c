// Package origin implements the identity verifiers the host hands to pallets.
//
// A verifier turns the raw origin attached to a call into an account id or
// rejects it. Pallets never see why an origin was rejected, only that it was.
//
// Verifiers:
//   - EnsureSigned accepts signed origins with a well-formed account id
//   - Keyring resolves development names (alice, bob) before EnsureSigned
//   - JWTVerifier accepts bearer origins carrying an EdDSA-signed token
//   - Chain routes an origin to the verifier registered for its kind
package origin
