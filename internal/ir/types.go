package ir

import (
	"fmt"
	"strings"
)

// AccountID is the opaque principal produced by a successful origin check.
type AccountID string

// OriginKind distinguishes the forms a call origin can take.
type OriginKind string

const (
	OriginSigned OriginKind = "signed" // account named by the caller
	OriginNone   OriginKind = "none"   // unsigned / anonymous
	OriginRoot   OriginKind = "root"   // privileged host origin
	OriginBearer OriginKind = "bearer" // token issued by an identity provider
)

// Origin is the opaque authentication context presented with a call.
// Nothing in here is trusted until a verifier has accepted it.
type Origin struct {
	Kind    OriginKind `json:"kind"`
	Account AccountID  `json:"account,omitempty"`
	Token   string     `json:"token,omitempty"`
}

// Signed returns a signed origin for account.
func Signed(account AccountID) Origin {
	return Origin{Kind: OriginSigned, Account: account}
}

// None returns the anonymous origin.
func None() Origin {
	return Origin{Kind: OriginNone}
}

// Root returns the root origin.
func Root() Origin {
	return Origin{Kind: OriginRoot}
}

// Bearer returns an origin carrying an identity token.
func Bearer(token string) Origin {
	return Origin{Kind: OriginBearer, Token: token}
}

// Redacted returns a copy safe to journal or log: bearer tokens are dropped.
func (o Origin) Redacted() Origin {
	o.Token = ""
	return o
}

// String renders the origin in the form accepted by ParseOrigin, minus tokens.
func (o Origin) String() string {
	switch o.Kind {
	case OriginSigned:
		return "signed:" + string(o.Account)
	case OriginBearer:
		return "bearer:<redacted>"
	case "":
		return "<empty>"
	default:
		return string(o.Kind)
	}
}

// ParseOrigin parses "none", "root", "signed:<account>" or "bearer:<token>".
//
// Only the shape is checked here. An empty or malformed account still parses
// so that the verifier, not the parser, decides whether to reject it.
func ParseOrigin(s string) (Origin, error) {
	s = strings.TrimSpace(s)
	kind, rest, hasRest := strings.Cut(s, ":")
	switch OriginKind(kind) {
	case OriginNone, OriginRoot:
		if hasRest {
			return Origin{}, fmt.Errorf("origin %q takes no argument", kind)
		}
		return Origin{Kind: OriginKind(kind)}, nil
	case OriginSigned:
		if !hasRest {
			return Origin{}, fmt.Errorf("signed origin requires an account: signed:<account>")
		}
		return Signed(AccountID(rest)), nil
	case OriginBearer:
		if !hasRest {
			return Origin{}, fmt.Errorf("bearer origin requires a token: bearer:<token>")
		}
		return Bearer(rest), nil
	default:
		return Origin{}, fmt.Errorf("unknown origin kind %q: must be one of none, root, signed, bearer", kind)
	}
}

// CallRecord is the journaled form of a dispatched call.
type CallRecord struct {
	ID       string `json:"id"`
	Token    string `json:"token"`
	Module   string `json:"module"`
	Function string `json:"function"`
	Args     Object `json:"args"`
	Origin   Origin `json:"origin"`  // Always redacted
	Seq      int64  `json:"seq"`
	Outcome  string `json:"outcome"` // "Success" or the error name, e.g. "BadOrigin"
}

// OutcomeSuccess is the journaled outcome of a call that committed.
const OutcomeSuccess = "Success"

// EventRecord is one entry of the append-only event log.
// Pallet/PalletIndex and Variant/EventIndex form the tagged variant that routes
// a pallet's event into the runtime-wide event representation.
type EventRecord struct {
	ID          string `json:"id"`
	Seq         int64  `json:"seq"`
	CallID      string `json:"call_id"`
	Pallet      string `json:"pallet"`
	PalletIndex uint8  `json:"pallet_index"`
	Variant     string `json:"variant"`
	EventIndex  uint8  `json:"event_index"`
	Payload     Object `json:"payload"`
}
