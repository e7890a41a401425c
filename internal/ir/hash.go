package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// The version suffix leaves room for a future algorithm change.
const (
	DomainCall  = "janus/call/v1"
	DomainEvent = "janus/event/v1"
)

// hashWithDomain computes SHA256(domain || 0x00 || data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// CallID computes the content-addressed ID of a dispatched call.
//
// The origin is excluded: the ID names what was asked for, not who asked.
// The origin is still journaled next to the call for audit.
func CallID(token, module, function string, args Object, seq int64) (string, error) {
	if args == nil {
		args = Object{}
	}
	canonical, err := MarshalCanonical(Object{
		"token":    String(token),
		"module":   String(module),
		"function": String(function),
		"args":     args,
		"seq":      Int(seq),
	})
	if err != nil {
		return "", fmt.Errorf("CallID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainCall, canonical), nil
}

// EventID computes the content-addressed ID of a deposited event.
func EventID(callID, pallet, variant string, payload Object, seq int64) (string, error) {
	if payload == nil {
		payload = Object{}
	}
	canonical, err := MarshalCanonical(Object{
		"call_id": String(callID),
		"pallet":  String(pallet),
		"variant": String(variant),
		"payload": payload,
		"seq":     Int(seq),
	})
	if err != nil {
		return "", fmt.Errorf("EventID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainEvent, canonical), nil
}

// MustCallID is like CallID but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustCallID(token, module, function string, args Object, seq int64) string {
	id, err := CallID(token, module, function, args, seq)
	if err != nil {
		panic(err)
	}
	return id
}
