package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/roach88/janus/internal/ir"
)

// marshalObject converts a payload or argument object to canonical JSON TEXT.
func marshalObject(obj ir.Object) (string, error) {
	if obj == nil {
		obj = ir.Object{}
	}
	data, err := ir.MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("marshal object: %w", err)
	}
	return string(data), nil
}

// unmarshalObject parses canonical JSON TEXT back into an Object.
// Large integers keep their precision (see ir.Object.UnmarshalJSON).
func unmarshalObject(data string) (ir.Object, error) {
	if data == "" || data == "{}" {
		return ir.Object{}, nil
	}
	var obj ir.Object
	if err := json.Unmarshal([]byte(data), &obj); err != nil {
		return nil, fmt.Errorf("unmarshal object: %w", err)
	}
	return obj, nil
}

// marshalOrigin converts an origin to JSON TEXT. Bearer tokens never reach disk.
func marshalOrigin(o ir.Origin) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(o.Redacted()); err != nil {
		return "", fmt.Errorf("marshal origin: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}

func unmarshalOrigin(data string) (ir.Origin, error) {
	var o ir.Origin
	if data == "" || data == "{}" {
		return o, nil
	}
	if err := json.Unmarshal([]byte(data), &o); err != nil {
		return ir.Origin{}, fmt.Errorf("unmarshal origin: %w", err)
	}
	return o, nil
}
