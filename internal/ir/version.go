package ir

// Version constants for the journal schema and runtime.
const (
	// IRVersion is the payload/journal format version.
	IRVersion = "1"

	// RuntimeVersion is the janus runtime version.
	RuntimeVersion = "0.1.0"
)
