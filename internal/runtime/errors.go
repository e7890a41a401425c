package runtime

import (
	"errors"
	"fmt"
)

// RuntimeErrorCode categorizes errors raised by the host rather than a pallet.
type RuntimeErrorCode string

const (
	// ErrCodeUnknownCall: no pallet function matches (module, function).
	ErrCodeUnknownCall RuntimeErrorCode = "UNKNOWN_CALL"

	// ErrCodeInvalidArgs: the arguments do not decode into the function's parameters.
	ErrCodeInvalidArgs RuntimeErrorCode = "INVALID_ARGS"

	// ErrCodeDispatchFailed: storage, journal or event log failed mid-call.
	// The call was rolled back.
	ErrCodeDispatchFailed RuntimeErrorCode = "DISPATCH_FAILED"
)

// RuntimeError represents an error detected by the host.
type RuntimeError struct {
	Code     RuntimeErrorCode
	Message  string
	Module   string
	Function string
	Err      error // Underlying cause, if any
}

func (e *RuntimeError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Module != "" {
		msg = fmt.Sprintf("%s (call=%s.%s)", msg, e.Module, e.Function)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// ErrorCode returns the RuntimeErrorCode in err's chain, or "" if there is none.
func ErrorCode(err error) RuntimeErrorCode {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code
	}
	return ""
}

func newUnknownCall(module, function string) *RuntimeError {
	return &RuntimeError{
		Code:     ErrCodeUnknownCall,
		Message:  "no such call",
		Module:   module,
		Function: function,
	}
}

func newInvalidArgs(module, function string, err error) *RuntimeError {
	return &RuntimeError{
		Code:     ErrCodeInvalidArgs,
		Message:  "arguments do not match",
		Module:   module,
		Function: function,
		Err:      err,
	}
}

func newDispatchFailed(module, function string, err error) *RuntimeError {
	return &RuntimeError{
		Code:     ErrCodeDispatchFailed,
		Message:  "call rolled back",
		Module:   module,
		Function: function,
		Err:      err,
	}
}
