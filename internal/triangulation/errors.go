package triangulation

import (
	"errors"
	"fmt"
)

// Code is the integer failure code surfaced to callers. CodeOK is zero.
type Code int

const (
	CodeOK Code = iota
	// CodeRequestAllocation: the companion could not construct an outbound request.
	CodeRequestAllocation
	// CodeDeviceResponse: the companion answered with an explicit error.
	CodeDeviceResponse
	// CodeTransport: the request could not be delivered or no response arrived.
	CodeTransport
	// CodeDisconnectTimeout: the radio stayed associated past the disconnect bound.
	CodeDisconnectTimeout
	// CodeScanFailed: the radio reported a failed scan.
	CodeScanFailed
	// CodeRadioMode: the radio could not be put into station mode.
	CodeRadioMode
	// CodeConfigSnapshot: capturing or restoring prior configuration failed.
	CodeConfigSnapshot

	// CodeUnknown is returned by CodeOf for errors not produced by this package.
	CodeUnknown Code = 255
)

var codeNames = map[Code]string{
	CodeOK:                "ok",
	CodeRequestAllocation: "request allocation failed",
	CodeDeviceResponse:    "device error response",
	CodeTransport:         "transport failure",
	CodeDisconnectTimeout: "disconnect timeout",
	CodeScanFailed:        "scan failed",
	CodeRadioMode:         "station mode failed",
	CodeConfigSnapshot:    "config snapshot failed",
	CodeUnknown:           "unknown error",
}

func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("code(%d)", int(c))
}

// Sentinels for errors.Is. Matching compares codes only.
var (
	ErrRequestAllocation = &Error{Code: CodeRequestAllocation}
	ErrDeviceResponse    = &Error{Code: CodeDeviceResponse}
	ErrTransport         = &Error{Code: CodeTransport}
	ErrDisconnectTimeout = &Error{Code: CodeDisconnectTimeout}
	ErrScanFailed        = &Error{Code: CodeScanFailed}
	ErrRadioMode         = &Error{Code: CodeRadioMode}
	ErrConfigSnapshot    = &Error{Code: CodeConfigSnapshot}
)

// Error carries a failure code, the operation that produced it and the
// underlying cause, if any.
type Error struct {
	Code Code
	Op   string
	Err  error
}

func (e *Error) Error() string {
	msg := "triangulation"
	if e.Op != "" {
		msg += ": " + e.Op
	}
	msg += ": " + e.Code.String()
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// CodeOf returns the failure code carried by err. A nil error is CodeOK.
func CodeOf(err error) Code {
	if err == nil {
		return CodeOK
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}
