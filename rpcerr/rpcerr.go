// Package rpcerr defines the normalized error shape every failed provider
// request resolves to: a stable integer code, a human-readable message and an
// optional data payload.
//
// Callers branch on Code rather than matching message strings:
//
//	_, err := p.Request(ctx, "eth_sendTransaction", params)
//	var rpcErr *rpcerr.Error
//	if errors.As(err, &rpcErr) && rpcErr.Code == rpcerr.CodeUserRejected {
//	    // the user declined in their wallet
//	}
package rpcerr

import "fmt"

// Error is a provider RPC error. Code is always an integer and Message is
// always non-empty. Data carries method- or transport-defined detail and may
// be nil. An Error is never mutated after creation.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`

	cause error
}

// New creates an Error with the given code and message. An empty message is
// replaced by the conventional text for the code, falling back to a generic
// one so the non-empty-message invariant always holds.
func New(code int, message string) *Error {
	if message == "" {
		message = CodeText(code)
	}
	if message == "" {
		message = fmt.Sprintf("provider error %d", code)
	}
	return &Error{Code: code, Message: message}
}

// Newf creates an Error with a formatted message.
func Newf(code int, format string, args ...interface{}) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// WithData returns a copy of e carrying the given data payload.
func (e *Error) WithData(data any) *Error {
	dup := *e
	dup.Data = data
	return &dup
}

// WithCause returns a copy of e that wraps the given cause, keeping the
// original failure reachable through errors.Is and errors.As.
func (e *Error) WithCause(cause error) *Error {
	dup := *e
	dup.cause = cause
	return &dup
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("provider error %d: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// ErrorCode returns the error code. Together with ErrorData this matches the
// method set go-ethereum's rpc package expects from JSON-RPC errors, so pulse
// errors can cross package boundaries without an import.
func (e *Error) ErrorCode() int {
	return e.Code
}

// ErrorData returns the attached data payload, or nil.
func (e *Error) ErrorData() any {
	return e.Data
}
