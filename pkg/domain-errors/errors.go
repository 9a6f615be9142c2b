// Package dErrors defines coded errors shared across the service. A code
// classifies the failure for transport mapping and logging; the message is
// safe to show to callers for every code except CodeInternal.
package dErrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error.
type Code string

const (
	// CodeBadRequest marks a request that could not be read at all, such
	// as malformed JSON or a missing body.
	CodeBadRequest Code = "bad_request"
	// CodeValidation marks a well-formed request whose content failed
	// validation.
	CodeValidation Code = "validation_error"
	// CodeUnauthorized marks a missing or unverifiable credential.
	CodeUnauthorized Code = "unauthorized"
	// CodeNotFound marks a lookup whose subject does not exist.
	CodeNotFound Code = "not_found"
	// CodeConflict marks a request that lost a race with concurrent state.
	CodeConflict Code = "conflict"
	// CodeNotReady marks an operation attempted before its dependencies
	// were loaded.
	CodeNotReady Code = "not_ready"
	// CodeCorruptState marks persisted state that exists but cannot be
	// interpreted. It is never a client fault.
	CodeCorruptState Code = "corrupt_state"
	// CodeInternal is the fallback for unclassified failures.
	CodeInternal Code = "internal_error"
)

// Error is a coded domain error. It may wrap an underlying cause.
type Error struct {
	code    Code
	message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

// Unwrap exposes the wrapped cause to errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.cause
}

// New constructs a coded error with a static message.
func New(code Code, message string) error {
	return &Error{code: code, message: message}
}

// Newf constructs a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{code: code, message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error. A nil err yields
// nil so call sites can wrap unconditionally.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{code: code, message: message, cause: err}
}

// CodeOf extracts the code from an error chain, defaulting to CodeInternal
// for errors that carry no code.
func CodeOf(err error) Code {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.code
	}
	return CodeInternal
}

// HasCode reports whether any error in the chain carries the given code.
func HasCode(err error, code Code) bool {
	return CodeOf(err) == code
}

// MessageOf extracts the coded message from an error chain. Uncoded errors
// return their full Error string.
func MessageOf(err error) string {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
