// Package errors provides the categorized error type used across Lumora.
// Every failure a turn can hit maps to one Kind, which the HTTP layer turns
// into a status code and the orchestrator turns into a transcript message.
package errors

import (
	"errors"
	"fmt"
)

// Kind classifies an error by the stage that produced it.
type Kind string

const (
	KindUnsupportedInput Kind = "UNSUPPORTED_INPUT"
	KindDecode           Kind = "DECODE"
	KindProvider         Kind = "PROVIDER"
	KindExecution        Kind = "EXECUTION"
	KindUnimplemented    Kind = "UNIMPLEMENTED"
	KindConflict         Kind = "CONFLICT"
	KindNotFound         Kind = "NOT_FOUND"
	KindInternal         Kind = "INTERNAL"
)

// Error is the structured error type. Message is user-facing.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

// Error returns the message, with the cause appended when present.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches another *Error with the same kind and message, so sentinel
// values declared with New can be used with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Kind == t.Kind && e.Message == t.Message
	}
	return false
}

// New creates an error without a cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an error around cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
