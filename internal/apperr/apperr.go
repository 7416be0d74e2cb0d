// Package apperr defines the error kinds the core services return. Every
// failure crossing a service boundary carries a Kind so the HTTP layer can
// map it to a status code without inspecting error strings.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for boundary handling.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindValidation
	KindAuthentication
	KindAuthorization
	KindNotFound
	KindState
	KindDependency
)

// String returns a short label for logging.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthentication:
		return "authentication"
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not_found"
	case KindState:
		return "state"
	case KindDependency:
		return "dependency"
	default:
		return "unknown"
	}
}

// Error is a classified application error. Message is safe to surface to
// clients; Err holds the underlying cause, if any.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap exposes the underlying cause to errors.Is/As.
func (e *Error) Unwrap() error { return e.Err }

// New builds an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds an error of the given kind around an underlying cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Validation reports malformed or missing input.
func Validation(message string) *Error { return New(KindValidation, message) }

// Validationf reports malformed or missing input with formatting.
func Validationf(format string, args ...any) *Error {
	return New(KindValidation, fmt.Sprintf(format, args...))
}

// Authentication reports bad credentials or an invalid token.
func Authentication(message string) *Error { return New(KindAuthentication, message) }

// Authorization reports an authenticated caller with insufficient rights.
func Authorization(message string) *Error { return New(KindAuthorization, message) }

// NotFound reports an unknown identifier.
func NotFound(message string) *Error { return New(KindNotFound, message) }

// State reports an illegal state transition.
func State(message string) *Error { return New(KindState, message) }

// Dependency reports an unavailable backing service. Callers may retry.
func Dependency(message string, err error) *Error {
	return Wrap(KindDependency, message, err)
}

// KindOf extracts the Kind from err, or KindUnknown if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool { return KindOf(err) == kind }
