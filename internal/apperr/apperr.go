package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so HTTP boundaries can map it to a status
// without string-matching messages.
type Kind int

const (
	// KindInternal is the default for unexpected failures.
	KindInternal Kind = iota
	// KindUnauthenticated indicates a missing, invalid, expired or
	// wrong-kind credential.
	KindUnauthenticated
	// KindForbidden indicates a valid identity without rights on the resource.
	KindForbidden
	// KindValidation indicates malformed caller input.
	KindValidation
	// KindNotFound indicates an absent or soft-deleted entity.
	KindNotFound
	// KindConflict indicates a uniqueness violation.
	KindConflict
)

// Error carries a kind, a short machine code and a caller-safe message.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New builds an error of the given kind.
func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Wrap preserves the cause for logging while keeping the outward message.
func Wrap(kind Kind, code, message string, err error) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Err: err}
}

// Unauthenticated builds a credential failure.
func Unauthenticated(message string) *Error {
	return New(KindUnauthenticated, "AUTH", message)
}

// Forbidden builds an authorization failure.
func Forbidden(message string) *Error {
	return New(KindForbidden, "FORBIDDEN", message)
}

// Validation builds a malformed-input failure.
func Validation(message string) *Error {
	return New(KindValidation, "VALIDATION", message)
}

// NotFound builds an absent-entity failure.
func NotFound(message string) *Error {
	return New(KindNotFound, "NOT_FOUND", message)
}

// Conflict builds a uniqueness failure.
func Conflict(message string) *Error {
	return New(KindConflict, "CONFLICT", message)
}

// Internal wraps an unexpected failure behind a generic message.
func Internal(err error) *Error {
	return Wrap(KindInternal, "INTERNAL", "internal error", err)
}

// KindOf extracts the kind from any error; non-app errors are internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
