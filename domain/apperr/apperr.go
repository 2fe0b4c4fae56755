// Package apperr defines the error kinds shared by every task and project
// operation. Each kind maps to one distinguishable failure class at the API.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an operation failure.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindNotFound     Kind = "not_found"
	KindPermission   Kind = "permission"
	KindPrecondition Kind = "precondition"
	KindConflict     Kind = "conflict"
	KindInternal     Kind = "internal"
)

// Error is a classified failure with a human-readable message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, apperr.ErrNotFound)
// works regardless of the message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Kind == e.Kind
}

// Sentinels for errors.Is checks.
var (
	ErrValidation   = &Error{Kind: KindValidation}
	ErrNotFound     = &Error{Kind: KindNotFound}
	ErrPermission   = &Error{Kind: KindPermission}
	ErrPrecondition = &Error{Kind: KindPrecondition}
	ErrConflict     = &Error{Kind: KindConflict}
	ErrInternal     = &Error{Kind: KindInternal}
)

func newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) *Error   { return newf(KindValidation, format, args...) }
func NotFound(format string, args ...any) *Error     { return newf(KindNotFound, format, args...) }
func Permission(format string, args ...any) *Error   { return newf(KindPermission, format, args...) }
func Precondition(format string, args ...any) *Error { return newf(KindPrecondition, format, args...) }
func Conflict(format string, args ...any) *Error     { return newf(KindConflict, format, args...) }

// Internal wraps an unexpected collaborator failure.
func Internal(err error, format string, args ...any) *Error {
	e := newf(KindInternal, format, args...)
	e.Err = err
	return e
}

// KindOf reports the kind of err. Unclassified errors are internal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf returns the user-facing message of err. The wrapped cause of an
// internal error is not exposed.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return "internal error"
}

// New rebuilds an error from its wire form.
func New(kind Kind, message string) *Error {
	if kind == "" {
		kind = KindInternal
	}
	return &Error{Kind: kind, Message: message}
}

// Wire is the form an error takes inside a request-reply body, so callers
// on the other side of the bus can recover its kind.
type Wire struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

// ToWire encodes err; nil stays nil.
func ToWire(err error) *Wire {
	if err == nil {
		return nil
	}
	return &Wire{Kind: KindOf(err), Message: MessageOf(err)}
}

// Err decodes w back into an *Error; a nil Wire means success.
func (w *Wire) Err() error {
	if w == nil {
		return nil
	}
	return New(w.Kind, w.Message)
}
