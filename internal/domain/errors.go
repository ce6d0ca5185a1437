package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Match with errors.Is; the transport layer maps each kind to a status code.
var (
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidRequest    = errors.New("invalid request")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrUnsupportedState  = errors.New("unsupported state")
	ErrConflict          = errors.New("conflict")
)

// ErrConcurrentModification is returned by conditional updates that matched no row.
var ErrConcurrentModification = errors.New("concurrent modification")

// Error is a kinded error whose message is safe to show to the caller.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...any) error {
	return newError(ErrNotFound, format, args...)
}

func Forbiddenf(format string, args ...any) error {
	return newError(ErrForbidden, format, args...)
}

func InvalidRequestf(format string, args ...any) error {
	return newError(ErrInvalidRequest, format, args...)
}

func InvalidTransitionf(format string, args ...any) error {
	return newError(ErrInvalidTransition, format, args...)
}

func UnsupportedStatef(format string, args ...any) error {
	return newError(ErrUnsupportedState, format, args...)
}

func Conflictf(format string, args ...any) error {
	return newError(ErrConflict, format, args...)
}
