package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the service layer that a client can act on
// unwraps to one of these.
var (
	ErrNotFound      = errors.New("not found")
	ErrValidation    = errors.New("validation failed")
	ErrNotConfigured = errors.New("not configured")
	ErrConflict      = errors.New("conflict")
)

// Error is a domain failure with a human-readable message.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func NotFoundf(format string, args ...any) error {
	return &Error{Kind: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}

func Invalidf(format string, args ...any) error {
	return &Error{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

func NotConfiguredf(format string, args ...any) error {
	return &Error{Kind: ErrNotConfigured, Message: fmt.Sprintf(format, args...)}
}

func Conflictf(format string, args ...any) error {
	return &Error{Kind: ErrConflict, Message: fmt.Sprintf(format, args...)}
}
