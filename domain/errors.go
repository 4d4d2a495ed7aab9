package domain

import (
	"errors"
	"fmt"
)

// ErrorKind is the stable classification the transport layer maps to a
// status code. Messages carry the human detail; the kind never changes
// between releases.
type ErrorKind string

const (
	KindValidation  ErrorKind = "validation"
	KindNotFound    ErrorKind = "not_found"
	KindConflict    ErrorKind = "conflict"
	KindStorage     ErrorKind = "storage_unavailable"
	KindComputation ErrorKind = "computation"
)

type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func NewValidation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

func NewNotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

func NewConflict(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Msg: fmt.Sprintf(format, args...)}
}

func NewComputation(format string, args ...any) *Error {
	return &Error{Kind: KindComputation, Msg: fmt.Sprintf(format, args...)}
}

// NewStorage wraps a transient upstream failure. Callers may retry; the
// core never does.
func NewStorage(msg string, err error) *Error {
	return &Error{Kind: KindStorage, Msg: msg, Err: err}
}

// KindOf extracts the kind from anywhere in the chain, or "" for untyped
// errors.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
