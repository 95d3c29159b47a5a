package core

import (
	"context"
	"database/sql/driver"
	"fmt"
	"net"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// Kind classifies an error for callers that must react to it (eg. pick an HTTP status).
type Kind uint8

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindNotFound
	KindUnauthenticated
	KindForbidden
	KindUnavailable
)

var kindNames = map[Kind]string{
	KindInternal:        "internal",
	KindValidation:      "validation",
	KindConflict:        "conflict",
	KindNotFound:        "not_found",
	KindUnauthenticated: "unauthenticated",
	KindForbidden:       "forbidden",
	KindUnavailable:     "unavailable",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", k)
}

// Error is a domain error carrying a Kind and a human-readable reason.
type Error struct {
	Kind   Kind
	Reason string
	Err    error
}

func NewError(kind Kind, reason string) *Error {
	return &Error{Kind: kind, Reason: reason}
}

// E wraps err into a domain error of the given kind.
func E(kind Kind, reason string, err error) error {
	return &Error{Kind: kind, Reason: reason, Err: err}
}

func (e *Error) Error() string {
	if e.Err != nil && e.Reason != "" {
		return e.Reason + ": " + e.Err.Error()
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Reason
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches sentinel errors by identity, or by kind & reason for copies.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e == t || (e.Kind == t.Kind && e.Reason == t.Reason && t.Err == nil)
}

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		if len(err.Fields) > 0 {
			return err.Fields[0].Field + ": " + err.Fields[0].Error
		}
		return "invalid input"
	}
	return err.Err.Error()
}

func (err *ValidationError) Unwrap() error { return err.Err }

// KindOf returns the Kind of the first classified error in err's chain; KindInternal otherwise.
func KindOf(err error) Kind {
	if err == nil {
		return KindInternal
	}

	var domErr *Error
	if errors.As(err, &domErr) {
		return domErr.Kind
	}
	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return KindValidation
	}
	var valErrs validator.ValidationErrors
	if errors.As(err, &valErrs) {
		return KindValidation
	}
	if IsUnavailable(err) {
		return KindUnavailable
	}
	return KindInternal
}

// IsKind reports whether err is classified as kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// IsUnavailable reports whether err looks like a transient infrastructure failure.
func IsUnavailable(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// Unavailable marks err as a transient infrastructure failure.
func Unavailable(err error, reason string) error {
	return E(KindUnavailable, reason, err)
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
