package catalog

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so transports can map it onto their own status codes
type Kind string

const (
	KindValidation   Kind = "validation"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindNotFound     Kind = "not_found"
	KindConflict     Kind = "conflict"
	KindExternal     Kind = "external_service"
	KindInternal     Kind = "internal"
)

// Storage adapters return these so the service can classify failures
// without knowing the driver.
var (
	ErrNoRows          = errors.New("record not found")
	ErrUniqueViolation = errors.New("unique constraint violated")
)

// Error is the failure type returned by every Service operation
type Error struct {
	Kind    Kind
	Message string
	// Fields holds per-field validation messages keyed by the JSON field name
	Fields map[string]string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of err, or KindInternal when err is not an *Error
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given Kind
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

func validationError(message string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

func unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

func forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

func notFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

func external(message string, err error) *Error {
	return &Error{Kind: KindExternal, Message: message, Err: err}
}

func internal(op string, err error) *Error {
	return &Error{Kind: KindInternal, Message: fmt.Sprintf("failed to %s", op), Err: err}
}

// classify maps storage sentinel errors onto service errors
func classify(op string, err error, notFoundMessage string) error {
	var ce *Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &ce):
		return err
	case errors.Is(err, ErrNoRows):
		return notFound(notFoundMessage)
	case errors.Is(err, ErrUniqueViolation):
		return conflict("Project with this token already exists")
	default:
		return internal(op, err)
	}
}
