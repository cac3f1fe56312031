// Package apperr classifies domain errors so transports can map them to
// status codes without knowing every sentinel.
package apperr

import "errors"

type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindForbidden
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// Error is a classified sentinel. Compare with errors.Is against the
// package-level value; identity is by pointer.
type Error struct {
	kind    Kind
	code    string
	message string
}

func New(kind Kind, code, message string) *Error {
	return &Error{kind: kind, code: code, message: message}
}

func (e *Error) Error() string {
	return e.message
}

func (e *Error) Kind() Kind {
	return e.kind
}

func (e *Error) Code() string {
	return e.code
}

var ErrForbidden = New(KindForbidden, "forbidden", "forbidden")

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var validation *ValidationError
	if errors.As(err, &validation) {
		return KindValidation
	}
	var classified *Error
	if errors.As(err, &classified) {
		return classified.kind
	}
	return KindUnknown
}

func CodeOf(err error) string {
	var validation *ValidationError
	if errors.As(err, &validation) {
		return "invalid_request"
	}
	var classified *Error
	if errors.As(err, &classified) {
		return classified.code
	}
	return "internal_error"
}
