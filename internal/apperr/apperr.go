// Package apperr is the error taxonomy shared by services and the HTTP layer.
package apperr

import (
	"errors"
	"net/http"
)

type Kind string

const (
	KindAuthentication Kind = "authentication"
	KindAuthorization  Kind = "authorization"
	KindValidation     Kind = "validation"
	KindNotFound       Kind = "not_found"
	KindConflict       Kind = "conflict"
	KindRateLimited    Kind = "rate_limited"
	KindInternal       Kind = "internal"
)

type Error struct {
	Kind    Kind
	Code    string
	Message string
	Details map[string]any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on Kind and Code so sentinel values work with errors.Is even
// after WithDetails has produced a copy.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code
}

// HTTPStatus maps the kind onto a status code. Conflicts are reported as 400
// with retry guidance, matching what clients already handle.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// WithDetails returns a copy carrying the extra key/value.
func (e *Error) WithDetails(key string, value any) *Error {
	cp := *e
	cp.Details = make(map[string]any, len(e.Details)+1)
	for k, v := range e.Details {
		cp.Details[k] = v
	}
	cp.Details[key] = value
	return &cp
}

func (e *Error) Wrap(err error) *Error {
	cp := *e
	cp.Err = err
	return &cp
}

func New(kind Kind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

func Unauthenticated(msg string) *Error {
	return New(KindAuthentication, "UNAUTHENTICATED", msg)
}

func Forbidden(msg string) *Error {
	return New(KindAuthorization, "FORBIDDEN", msg)
}

func Validation(msg string) *Error {
	return New(KindValidation, "VALIDATION_FAILED", msg)
}

func NotFound(msg string) *Error {
	return New(KindNotFound, "NOT_FOUND", msg)
}

func Conflict(code, msg string) *Error {
	return New(KindConflict, code, msg)
}

func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Code: "INTERNAL", Message: msg, Err: err}
}

// From returns the *Error in err's chain, or wraps err as internal.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal("unexpected error", err)
}

func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
