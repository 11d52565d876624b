// Package aferr defines the error taxonomy shared across service and HTTP
// layers. Errors are created at the point of failure, wrapped with %w
// through the layers, and translated to response envelopes only at the
// HTTP boundary.
package aferr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind labels match the status strings used in API envelopes.
type Kind string

const (
	KindBadRequest   Kind = "BAD_REQUEST"
	KindUnauthorized Kind = "UNAUTHORIZED"
	KindNotFound     Kind = "NOT_FOUND"
	KindForbidden    Kind = "FORBIDDEN"
	KindValidation   Kind = "VALIDATION_ERROR"
	KindConflict     Kind = "CONFLICT"
	KindGone         Kind = "ERROR_GONE"
	KindUpstream     Kind = "ERROR_UPSTREAM"
	KindInternal     Kind = "ERROR"
)

// Error is a classified application error.
type Error struct {
	Kind Kind
	Msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.err }

// HTTPStatus maps the error kind to its response code.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindConflict:
		return http.StatusConflict
	case KindGone:
		return http.StatusGone
	case KindUpstream:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// Wrap attaches a cause; e is returned for chaining.
func (e *Error) Wrap(err error) *Error {
	e.err = err
	return e
}

func newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func BadRequestf(format string, args ...any) *Error { return newf(KindBadRequest, format, args...) }
func Unauthorizedf(format string, args ...any) *Error {
	return newf(KindUnauthorized, format, args...)
}
func NotFoundf(format string, args ...any) *Error   { return newf(KindNotFound, format, args...) }
func Forbiddenf(format string, args ...any) *Error  { return newf(KindForbidden, format, args...) }
func Validationf(format string, args ...any) *Error { return newf(KindValidation, format, args...) }
func Conflictf(format string, args ...any) *Error   { return newf(KindConflict, format, args...) }
func Gonef(format string, args ...any) *Error       { return newf(KindGone, format, args...) }
func Upstreamf(format string, args ...any) *Error   { return newf(KindUpstream, format, args...) }
func Internalf(format string, args ...any) *Error   { return newf(KindInternal, format, args...) }

// As extracts an *Error from an error chain.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// IsNotFound reports whether err is classified NOT_FOUND.
func IsNotFound(err error) bool {
	e, ok := As(err)
	return ok && e.Kind == KindNotFound
}
