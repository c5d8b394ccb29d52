package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure and decides the HTTP status it is rendered with.
type Kind string

const (
	KindValidation Kind = "validation"
	KindConflict   Kind = "conflict"
	KindAuth       Kind = "auth"
	KindForbidden  Kind = "forbidden"
	KindNotFound   Kind = "not_found"
	KindExpired    Kind = "expired"
	KindInternal   Kind = "internal"
)

// Error is the application error carried from services to the HTTP boundary.
// Message is safe to show to clients; Err is the cause and is only logged.
type Error struct {
	Kind    Kind
	Message string
	Details any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Status maps the kind to its HTTP status code.
func (e *Error) Status() int {
	switch e.Kind {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindExpired:
		return http.StatusGone
	default:
		return http.StatusInternalServerError
	}
}

// WithDetails attaches field level details (e.g. validation messages).
func (e *Error) WithDetails(details any) *Error {
	e.Details = details
	return e
}

// WithErr records the underlying cause.
func (e *Error) WithErr(err error) *Error {
	e.Err = err
	return e
}

func New(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Validation(message string) *Error { return New(KindValidation, message, nil) }
func Conflict(message string) *Error   { return New(KindConflict, message, nil) }
func Auth(message string) *Error       { return New(KindAuth, message, nil) }
func Forbidden(message string) *Error  { return New(KindForbidden, message, nil) }
func NotFound(message string) *Error   { return New(KindNotFound, message, nil) }
func Expired(message string) *Error    { return New(KindExpired, message, nil) }

// Internal wraps an unexpected cause. The cause never reaches the client.
func Internal(message string, err error) *Error { return New(KindInternal, message, err) }

// As extracts an *Error from err.
func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// KindOf returns the kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	if ae, ok := As(err); ok {
		return ae.Kind
	}
	return KindInternal
}

// StatusOf returns the HTTP status for err.
func StatusOf(err error) int {
	if ae, ok := As(err); ok {
		return ae.Status()
	}
	return http.StatusInternalServerError
}
