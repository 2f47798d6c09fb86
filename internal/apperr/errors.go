// Package apperr provides coded application errors that map onto HTTP statuses.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes
const (
	CodeInternal     = "INTERNAL_ERROR"
	CodeInvalidInput = "INVALID_INPUT"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodeFetch        = "FETCH_ERROR"
	CodeUpstream     = "UPSTREAM_ERROR"
)

// Error is a structured application error.
type Error struct {
	Code       string      `json:"error"`
	Message    string      `json:"message"`
	HTTPStatus int         `json:"-"`
	Details    interface{} `json:"details,omitempty"`
	Err        error       `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target carries the same code, so sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithDetails returns a copy of e carrying details.
func (e *Error) WithDetails(details interface{}) *Error {
	cp := *e
	cp.Details = details
	return &cp
}

// WithError returns a copy of e wrapping err.
func (e *Error) WithError(err error) *Error {
	cp := *e
	cp.Err = err
	return &cp
}

// New creates a new Error.
func New(code, message string, httpStatus int) *Error {
	return &Error{Code: code, Message: message, HTTPStatus: httpStatus}
}

// Wrap wraps an existing error with a code and message.
func Wrap(err error, code, message string, httpStatus int) *Error {
	return &Error{Code: code, Message: message, HTTPStatus: httpStatus, Err: err}
}

// Sentinels for errors.Is checks.
var (
	ErrInternal     = New(CodeInternal, "Internal server error", http.StatusInternalServerError)
	ErrInvalidInput = New(CodeInvalidInput, "Invalid input", http.StatusBadRequest)
	ErrNotFound     = New(CodeNotFound, "Resource not found", http.StatusNotFound)
	ErrConflict     = New(CodeConflict, "Resource conflict", http.StatusConflict)
	ErrFetch        = New(CodeFetch, "Fetch failed", http.StatusInternalServerError)
	ErrUpstream     = New(CodeUpstream, "Upstream error", http.StatusBadGateway)
)

// InvalidInput builds a 400 error.
func InvalidInput(message string) *Error {
	return New(CodeInvalidInput, message, http.StatusBadRequest)
}

// NotFound builds a 404 error.
func NotFound(message string) *Error {
	return New(CodeNotFound, message, http.StatusNotFound)
}

// Conflict builds a 409 error.
func Conflict(message string) *Error {
	return New(CodeConflict, message, http.StatusConflict)
}

// Fetch builds a fetch failure. status is the upstream HTTP status, or 0 for transport errors.
func Fetch(status int, err error) *Error {
	msg := "Failed to fetch"
	if status != 0 {
		msg = fmt.Sprintf("Failed to fetch: %d", status)
	}
	e := Wrap(err, CodeFetch, msg, http.StatusInternalServerError)
	if status != 0 {
		e.Details = map[string]int{"status": status}
	}
	return e
}

// Upstream builds an error for a misbehaving third-party API.
func Upstream(message string, err error) *Error {
	return Wrap(err, CodeUpstream, message, http.StatusBadGateway)
}

// Internal wraps an unexpected error.
func Internal(err error) *Error {
	return Wrap(err, CodeInternal, "Internal server error", http.StatusInternalServerError)
}

// As extracts an *Error from err.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// HTTPStatus returns the HTTP status for err, defaulting to 500.
func HTTPStatus(err error) int {
	if e, ok := As(err); ok && e.HTTPStatus != 0 {
		return e.HTTPStatus
	}
	return http.StatusInternalServerError
}

// CodeOf returns the code for err, defaulting to INTERNAL_ERROR.
func CodeOf(err error) string {
	if e, ok := As(err); ok {
		return e.Code
	}
	return CodeInternal
}

// FetchStatus returns the upstream status carried by a fetch error, or 0.
func FetchStatus(err error) int {
	e, ok := As(err)
	if !ok || e.Code != CodeFetch {
		return 0
	}
	if d, ok := e.Details.(map[string]int); ok {
		return d["status"]
	}
	return 0
}
