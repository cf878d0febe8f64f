// Package apperr defines the typed errors the service raises. Every failure
// carries an HTTP status and a caller-safe message; collaborator internals
// (hostnames, stack traces, driver errors) never leak into Message.
package apperr

import "net/http"

// Error is a failure with an attached HTTP status. Code mirrors Status unless
// a finer-grained application code is ever introduced.
type Error struct {
	Status  int
	Code    int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// New creates an Error with Code equal to Status.
func New(status int, message string) *Error {
	return &Error{Status: status, Code: status, Message: message}
}

// BadRequest signals malformed or missing request fields.
func BadRequest(message string) *Error {
	return New(http.StatusBadRequest, message)
}

// Unauthorized signals a missing, invalid, or expired token.
func Unauthorized(message string) *Error {
	return New(http.StatusUnauthorized, message)
}

// Forbidden signals a failed ownership check or a traversal attempt.
func Forbidden(message string) *Error {
	return New(http.StatusForbidden, message)
}

// NotFound signals that the target object does not exist.
func NotFound(message string) *Error {
	return New(http.StatusNotFound, message)
}

// TooManyRequests signals an exceeded issuance quota.
func TooManyRequests(message string) *Error {
	return New(http.StatusTooManyRequests, message)
}

// Unavailable signals a token-store or storage-collaborator failure.
func Unavailable(message string) *Error {
	return New(http.StatusServiceUnavailable, message)
}
