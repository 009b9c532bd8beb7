// Package errors defines the error type returned to HTTP clients.
package errors

import (
	"net/http"
)

// Error is an error with the HTTP status it should be reported with.
type Error struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

func (e *Error) Error() string {
	return e.Message
}

// New returns an *Error with the given message and status.
func New(message string, status int) *Error {
	return &Error{Message: message, Status: status}
}

var (
	ErrBadRequest          = New("bad request", http.StatusBadRequest)
	ErrNotFound            = New("not found", http.StatusNotFound)
	ErrTooManyRequests     = New("too many requests", http.StatusTooManyRequests)
	ErrInternalServerError = New("internal server error", http.StatusInternalServerError)
)

// Status returns the HTTP status for err, defaulting to 500.
func Status(err error) int {
	if e, ok := err.(*Error); ok {
		return e.Status
	}
	return http.StatusInternalServerError
}
