package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotAuthenticated is returned by operations that need a logged-in user.
var ErrNotAuthenticated = errors.New("not authenticated")

// Error is a request the backend rejected.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("api: %d %s", e.StatusCode, e.Message)
}

func statusIs(err error, code int) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}

// IsValidation reports whether err is a rejected request body (HTTP 400).
// Validation errors are meant for the user; they are never retried.
func IsValidation(err error) bool {
	return statusIs(err, http.StatusBadRequest)
}

// IsUnauthorized reports whether err is an HTTP 401.
func IsUnauthorized(err error) bool {
	return statusIs(err, http.StatusUnauthorized)
}

// IsNotFound reports whether err is an HTTP 404.
func IsNotFound(err error) bool {
	return statusIs(err, http.StatusNotFound)
}
