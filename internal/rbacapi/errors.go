package rbacapi

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrInvalidCredentials is returned by Login for any failed attempt.
	ErrInvalidCredentials = errors.New("rbacapi: incorrect email or password")
	// ErrUnauthorized covers every non-2xx response to an authenticated call.
	ErrUnauthorized = errors.New("rbacapi: not authorized")
)

// StatusError carries the status and server message of a failed call.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("rbacapi: unexpected status %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("rbacapi: unexpected status %d: %s", e.StatusCode, e.Message)
}

// Unwrap collapses all status failures into ErrUnauthorized.
func (e *StatusError) Unwrap() error {
	return ErrUnauthorized
}
