package fetch

import (
	"errors"
	"fmt"
)

// Fetch errors. Callers branch on them with errors.Is.
var (
	// ErrInvalidURL is returned when the target is not an absolute http(s) URL.
	ErrInvalidURL = errors.New("invalid URL: expected an absolute http or https address")

	// ErrStatus is wrapped by StatusError for non-2xx responses.
	ErrStatus = errors.New("unexpected HTTP status")

	// ErrTimeout is returned when a request exceeds its time bound.
	ErrTimeout = errors.New("request timed out")

	// ErrDisallowedByRobots is returned when robots.txt forbids the page.
	ErrDisallowedByRobots = errors.New("disallowed by robots.txt")

	// ErrInvalidProxyAddress is returned when the proxy address format is invalid.
	ErrInvalidProxyAddress = errors.New("invalid proxy address format: expected host:port")
)

// StatusError reports a non-2xx response.
type StatusError struct {
	URL        string
	StatusCode int
}

// Error implements error.
func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %d for %s", ErrStatus, e.StatusCode, e.URL)
}

// Unwrap lets errors.Is match ErrStatus.
func (e *StatusError) Unwrap() error {
	return ErrStatus
}
