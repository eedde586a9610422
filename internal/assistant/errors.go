package assistant

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation means the question was empty.
	ErrValidation = errors.New("question is required")

	// ErrConfiguration means no API key is configured.
	ErrConfiguration = errors.New("assistant API key is not configured")

	// ErrUpstreamAuth is an HTTP 401 or 403 from the API.
	ErrUpstreamAuth = errors.New("assistant API rejected the credentials")

	// ErrUpstreamQuota is an HTTP 429 from the API.
	ErrUpstreamQuota = errors.New("assistant API quota exceeded")

	// ErrUpstreamGeneric is any other non-2xx response.
	ErrUpstreamGeneric = errors.New("assistant API returned an error")

	// ErrUpstreamEmpty means a 2xx response carried no answer text.
	ErrUpstreamEmpty = errors.New("assistant API returned no answer")

	// ErrUpstreamTimeout means the call exceeded its deadline.
	ErrUpstreamTimeout = errors.New("assistant API timed out")
)

// UpstreamError is a non-2xx response from the API.
type UpstreamError struct {
	StatusCode int
	// Message is error.message from the response body, empty when absent.
	Message string
}

// Error implements error.
func (e *UpstreamError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%v: HTTP %d", e.kind(), e.StatusCode)
	}
	return fmt.Sprintf("%v: HTTP %d: %s", e.kind(), e.StatusCode, e.Message)
}

// Unwrap returns ErrUpstreamAuth, ErrUpstreamQuota or ErrUpstreamGeneric.
func (e *UpstreamError) Unwrap() error {
	return e.kind()
}

func (e *UpstreamError) kind() error {
	switch e.StatusCode {
	case 401, 403:
		return ErrUpstreamAuth
	case 429:
		return ErrUpstreamQuota
	default:
		return ErrUpstreamGeneric
	}
}
