package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingCredential is returned when no CJ access token is configured.
	// It is raised before any upstream call is attempted.
	ErrMissingCredential = errors.New("CJ access token is missing (set CJ_TOKEN or CJFEED_CJ_ACCESS_TOKEN)")

	// ErrUpstreamFailure is returned when a CJ API request fails
	ErrUpstreamFailure = errors.New("CJ API request failed")
)

// UpstreamError reports a non-success HTTP status from the CJ API
type UpstreamError struct {
	Endpoint   string
	StatusCode int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("CJ %s error: %d", e.Endpoint, e.StatusCode)
}

// Unwrap lets callers match any upstream failure with errors.Is(err, ErrUpstreamFailure)
func (e *UpstreamError) Unwrap() error {
	return ErrUpstreamFailure
}
