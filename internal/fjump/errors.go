// Package fjump provides an HTTP client for the FileJump cloud storage API
// with bearer-token authentication, streaming transfers, and error classification.
package fjump

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for API call classification.
// Use errors.Is(err, fjump.ErrUnauthorized) to check.
var (
	ErrUnauthorized = errors.New("fjump: unauthorized")
	ErrForbidden    = errors.New("fjump: forbidden")
	ErrNotFound     = errors.New("fjump: not found")
	ErrServerError  = errors.New("fjump: server error")

	// ErrTimeout is returned when an upload still times out after the
	// request timeout has been escalated past its cap.
	ErrTimeout = errors.New("fjump: request timed out")

	// ErrCancelled is returned when a transfer is stopped through a
	// cancellation flag. It marks a normal early exit, not a failure;
	// callers should treat it distinctly from genuine errors.
	ErrCancelled = errors.New("fjump: transfer cancelled")
)

// APIError wraps a sentinel error with the HTTP status code and the response
// body for debugging. Any non-success status is permanent: APIErrors are
// never retried.
type APIError struct {
	StatusCode int
	Message    string
	Err        error // sentinel, for errors.Is()
}

func (e *APIError) Error() string {
	return fmt.Sprintf("fjump: HTTP %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// classifyStatus maps an HTTP status code to a sentinel error.
// Returns nil for 2xx success codes.
func classifyStatus(code int) error {
	switch code {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	default:
		if code >= http.StatusInternalServerError {
			return ErrServerError
		}

		return nil
	}
}
