// Package errs defines the failure classes surfaced by the application
// services. Handlers map them to HTTP status codes with errors.Is.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRequest marks missing or empty required input.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrUpstreamUnavailable marks a failed or malformed catalog response.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrStorageUnavailable marks a failed persistence call.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrConflict marks a create that lost a uniqueness race.
	ErrConflict = errors.New("conflict")
)

// Invalid returns an ErrInvalidRequest carrying a caller-facing message.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, fmt.Sprintf(format, args...))
}

// Wrap classifies cause under kind while keeping it in the chain.
func Wrap(kind, cause error) error {
	if cause == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", kind, cause)
}
