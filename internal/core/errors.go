package core

import (
	"errors"
	"fmt"
)

// Authentication preconditions. Neither is retried automatically; both
// require the user to reconnect.
var (
	ErrNotConnected   = errors.New("not connected: no access token available")
	ErrSessionExpired = errors.New("session expired: re-authentication required")
)

// NetworkError is a failed remote call against the mail provider, the
// auth endpoint, or the reasoning service. Detail carries the provider's
// own error message when one could be extracted.
type NetworkError struct {
	Op     string
	Status int
	Detail string
}

func (e *NetworkError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Detail)
	}
	return fmt.Sprintf("%s: request failed (status %d)", e.Op, e.Status)
}

// ParseError is a malformed or unexpected response from the reasoning
// service. It is fatal to the whole classification run; no partial
// results are kept.
type ParseError struct {
	Detail string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("reasoning response: %s: %v", e.Detail, e.Err)
	}
	return fmt.Sprintf("reasoning response: %s", e.Detail)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ValidationError is a pre-flight condition failure, raised before any
// network call is made.
type ValidationError struct {
	Detail string
}

func (e *ValidationError) Error() string { return e.Detail }

// IsAuthError reports whether err requires interactive re-authentication.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrNotConnected) || errors.Is(err, ErrSessionExpired)
}
