package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Generation Errors.

	// ErrProviderUnavailable indicates a provider lacks the static configuration
	// (credentials, host address) it needs. It is detected before any network
	// call and never counts as a failure.
	ErrProviderUnavailable = errors.New("provider unavailable")

	// ErrProviderError indicates a transport failure or a non-2xx response.
	ErrProviderError = errors.New("provider error")

	// ErrProviderTimeout indicates the provider's request deadline elapsed.
	ErrProviderTimeout = errors.New("provider timeout")

	// ErrCircuitOpen indicates the circuit breaker refused the call after too
	// many consecutive exhausted generations.
	ErrCircuitOpen = errors.New("circuit breaker open")

	// ErrNoProvidersConfigured indicates the orchestrator has no providers.
	ErrNoProvidersConfigured = errors.New("no providers configured")
)

// ProviderError is a concrete failure reported by one provider.
// It matches its Kind sentinel and its cause with errors.Is.
type ProviderError struct {
	// Provider is the name of the provider that failed.
	Provider string

	// Kind is one of ErrProviderUnavailable, ErrProviderError or ErrProviderTimeout.
	Kind error

	// StatusCode is the HTTP status when the failure was a response, else 0.
	StatusCode int

	// Err is the underlying cause, if any.
	Err error
}

// NewProviderError creates a ProviderError of the given kind.
func NewProviderError(provider string, kind error, statusCode int, cause error) *ProviderError {
	return &ProviderError{
		Provider:   provider,
		Kind:       kind,
		StatusCode: statusCode,
		Err:        cause,
	}
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Provider, e.Kind)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap exposes both the kind sentinel and the cause.
func (e *ProviderError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// IsRetryable reports whether err is a transient provider failure that
// should be retried against the same provider.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrProviderError) || errors.Is(err, ErrProviderTimeout)
}
