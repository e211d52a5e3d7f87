package domain

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by providers, stores and handlers.
var (
	ErrValidation          = errors.New("validation failed")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrRateLimited         = errors.New("rate limited")
	ErrNotConfigured       = errors.New("provider not configured")
	ErrNoData              = errors.New("no data")
	ErrNotFound            = errors.New("not found")
	ErrMalformedPayload    = errors.New("malformed upstream payload")
	ErrProviderRejected    = errors.New("provider rejected request")
)

// ProviderError carries upstream detail alongside a taxonomy sentinel.
type ProviderError struct {
	Provider string
	Status   int    // upstream HTTP status, 0 when not applicable
	Message  string // human readable, safe to show to clients
	Hint     string
	Kind     error
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Provider, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

// Is reports whether target is the error's taxonomy kind.
func (e *ProviderError) Is(target error) bool {
	return e.Kind != nil && target == e.Kind
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError builds a ProviderError of the given kind.
func NewProviderError(provider string, kind error, message string) *ProviderError {
	return &ProviderError{Provider: provider, Kind: kind, Message: message}
}

// WithStatus sets the upstream status.
func (e *ProviderError) WithStatus(status int) *ProviderError {
	e.Status = status
	return e
}

// WithHint sets an operator-facing hint.
func (e *ProviderError) WithHint(hint string) *ProviderError {
	e.Hint = hint
	return e
}

// WithError wraps the underlying cause.
func (e *ProviderError) WithError(err error) *ProviderError {
	e.Err = err
	return e
}

// ValidationError reports a bad caller input on a named field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError builds a ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
