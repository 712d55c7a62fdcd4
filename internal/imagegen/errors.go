package imagegen

import (
	"errors"
	"fmt"
)

var (
	// ErrPromptNotFound means no user message carried usable prompt text.
	ErrPromptNotFound = errors.New("no prompt found in user messages")

	// ErrEmptyMessages means the request had no messages at all.
	ErrEmptyMessages = errors.New("messages must not be empty")

	// ErrMissingCredential means neither the caller nor the configuration supplied an API key.
	ErrMissingCredential = errors.New("missing API key")
)

// ValidationError is a request the gateway refuses before calling any provider.
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid request: %s: %s (%v)", e.Field, e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid request: %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func newValidationError(field, reason string, err error) *ValidationError {
	return &ValidationError{Field: field, Reason: reason, Err: err}
}

// UpstreamError captures a non-2xx provider response. Body is the raw
// response body, passed back to the caller untouched.
type UpstreamError struct {
	Provider   Provider
	StatusCode int
	Body       []byte
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("provider '%s' returned status %d: %s", e.Provider, e.StatusCode, e.Body)
}

func (e *UpstreamError) HTTPStatusCode() int {
	return e.StatusCode
}

// MalformedResponseError means the provider answered 2xx but the image list
// could not be found in the body.
type MalformedResponseError struct {
	Provider Provider
	Reason   string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed response from provider '%s': %s", e.Provider, e.Reason)
}
