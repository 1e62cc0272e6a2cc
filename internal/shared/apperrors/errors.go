package apperrors

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks missing or malformed input (HTTP 400).
	ErrValidation = errors.New("validation error")

	// ErrNotFound marks an absent lead, template or conversation (HTTP 404).
	ErrNotFound = errors.New("not found")
)

// Validation wraps a message as a validation error.
func Validation(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}

// NotFound wraps a message as a not-found error.
func NotFound(msg string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, msg)
}

// UpstreamError reports an unreachable or non-2xx external dependency
// (WhatsApp gateway, AI service).
type UpstreamError struct {
	Service string
	Err     error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s: %v", e.Service, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// GenerationError reports a failed AI text generation call. It is always
// propagated to the caller, never degraded.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("message generation failed: %v", e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }
