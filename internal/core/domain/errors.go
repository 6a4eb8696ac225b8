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

	// ErrFormNotGenerated indicates a page has no cached form yet.
	ErrFormNotGenerated = fmt.Errorf("form not generated: %w", ErrNotFound)

	// ErrLLMUnavailable indicates the generative model is not configured,
	// usually because no API key is set.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrUpstreamUnavailable indicates the chat service or the model
	// provider could not be reached or answered with an error status.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrContentBlocked indicates the model returned no content.
	ErrContentBlocked = errors.New("content blocked")

	// ErrInternal indicates an unexpected processing failure.
	ErrInternal = errors.New("internal error")

	// ErrUnsupportedType indicates an unknown provider or output format.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrDispatcherClosed indicates the bulk dispatcher no longer accepts work.
	ErrDispatcherClosed = errors.New("dispatcher closed")
)

// PageOutOfRangeError is returned when a page number falls outside 1..Total.
// It matches ErrNotFound.
type PageOutOfRangeError struct {
	Page  int
	Total int
}

func (e *PageOutOfRangeError) Error() string {
	return fmt.Sprintf("page number %d out of range: document has %d pages", e.Page, e.Total)
}

// Unwrap lets errors.Is match ErrNotFound.
func (e *PageOutOfRangeError) Unwrap() error {
	return ErrNotFound
}

// ContentBlockedError carries the provider's reason for returning nothing.
type ContentBlockedError struct {
	Reason string
}

func (e *ContentBlockedError) Error() string {
	if e.Reason == "" {
		return "model did not return expected content"
	}
	return "model did not return expected content: " + e.Reason
}

// Unwrap lets errors.Is match ErrContentBlocked.
func (e *ContentBlockedError) Unwrap() error {
	return ErrContentBlocked
}

// UpstreamStatusError is an error status returned by an external service.
type UpstreamStatusError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *UpstreamStatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s returned status %d", e.Service, e.StatusCode)
	}
	return fmt.Sprintf("%s returned status %d: %s", e.Service, e.StatusCode, e.Body)
}

// Unwrap lets errors.Is match ErrUpstreamUnavailable.
func (e *UpstreamStatusError) Unwrap() error {
	return ErrUpstreamUnavailable
}
