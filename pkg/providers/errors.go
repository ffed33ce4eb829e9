package providers

import (
	"fmt"
	"time"
)

// Transport errors returned by HTTPProvider. Their texts are shaped so that
// failure.Classify maps each of them onto the intended category.

// ProviderError represents a non-2xx response that has no more specific type.
type ProviderError struct {
	// Provider is the name of the provider that returned the error
	Provider string

	// StatusCode is the HTTP status code (0 if not applicable)
	StatusCode int

	// Message is the response body or error message
	Message string

	// Cause is the underlying error (if any)
	Cause error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("provider %q error (status %d): %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("provider %q error: %s", e.Provider, e.Message)
}

// Unwrap returns the underlying error for error chain support.
func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// AuthError represents an HTTP 401 or 403 response.
type AuthError struct {
	Provider   string
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	return fmt.Sprintf("provider %q unauthorized (status %d): %s", e.Provider, e.StatusCode, e.Message)
}

// RateLimitError represents an HTTP 429 response.
type RateLimitError struct {
	// Provider is the name of the provider that rejected the request
	Provider string

	// RetryAfter is the backend's Retry-After hint, zero when absent
	RetryAfter time.Duration

	// Message is the response body
	Message string
}

// Error implements the error interface.
func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("provider %q status 429 too many requests (retry after %s): %s",
			e.Provider, e.RetryAfter, e.Message)
	}
	return fmt.Sprintf("provider %q status 429 too many requests: %s", e.Provider, e.Message)
}

// RetryAfterSeconds returns the retry hint rounded up to whole seconds.
func (e *RateLimitError) RetryAfterSeconds() int {
	if e.RetryAfter <= 0 {
		return 0
	}
	secs := int(e.RetryAfter / time.Second)
	if e.RetryAfter%time.Second != 0 {
		secs++
	}
	return secs
}

// TimeoutError represents a request that did not complete in time.
type TimeoutError struct {
	Provider string
	Timeout  time.Duration
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("provider %q request timeout after %s", e.Provider, e.Timeout)
}

// ParseError represents a response body that could not be decoded.
type ParseError struct {
	// Provider is the name of the provider that sent the response
	Provider string

	// RawResponse is the undecodable body, truncated for logging
	RawResponse string

	// Cause is the decoding error
	Cause error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("provider %q returned an undecodable response: %v", e.Provider, e.Cause)
}

// Unwrap returns the underlying error for error chain support.
func (e *ParseError) Unwrap() error {
	return e.Cause
}
