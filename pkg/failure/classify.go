package failure

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// Keyword sets checked by Classify, in priority order.
var (
	quotaKeywords      = []string{"quota", "exceeded", "limit exceeded", "insufficient_quota"}
	rateLimitKeywords  = []string{"rate limit", "too many requests", "429"}
	authKeywords       = []string{"authentication", "unauthorized", "api key", "401", "403"}
	connectionKeywords = []string{"connection", "timeout", "unreachable", "network"}
)

// deadlinePhrases are Go's own timeout texts. They contain "exceeded" and
// must not reach the quota rule.
var deadlinePhrases = []string{"context deadline exceeded", "timeout exceeded", "deadline exceeded"}

// retryAfterHint is implemented by transport errors that know how long the
// backend asked the caller to wait.
type retryAfterHint interface {
	RetryAfterSeconds() int
}

// Classify maps an arbitrary backend error onto a structured failure by
// inspecting its lower-cased text. Deadline and net timeout errors are
// api_connection_error before any keyword is looked at. Otherwise the first
// matching rule wins:
//
//	quota keywords       -> quota_exceeded (not retryable)
//	rate limit keywords  -> rate_limit_exceeded (retryable)
//	auth keywords        -> missing_api_key (not retryable)
//	connection keywords  -> api_connection_error (retryable)
//	anything else        -> processing_error (retryable)
//
// The original error text is kept in details["original_error"]. A nil error
// yields nil and an error that already is a *Error is returned unchanged.
func Classify(err error, provider string) *Error {
	if err == nil {
		return nil
	}
	if fe, ok := As(err); ok {
		return fe
	}

	if isTimeout(err) {
		return ConnectionError(provider, fmt.Sprintf("Request to %s timed out", provider), WithCause(err))
	}

	text := strings.ToLower(err.Error())
	for _, p := range deadlinePhrases {
		text = strings.ReplaceAll(text, p, "timeout")
	}

	switch {
	case containsAny(text, quotaKeywords):
		return QuotaExceededError(provider, "", WithCause(err))

	case containsAny(text, rateLimitKeywords):
		var seconds int
		var hint retryAfterHint
		if errors.As(err, &hint) {
			seconds = hint.RetryAfterSeconds()
		}
		return RateLimitError(provider, seconds, WithCause(err))

	case containsAny(text, authKeywords):
		return New(MissingAPIKey,
			fmt.Sprintf("Authentication failed for %s", provider),
			WithProvider(provider), WithCause(err))

	case containsAny(text, connectionKeywords):
		return ConnectionError(provider, "", WithCause(err))

	default:
		return New(ProcessingError,
			fmt.Sprintf("Error processing request with %s: %v", provider, err),
			WithProvider(provider), WithCause(err))
	}
}

// QuotaExceededError builds a quota_exceeded failure. An empty message
// falls back to "API quota exceeded".
func QuotaExceededError(provider, message string, opts ...Option) *Error {
	if message == "" {
		message = "API quota exceeded"
	}
	opts = append([]Option{WithProvider(provider)}, opts...)
	return New(QuotaExceeded, message, opts...)
}

// RateLimitError builds a rate_limit_exceeded failure. retryAfter is the
// backend's hint in seconds; zero means unknown and is recorded as null.
func RateLimitError(provider string, retryAfter int, opts ...Option) *Error {
	message := "Rate limit exceeded"
	var hint any
	if retryAfter > 0 {
		message = fmt.Sprintf("Rate limit exceeded. Retry after %d seconds", retryAfter)
		hint = retryAfter
	}
	opts = append([]Option{WithProvider(provider), WithDetail("retry_after_seconds", hint)}, opts...)
	return New(RateLimitExceeded, message, opts...)
}

// ConnectionError builds an api_connection_error failure. An empty message
// falls back to "Connection error with <provider>".
func ConnectionError(provider, message string, opts ...Option) *Error {
	if message == "" {
		message = fmt.Sprintf("Connection error with %s", provider)
	}
	opts = append([]Option{WithProvider(provider)}, opts...)
	return New(APIConnectionError, message, opts...)
}

// InvalidInputError builds an invalid_input failure.
func InvalidInputError(message string, opts ...Option) *Error {
	return New(InvalidInput, message, opts...)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
