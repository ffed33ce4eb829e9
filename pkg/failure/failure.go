// Package failure defines the closed set of structured failures produced by
// the relay. Every failure carries a category, a human-readable message,
// free-form details, the originating provider (if any), the time it occurred
// and whether the caller may retry the same request later.
//
// Failures are created once and never modified afterwards. Callers that need
// a different message or status wrap the failure instead of mutating it.
package failure

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Category identifies the kind of failure. The set is closed.
type Category string

const (
	InvalidInput               Category = "invalid_input"
	InvalidProvider            Category = "invalid_provider"
	InvalidConfig              Category = "invalid_config"
	MissingAPIKey              Category = "missing_api_key"
	QuotaExceeded              Category = "quota_exceeded"
	RateLimitExceeded          Category = "rate_limit_exceeded"
	APIConnectionError         Category = "api_connection_error"
	APITimeout                 Category = "api_timeout"
	AdapterInitializationError Category = "adapter_initialization_error"
	ProcessingError            Category = "processing_error"
	EmptyResponse              Category = "empty_response"
	InvalidResponse            Category = "invalid_response"
)

// Categories lists every category in declaration order.
var Categories = []Category{
	InvalidInput,
	InvalidProvider,
	InvalidConfig,
	MissingAPIKey,
	QuotaExceeded,
	RateLimitExceeded,
	APIConnectionError,
	APITimeout,
	AdapterInitializationError,
	ProcessingError,
	EmptyResponse,
	InvalidResponse,
}

// Retryable reports the default retryability of the category. Constructors
// use it unless the call site overrides it with WithRetryable.
func (c Category) Retryable() bool {
	switch c {
	case RateLimitExceeded, APIConnectionError, APITimeout,
		ProcessingError, EmptyResponse, InvalidResponse:
		return true
	default:
		return false
	}
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Error is a structured failure. Treat every field as read-only once the
// value has been constructed.
type Error struct {
	// Category is the failure kind.
	Category Category

	// Message is a human-readable description safe to return to callers.
	Message string

	// Details holds free-form structured context, e.g. the original error
	// text or the retry hint of a rate limit.
	Details map[string]any

	// Provider names the backend involved, empty when none is.
	Provider string

	// OccurredAt is the UTC time the failure was created.
	OccurredAt time.Time

	// Retryable tells the caller whether repeating the request may succeed.
	Retryable bool

	cause error
}

// Option customises a failure at construction time.
type Option func(*Error)

// WithProvider records the originating provider.
func WithProvider(provider string) Option {
	return func(e *Error) { e.Provider = provider }
}

// WithDetail adds a single detail entry.
func WithDetail(key string, value any) Option {
	return func(e *Error) {
		if e.Details == nil {
			e.Details = make(map[string]any)
		}
		e.Details[key] = value
	}
}

// WithDetails merges the given entries into the details.
func WithDetails(details map[string]any) Option {
	return func(e *Error) {
		if len(details) == 0 {
			return
		}
		if e.Details == nil {
			e.Details = make(map[string]any, len(details))
		}
		for k, v := range details {
			e.Details[k] = v
		}
	}
}

// WithRetryable overrides the category's default retryability.
func WithRetryable(retryable bool) Option {
	return func(e *Error) { e.Retryable = retryable }
}

// WithCause attaches the underlying error. Its text is also recorded as
// details["original_error"].
func WithCause(err error) Option {
	return func(e *Error) {
		if err == nil {
			return
		}
		e.cause = err
		WithDetail("original_error", err.Error())(e)
	}
}

// withTime pins the creation time, used by tests and decoding.
func withTime(t time.Time) Option {
	return func(e *Error) { e.OccurredAt = t }
}

// now is replaced in tests.
var now = time.Now

// New creates a failure of the given category.
func New(category Category, message string, opts ...Option) *Error {
	e := &Error{
		Category:   category,
		Message:    message,
		Details:    map[string]any{},
		OccurredAt: now().UTC(),
		Retryable:  category.Retryable(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Provider != "" {
		return fmt.Sprintf("%s [%s]: %s", e.Category, e.Provider, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Category, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches another *Error by category so that errors.Is can be used with
// sentinel-style comparisons such as errors.Is(err, &Error{Category: QuotaExceeded}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Category == e.Category
}

// Detail returns a single detail entry.
func (e *Error) Detail(key string) (any, bool) {
	v, ok := e.Details[key]
	return v, ok
}

// As extracts a *Error from err's chain.
func As(err error) (*Error, bool) {
	var fe *Error
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

// IsCategory reports whether err carries a failure of the given category.
func IsCategory(err error, category Category) bool {
	fe, ok := As(err)
	return ok && fe.Category == category
}

// wireError is the serialized form returned to callers.
type wireError struct {
	ErrorType   Category       `json:"error_type"`
	Message     string         `json:"message"`
	Details     map[string]any `json:"details"`
	Provider    *string        `json:"provider"`
	Timestamp   string         `json:"timestamp"`
	IsRetryable bool           `json:"is_retryable"`
}

// MarshalJSON encodes the failure with the keys error_type, message,
// details, provider, timestamp and is_retryable.
func (e *Error) MarshalJSON() ([]byte, error) {
	w := wireError{
		ErrorType:   e.Category,
		Message:     e.Message,
		Details:     e.Details,
		Timestamp:   e.OccurredAt.UTC().Format(time.RFC3339Nano),
		IsRetryable: e.Retryable,
	}
	if w.Details == nil {
		w.Details = map[string]any{}
	}
	if e.Provider != "" {
		p := e.Provider
		w.Provider = &p
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes a failure written by MarshalJSON.
func (e *Error) UnmarshalJSON(data []byte) error {
	var w wireError
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if !w.ErrorType.Valid() {
		return fmt.Errorf("unknown error_type %q", w.ErrorType)
	}

	var ts time.Time
	if w.Timestamp != "" {
		parsed, err := time.Parse(time.RFC3339Nano, w.Timestamp)
		if err != nil {
			return fmt.Errorf("invalid timestamp %q: %w", w.Timestamp, err)
		}
		ts = parsed
	}

	opts := []Option{withTime(ts), WithDetails(w.Details), WithRetryable(w.IsRetryable)}
	if w.Provider != nil {
		opts = append(opts, WithProvider(*w.Provider))
	}
	*e = *New(w.ErrorType, w.Message, opts...)
	return nil
}
