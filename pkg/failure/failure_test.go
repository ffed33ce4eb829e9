package failure

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"
)

type retryAfterErr struct {
	seconds int
}

func (e *retryAfterErr) Error() string          { return "429 too many requests" }
func (e *retryAfterErr) RetryAfterSeconds() int { return e.seconds }

type netTimeoutErr struct{}

func (netTimeoutErr) Error() string   { return "i/o exceeded budget" }
func (netTimeoutErr) Timeout() bool   { return true }
func (netTimeoutErr) Temporary() bool { return true }

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		category  Category
		retryable bool
	}{
		{"quota keyword", errors.New("You exceeded your current quota"), QuotaExceeded, false},
		{"insufficient quota code", errors.New("code: insufficient_quota"), QuotaExceeded, false},
		{"limit exceeded", errors.New("daily limit exceeded"), QuotaExceeded, false},
		{"rate limit", errors.New("Rate limit reached, slow down"), RateLimitExceeded, true},
		{"too many requests", errors.New("Too Many Requests"), RateLimitExceeded, true},
		{"status 429", errors.New("status code: 429"), RateLimitExceeded, true},
		{"unauthorized", errors.New("401 Unauthorized"), MissingAPIKey, false},
		{"forbidden", errors.New("status 403"), MissingAPIKey, false},
		{"api key", errors.New("API key not valid. Please pass a valid API key."), MissingAPIKey, false},
		{"connection refused", errors.New("dial tcp: connection refused"), APIConnectionError, true},
		{"timeout", errors.New("request timeout after 30s"), APIConnectionError, true},
		{"network", errors.New("network is unreachable"), APIConnectionError, true},
		{"anything else", errors.New("model not found"), ProcessingError, true},
		{"context deadline", context.DeadlineExceeded, APIConnectionError, true},
		{"wrapped deadline", fmt.Errorf("post chat: %w", context.DeadlineExceeded), APIConnectionError, true},
		{"net timeout", netTimeoutErr{}, APIConnectionError, true},
		{"deadline text", errors.New("Post \"https://api.openai.com\": context deadline exceeded"), APIConnectionError, true},
		{"client timeout text", errors.New("net/http: request canceled (Client.Timeout exceeded while awaiting headers)"), APIConnectionError, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fe := Classify(tt.err, "gemini")
			if fe.Category != tt.category {
				t.Fatalf("Category = %q, want %q", fe.Category, tt.category)
			}
			if fe.Retryable != tt.retryable {
				t.Errorf("Retryable = %v, want %v", fe.Retryable, tt.retryable)
			}
			if fe.Provider != "gemini" {
				t.Errorf("Provider = %q, want gemini", fe.Provider)
			}
			if got := fe.Details["original_error"]; got != tt.err.Error() {
				t.Errorf("original_error = %v, want %q", got, tt.err.Error())
			}
			if !errors.Is(fe, tt.err) {
				t.Error("classified failure should wrap the original error")
			}
		})
	}
}

func TestClassifyPriority(t *testing.T) {
	// Quota wins over rate limit even when both sets of keywords appear.
	fe := Classify(errors.New("429: quota exhausted"), "openai")
	if fe.Category != QuotaExceeded {
		t.Errorf("Category = %q, want %q", fe.Category, QuotaExceeded)
	}

	// Rate limit wins over auth.
	fe = Classify(errors.New("429 unauthorized burst"), "openai")
	if fe.Category != RateLimitExceeded {
		t.Errorf("Category = %q, want %q", fe.Category, RateLimitExceeded)
	}
}

func TestClassifyMessages(t *testing.T) {
	if fe := Classify(errors.New("quota"), "claude"); fe.Message != "API quota exceeded" {
		t.Errorf("quota message = %q", fe.Message)
	}
	if fe := Classify(errors.New("unauthorized"), "claude"); fe.Message != "Authentication failed for claude" {
		t.Errorf("auth message = %q", fe.Message)
	}
	if fe := Classify(errors.New("network down"), "claude"); fe.Message != "Connection error with claude" {
		t.Errorf("connection message = %q", fe.Message)
	}
	if fe := Classify(errors.New("boom"), "claude"); fe.Message != "Error processing request with claude: boom" {
		t.Errorf("fallback message = %q", fe.Message)
	}
}

func TestClassifyRetryAfterHint(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", &retryAfterErr{seconds: 17})
	fe := Classify(err, "deepseek")
	if fe.Category != RateLimitExceeded {
		t.Fatalf("Category = %q", fe.Category)
	}
	if got := fe.Details["retry_after_seconds"]; got != 17 {
		t.Errorf("retry_after_seconds = %v, want 17", got)
	}
	if fe.Message != "Rate limit exceeded. Retry after 17 seconds" {
		t.Errorf("Message = %q", fe.Message)
	}

	fe = Classify(errors.New("rate limit"), "deepseek")
	v, ok := fe.Detail("retry_after_seconds")
	if !ok || v != nil {
		t.Errorf("retry_after_seconds = %v (present %v), want explicit null", v, ok)
	}
}

func TestClassifyPassThrough(t *testing.T) {
	original := New(InvalidInput, "bad temperature")
	if got := Classify(fmt.Errorf("ctx: %w", original), "gemini"); got != original {
		t.Errorf("Classify should return the existing failure unchanged")
	}
	if Classify(nil, "gemini") != nil {
		t.Error("Classify(nil) should be nil")
	}
}

func TestDefaultRetryability(t *testing.T) {
	notRetryable := []Category{InvalidInput, InvalidProvider, InvalidConfig, MissingAPIKey, QuotaExceeded, AdapterInitializationError}
	for _, c := range notRetryable {
		if New(c, "x").Retryable {
			t.Errorf("%s should not be retryable by default", c)
		}
	}
	retryable := []Category{RateLimitExceeded, APIConnectionError, APITimeout, ProcessingError, EmptyResponse, InvalidResponse}
	for _, c := range retryable {
		if !New(c, "x").Retryable {
			t.Errorf("%s should be retryable by default", c)
		}
	}
	if New(ProcessingError, "x", WithRetryable(false)).Retryable {
		t.Error("WithRetryable(false) should override the default")
	}
}

func TestMarshalJSON(t *testing.T) {
	fixed := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	fe := New(QuotaExceeded, "API quota exceeded", WithProvider("gemini"), withTime(fixed))

	data, err := json.Marshal(fe)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	for _, key := range []string{"error_type", "message", "details", "provider", "timestamp", "is_retryable"} {
		if _, ok := got[key]; !ok {
			t.Errorf("missing key %q in %s", key, data)
		}
	}
	if got["error_type"] != "quota_exceeded" {
		t.Errorf("error_type = %v", got["error_type"])
	}
	if got["timestamp"] != "2024-03-01T12:30:00Z" {
		t.Errorf("timestamp = %v", got["timestamp"])
	}
	if got["is_retryable"] != false {
		t.Errorf("is_retryable = %v", got["is_retryable"])
	}

	noProvider, _ := json.Marshal(New(InvalidInput, "x"))
	var np map[string]any
	_ = json.Unmarshal(noProvider, &np)
	if v, ok := np["provider"]; !ok || v != nil {
		t.Errorf("provider should be null when absent, got %v", v)
	}
}

func TestUnmarshalJSON(t *testing.T) {
	raw := `{"error_type":"rate_limit_exceeded","message":"Rate limit exceeded","details":{"retry_after_seconds":5},"provider":"openai","timestamp":"2024-03-01T12:30:00Z","is_retryable":true}`

	var fe Error
	if err := json.Unmarshal([]byte(raw), &fe); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if fe.Category != RateLimitExceeded || fe.Provider != "openai" || !fe.Retryable {
		t.Errorf("decoded %+v", fe)
	}
	if !fe.OccurredAt.Equal(time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)) {
		t.Errorf("OccurredAt = %v", fe.OccurredAt)
	}

	if err := json.Unmarshal([]byte(`{"error_type":"nope"}`), &fe); err == nil {
		t.Error("expected error for unknown error_type")
	}
}

func TestErrorsIsByCategory(t *testing.T) {
	err := fmt.Errorf("dispatch: %w", New(QuotaExceeded, "x"))
	if !errors.Is(err, &Error{Category: QuotaExceeded}) {
		t.Error("errors.Is should match by category")
	}
	if errors.Is(err, &Error{Category: RateLimitExceeded}) {
		t.Error("errors.Is should not match a different category")
	}
	if !IsCategory(err, QuotaExceeded) {
		t.Error("IsCategory should find the wrapped failure")
	}
}
