package claude

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"datacrunch-hq/relay/internal/providertest"
	"datacrunch-hq/relay/pkg/failure"
	"datacrunch-hq/relay/pkg/providers"
)

const messagesPath = "/v1/messages"

func newTestAdapter(t *testing.T, baseURL string) *Adapter {
	t.Helper()
	a, err := NewAdapter(Config{APIKey: "sk-ant-test", BaseURL: baseURL, Timeout: 5 * time.Second})
	providertest.AssertNoError(t, err)
	return a
}

func TestNewAdapter_MissingKey(t *testing.T) {
	_, err := NewAdapter(Config{APIKey: "  "})
	fe := providertest.AssertCategory(t, err, failure.MissingAPIKey)
	if fe.Provider != providers.Claude {
		t.Errorf("Provider = %q", fe.Provider)
	}
}

func TestInvoke_Success(t *testing.T) {
	server := providertest.NewMockServer()
	defer server.Close()

	server.SetResponse(messagesPath, providertest.MockResponse{
		StatusCode: http.StatusOK,
		Body:       providertest.MockAnthropicResponse("Positive overall.", DefaultModel),
	})

	a := newTestAdapter(t, server.URL())
	cfg := providers.DefaultGenerationConfig()
	cfg.MaxTokens = 0

	resp, err := a.Invoke(context.Background(), "Rate the sentiment", providertest.SampleInput(), cfg, "")
	providertest.AssertNoError(t, err)

	if resp.Content != "Positive overall." || resp.Provider != providers.Claude {
		t.Errorf("unexpected response: %+v", resp)
	}
	if resp.Model != DefaultModel {
		t.Errorf("Model = %q", resp.Model)
	}
	if resp.Usage != (providers.Usage{PromptTokens: 10, CompletionTokens: 20, TotalTokens: 30}) {
		t.Errorf("Usage = %+v", resp.Usage)
	}

	req, ok := server.LastRequest(messagesPath)
	if !ok {
		t.Fatal("no request recorded")
	}
	if got := req.Headers.Get("X-Api-Key"); got != "sk-ant-test" {
		t.Errorf("x-api-key = %q", got)
	}

	var body struct {
		Model     string `json:"model"`
		MaxTokens int    `json:"max_tokens"`
		Messages  []struct {
			Role    string `json:"role"`
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
		} `json:"messages"`
	}
	providertest.AssertNoError(t, req.JSON(&body))
	if body.MaxTokens != DefaultMaxTokens {
		t.Errorf("max_tokens = %d, want %d when unset", body.MaxTokens, DefaultMaxTokens)
	}
	if len(body.Messages) != 1 || body.Messages[0].Role != "user" || len(body.Messages[0].Content) != 1 {
		t.Fatalf("messages = %+v", body.Messages)
	}
	if !strings.HasPrefix(body.Messages[0].Content[0].Text, "Rate the sentiment\n\nInput Data:\n") {
		t.Errorf("text = %q", body.Messages[0].Content[0].Text)
	}
}

func TestInvoke_Errors(t *testing.T) {
	tests := []struct {
		name     string
		response providertest.MockResponse
		want     failure.Category
	}{
		{"auth", providertest.MockAnthropicError(http.StatusUnauthorized, "authentication_error", "invalid x-api-key"), failure.MissingAPIKey},
		{"rate limit", providertest.MockAnthropicError(http.StatusTooManyRequests, "rate_limit_error", "Number of requests has been limited"), failure.RateLimitExceeded},
		{"overloaded", providertest.MockAnthropicError(529, "overloaded_error", "Overloaded"), failure.ProcessingError},
		{"empty content", providertest.MockResponse{Body: map[string]any{
			"id": "msg_1", "type": "message", "role": "assistant", "content": []any{},
			"model": DefaultModel, "stop_reason": "end_turn",
			"usage": map[string]any{"input_tokens": 1, "output_tokens": 0},
		}}, failure.EmptyResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := providertest.NewMockServer()
			defer server.Close()
			server.SetResponse(messagesPath, tt.response)

			a := newTestAdapter(t, server.URL())
			_, err := a.Invoke(context.Background(), "Rate", providertest.SampleInput(), providers.DefaultGenerationConfig(), "")
			providertest.AssertCategory(t, err, tt.want)
			if n := server.GetRequestCount(); n != 1 {
				t.Errorf("request count = %d, the adapter must not retry", n)
			}
		})
	}
}

func TestInvoke_InvalidTopP(t *testing.T) {
	server := providertest.NewMockServer()
	defer server.Close()

	a := newTestAdapter(t, server.URL())
	_, err := a.Invoke(context.Background(), "Rate", providertest.SampleInput(),
		providers.GenerationConfig{Temperature: 0.5, TopP: 2}, "")
	providertest.AssertCategory(t, err, failure.InvalidInput)
	if server.GetRequestCount() != 0 {
		t.Error("invalid config should not reach the backend")
	}
}
