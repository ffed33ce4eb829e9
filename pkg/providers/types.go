package providers

import (
	"context"
	"time"
)

// Provider names understood by the registry.
const (
	Gemini   = "gemini"
	OpenAI   = "openai"
	Claude   = "claude"
	DeepSeek = "deepseek"
	VertexAI = "vertex_ai"
)

// Names lists the supported providers in registration order.
var Names = []string{Gemini, OpenAI, Claude, DeepSeek, VertexAI}

// DefaultTimeout bounds a single backend round trip when the configuration
// does not set one.
const DefaultTimeout = 60 * time.Second

// Adapter is implemented by every backend.
type Adapter interface {
	// Name returns the provider name, e.g. "gemini".
	Name() string

	// Invoke sends one generation request. model may be empty, in which case
	// the adapter's default model is used. Every returned error is a
	// *failure.Error.
	Invoke(ctx context.Context, instruction string, input any, config GenerationConfig, model string) (*Response, error)
}

// GenerationConfig holds the sampling parameters of a request.
//
// MaxTokens and TopP follow "zero means unset": a zero MaxTokens lets the
// backend (or adapter) pick its default, and a zero TopP is sent only when
// the backend accepts it.
type GenerationConfig struct {
	Temperature      float64 `json:"temperature" yaml:"temperature"`
	MaxTokens        int     `json:"max_tokens,omitempty" yaml:"max_tokens"`
	TopP             float64 `json:"top_p,omitempty" yaml:"top_p"`
	FrequencyPenalty float64 `json:"frequency_penalty" yaml:"frequency_penalty"`
	PresencePenalty  float64 `json:"presence_penalty" yaml:"presence_penalty"`
}

// DefaultGenerationConfig returns temperature 0.7, 1000 max tokens, top_p 1.0
// and zero penalties.
func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		Temperature: 0.7,
		MaxTokens:   1000,
		TopP:        1.0,
	}
}

// Usage is the normalized token accounting of a response.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// NewUsage builds a Usage, deriving the total when the backend omitted it.
func NewUsage(prompt, completion, total int) Usage {
	if total == 0 {
		total = prompt + completion
	}
	return Usage{
		PromptTokens:     prompt,
		CompletionTokens: completion,
		TotalTokens:      total,
	}
}

// Response is the normalized result of a successful invocation.
type Response struct {
	Success     bool           `json:"success"`
	Provider    string         `json:"provider"`
	Content     string         `json:"content"`
	Usage       Usage          `json:"usage"`
	Model       string         `json:"model"`
	RawResponse map[string]any `json:"raw_response,omitempty"`
}

// NewResponse builds a successful Response.
func NewResponse(provider, content, model string, usage Usage) *Response {
	return &Response{
		Success:  true,
		Provider: provider,
		Content:  content,
		Usage:    usage,
		Model:    model,
	}
}
