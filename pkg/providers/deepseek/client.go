// Package deepseek implements the adapter for DeepSeek, which exposes an
// OpenAI-compatible chat completions API.
package deepseek

import (
	"net/http"
	"time"

	"datacrunch-hq/relay/pkg/providers"
	"datacrunch-hq/relay/pkg/providers/openai"
)

const (
	// DefaultModel is used when the caller does not name a model.
	DefaultModel = "deepseek-chat"

	// DefaultBaseURL is DeepSeek's OpenAI-compatible endpoint.
	DefaultBaseURL = "https://api.deepseek.com/v1"
)

// Config configures the DeepSeek adapter.
type Config struct {
	APIKey       string
	BaseURL      string
	DefaultModel string
	Timeout      time.Duration
	Transport    http.RoundTripper
}

// Adapter is an OpenAI-compatible adapter preconfigured for DeepSeek.
type Adapter struct {
	*openai.Adapter
}

// NewAdapter creates a DeepSeek adapter.
func NewAdapter(cfg Config) (*Adapter, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = DefaultModel
	}

	inner, err := openai.NewAdapter(openai.Config{
		Name:         providers.DeepSeek,
		DisplayName:  "DeepSeek",
		KeyEnv:       "DEEPSEEK_API_KEY",
		APIKey:       cfg.APIKey,
		BaseURL:      cfg.BaseURL,
		DefaultModel: cfg.DefaultModel,
		Timeout:      cfg.Timeout,
		Transport:    cfg.Transport,
	})
	if err != nil {
		return nil, err
	}
	return &Adapter{Adapter: inner}, nil
}
