// Package openai implements the adapter for OpenAI chat completions using
// github.com/sashabaranov/go-openai.
//
// The same adapter serves any OpenAI-compatible endpoint; the deepseek
// package builds on it with a different name, base URL and default model.
package openai

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"datacrunch-hq/relay/pkg/failure"
	"datacrunch-hq/relay/pkg/providers"
)

const (
	// DefaultModel is used when the caller does not name a model.
	DefaultModel = "gpt-3.5-turbo"

	// DefaultBaseURL is the public OpenAI API endpoint.
	DefaultBaseURL = "https://api.openai.com/v1"
)

// Config configures an OpenAI-compatible adapter.
type Config struct {
	// Name is the provider name reported in responses and failures.
	// Defaults to "openai".
	Name string

	// DisplayName is used in human-readable messages. Defaults to "OpenAI".
	DisplayName string

	// KeyEnv names the environment variable that holds the key, used only
	// in the missing-key message. Defaults to OPENAI_API_KEY.
	KeyEnv string

	APIKey       string
	BaseURL      string
	Organization string
	DefaultModel string
	Timeout      time.Duration

	// Transport is shared with other adapters when set.
	Transport http.RoundTripper
}

// Adapter sends chat completion requests.
type Adapter struct {
	client *goopenai.Client
	config Config
}

// NewAdapter creates an OpenAI-compatible adapter.
func NewAdapter(cfg Config) (*Adapter, error) {
	if cfg.Name == "" {
		cfg.Name = providers.OpenAI
	}
	if cfg.DisplayName == "" {
		cfg.DisplayName = "OpenAI"
	}
	if cfg.KeyEnv == "" {
		cfg.KeyEnv = "OPENAI_API_KEY"
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, failure.New(failure.MissingAPIKey,
			cfg.DisplayName+" API key not configured. Set "+cfg.KeyEnv+".",
			failure.WithProvider(cfg.Name))
	}
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = providers.DefaultTimeout
	}

	clientConfig := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	clientConfig.OrgID = cfg.Organization
	clientConfig.HTTPClient = &http.Client{Timeout: cfg.Timeout, Transport: cfg.Transport}

	slog.Debug("OpenAI-compatible adapter initialized",
		"provider", cfg.Name,
		"base_url", clientConfig.BaseURL,
		"default_model", cfg.DefaultModel,
	)

	return &Adapter{
		client: goopenai.NewClientWithConfig(clientConfig),
		config: cfg,
	}, nil
}

// Name returns the configured provider name.
func (a *Adapter) Name() string {
	return a.config.Name
}

// Invoke sends one chat completion request.
func (a *Adapter) Invoke(ctx context.Context, instruction string, input any, cfg providers.GenerationConfig, model string) (*providers.Response, error) {
	if err := providers.ValidateConfig(a.config.Name, cfg); err != nil {
		return nil, err
	}

	message, err := providers.FormatInputMessage(a.config.Name, instruction, input)
	if err != nil {
		return nil, err
	}

	model = providers.ResolveModel(model, a.config.DefaultModel)
	req := goopenai.ChatCompletionRequest{
		Model: model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleUser, Content: message},
		},
		Temperature:      wireFloat(cfg.Temperature),
		MaxTokens:        cfg.MaxTokens,
		TopP:             wireFloat(cfg.TopP),
		FrequencyPenalty: float32(cfg.FrequencyPenalty),
		PresencePenalty:  float32(cfg.PresencePenalty),
	}

	resp, err := a.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, failure.Classify(err, a.config.Name)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, failure.New(failure.EmptyResponse,
			"Received empty response from "+a.config.DisplayName,
			failure.WithProvider(a.config.Name))
	}

	if resp.Model != "" {
		model = resp.Model
	}

	usage := providers.NewUsage(
		resp.Usage.PromptTokens,
		resp.Usage.CompletionTokens,
		resp.Usage.TotalTokens,
	)
	return providers.NewResponse(a.config.Name, resp.Choices[0].Message.Content, model, usage), nil
}

// wireFloat keeps an explicit zero on the wire. go-openai drops zero
// sampling values through omitempty, which would leave the backend default
// (1.0) in force.
func wireFloat(v float64) float32 {
	if v == 0 {
		return math.SmallestNonzeroFloat32
	}
	return float32(v)
}
