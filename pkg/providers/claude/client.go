// Package claude implements the adapter for Anthropic's Messages API using
// github.com/anthropics/anthropic-sdk-go.
package claude

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"datacrunch-hq/relay/pkg/failure"
	"datacrunch-hq/relay/pkg/providers"
)

const (
	// DefaultModel is used when the caller does not name a model.
	DefaultModel = "claude-3-opus-20240229"

	// DefaultMaxTokens is sent when the request leaves max_tokens unset;
	// the Messages API requires it.
	DefaultMaxTokens = 1024
)

// Config configures the Claude adapter.
type Config struct {
	APIKey       string
	BaseURL      string
	DefaultModel string
	Timeout      time.Duration

	// Transport is shared with other adapters when set.
	Transport http.RoundTripper
}

// Adapter sends Messages API requests.
type Adapter struct {
	client *anthropic.Client
	config Config
}

// NewAdapter creates a Claude adapter.
func NewAdapter(cfg Config) (*Adapter, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, failure.New(failure.MissingAPIKey,
			"Anthropic API key not configured. Set ANTHROPIC_API_KEY.",
			failure.WithProvider(providers.Claude))
	}
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = providers.DefaultTimeout
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(&http.Client{Timeout: cfg.Timeout, Transport: cfg.Transport}),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		base := cfg.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		opts = append(opts, option.WithBaseURL(base))
	}
	client := anthropic.NewClient(opts...)

	slog.Debug("Claude adapter initialized", "default_model", cfg.DefaultModel)

	return &Adapter{client: &client, config: cfg}, nil
}

// Name returns "claude".
func (a *Adapter) Name() string {
	return providers.Claude
}

// Invoke sends one Messages API request.
func (a *Adapter) Invoke(ctx context.Context, instruction string, input any, cfg providers.GenerationConfig, model string) (*providers.Response, error) {
	if err := providers.ValidateConfig(providers.Claude, cfg); err != nil {
		return nil, err
	}

	message, err := providers.FormatInputMessage(providers.Claude, instruction, input)
	if err != nil {
		return nil, err
	}

	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = DefaultMaxTokens
	}

	model = providers.ResolveModel(model, a.config.DefaultModel)
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(model),
		MaxTokens:   int64(maxTokens),
		Temperature: anthropic.Float(cfg.Temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(message)),
		},
	}
	if cfg.TopP > 0 {
		params.TopP = anthropic.Float(cfg.TopP)
	}

	msg, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return nil, classify(err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if text, ok := block.AsAny().(anthropic.TextBlock); ok {
			sb.WriteString(text.Text)
		}
	}
	content := sb.String()
	if content == "" {
		return nil, failure.New(failure.EmptyResponse, "Received empty response from Claude",
			failure.WithProvider(providers.Claude))
	}

	if msg.Model != "" {
		model = string(msg.Model)
	}

	usage := providers.NewUsage(int(msg.Usage.InputTokens), int(msg.Usage.OutputTokens), 0)
	return providers.NewResponse(providers.Claude, content, model, usage), nil
}

// statusError strips the request URL from SDK errors so that only the
// status and body are classified.
type statusError struct {
	status int
	body   string
	cause  error
}

func (e *statusError) Error() string {
	return fmt.Sprintf("status %d %s: %s", e.status, http.StatusText(e.status), e.body)
}

func (e *statusError) Unwrap() error { return e.cause }

func classify(err error) *failure.Error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return failure.Classify(&statusError{
			status: apiErr.StatusCode,
			body:   apiErr.RawJSON(),
			cause:  err,
		}, providers.Claude)
	}
	return failure.Classify(err, providers.Claude)
}
