// Package gemini implements the adapter for Google's Gemini API.
//
// The adapter calls the generateContent REST endpoint with an API key. It is
// the only adapter that consults the quota tracker itself: a blocked provider
// is rejected before any network traffic, and a quota failure reported by
// the backend blocks the provider for the configured duration.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"datacrunch-hq/relay/pkg/failure"
	"datacrunch-hq/relay/pkg/providers"
	"datacrunch-hq/relay/pkg/quota"
)

const (
	// DefaultModel is used when the caller does not name a model.
	DefaultModel = "gemini-pro"

	// DefaultBaseURL is the public Generative Language API endpoint.
	DefaultBaseURL = "https://generativelanguage.googleapis.com"

	apiVersion = "v1beta"
)

// Config configures the Gemini adapter.
type Config struct {
	APIKey        string
	BaseURL       string
	DefaultModel  string
	Timeout       time.Duration
	MaxRetries    int
	BlockDuration time.Duration

	// Transport is shared with other adapters when set.
	Transport http.RoundTripper
}

// Adapter talks to the Gemini API.
type Adapter struct {
	*providers.HTTPProvider
	config  Config
	tracker *quota.Tracker
}

// NewAdapter creates a Gemini adapter. tracker may be nil, in which case no
// quota bookkeeping happens inside the adapter.
func NewAdapter(cfg Config, tracker *quota.Tracker) (*Adapter, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, failure.New(failure.MissingAPIKey,
			"Gemini API key not configured. Set GEMINI_API_KEY.",
			failure.WithProvider(providers.Gemini))
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = DefaultModel
	}

	a := &Adapter{
		HTTPProvider: providers.NewHTTPProvider(providers.HTTPConfig{
			Name:       providers.Gemini,
			Timeout:    cfg.Timeout,
			MaxRetries: cfg.MaxRetries,
			Transport:  cfg.Transport,
		}),
		config:  cfg,
		tracker: tracker,
	}

	slog.Debug("Gemini adapter initialized",
		"base_url", cfg.BaseURL,
		"default_model", cfg.DefaultModel,
	)
	return a, nil
}

// Name returns "gemini".
func (a *Adapter) Name() string {
	return providers.Gemini
}

// Invoke sends one generateContent request.
func (a *Adapter) Invoke(ctx context.Context, instruction string, input any, cfg providers.GenerationConfig, model string) (*providers.Response, error) {
	if a.tracker != nil && a.tracker.IsBlocked(providers.Gemini) {
		return nil, failure.QuotaExceededError(providers.Gemini,
			"gemini is currently blocked due to quota exceeded")
	}

	if err := providers.ValidateConfig(providers.Gemini, cfg); err != nil {
		return nil, err
	}
	if err := providers.ValidateInput(providers.Gemini, instruction, input); err != nil {
		return nil, err
	}

	message, err := providers.FormatInputMessage(providers.Gemini, instruction, input)
	if err != nil {
		return nil, err
	}

	model = strings.TrimPrefix(providers.ResolveModel(model, a.config.DefaultModel), "models/")
	url := fmt.Sprintf("%s/%s/models/%s:generateContent", a.config.BaseURL, apiVersion, model)
	body := NewRequest(message, cfg.Temperature, cfg.MaxTokens, cfg.TopP)

	var resp GenerateContentResponse
	err = a.DoJSONRequest(ctx, http.MethodPost, url, body, &resp, map[string]string{
		"x-goog-api-key": a.config.APIKey,
	})
	if err != nil {
		return nil, a.fail(ctx, err)
	}

	content := resp.Text()
	if content == "" {
		opts := []failure.Option{failure.WithProvider(providers.Gemini)}
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			opts = append(opts, failure.WithDetail("block_reason", resp.PromptFeedback.BlockReason))
		}
		return nil, failure.New(failure.EmptyResponse, "Received empty response from Gemini", opts...)
	}

	var usage providers.Usage
	if resp.UsageMetadata != nil {
		usage = providers.NewUsage(
			resp.UsageMetadata.PromptTokenCount,
			resp.UsageMetadata.CandidatesTokenCount,
			0,
		)
	}

	return providers.NewResponse(providers.Gemini, content, model, usage), nil
}

// fail classifies a transport error and blocks the provider on quota
// exhaustion.
func (a *Adapter) fail(ctx context.Context, err error) error {
	var pe *providers.ParseError
	if errors.As(err, &pe) {
		return failure.New(failure.InvalidResponse, "Received malformed response from Gemini",
			failure.WithProvider(providers.Gemini), failure.WithCause(err))
	}

	fe := failure.Classify(err, providers.Gemini)
	if fe.Category == failure.QuotaExceeded && a.tracker != nil {
		until := a.tracker.Block(providers.Gemini, a.config.BlockDuration)
		slog.WarnContext(ctx, "gemini quota exhausted",
			"blocked_until", until.UTC().Format(time.RFC3339),
		)
	}
	return fe
}
