// Package vertexai implements the adapter for Gemini models served by
// Google Cloud Vertex AI.
//
// Requests use the same generateContent schema as the public Gemini API but
// are addressed to a project and region and authenticated with OAuth2
// bearer tokens. Credentials are resolved in this order: a static access
// token, a service account JSON file, then Application Default Credentials.
package vertexai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"datacrunch-hq/relay/pkg/failure"
	"datacrunch-hq/relay/pkg/providers"
	"datacrunch-hq/relay/pkg/providers/gemini"
)

const (
	// DefaultModel is used when the caller does not name a model.
	DefaultModel = "gemini-pro"

	// DefaultLocation is the region used when none is configured.
	DefaultLocation = "us-central1"

	// CloudPlatformScope is the OAuth2 scope required by Vertex AI.
	CloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

	// catalogue ids for Vertex models carry this prefix.
	modelPrefix = "vertex-"
)

// Config configures the Vertex AI adapter.
type Config struct {
	ProjectID       string
	Location        string
	CredentialsPath string
	AccessToken     string
	BaseURL         string
	DefaultModel    string
	Timeout         time.Duration
	MaxRetries      int

	// TokenSource overrides credential discovery when set. It is used as
	// is, so a source that should cache tokens must already do so.
	TokenSource oauth2.TokenSource

	// Transport is shared with other adapters when set.
	Transport http.RoundTripper
}

// Adapter talks to Vertex AI.
type Adapter struct {
	*providers.HTTPProvider
	config Config
	tokens oauth2.TokenSource
}

// NewAdapter resolves credentials and creates the adapter. A missing project
// id or unresolvable credentials are reported as missing_api_key.
func NewAdapter(ctx context.Context, cfg Config) (*Adapter, error) {
	if strings.TrimSpace(cfg.ProjectID) == "" {
		return nil, failure.New(failure.MissingAPIKey,
			"Vertex AI project ID not configured. Set VERTEX_AI_PROJECT_ID.",
			failure.WithProvider(providers.VertexAI))
	}
	if cfg.Location == "" {
		cfg.Location = DefaultLocation
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = fmt.Sprintf("https://%s-aiplatform.googleapis.com", cfg.Location)
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = DefaultModel
	}

	ts, source, err := resolveTokenSource(ctx, cfg)
	if err != nil {
		return nil, failure.New(failure.MissingAPIKey,
			fmt.Sprintf("Vertex AI credentials not available: %v", err),
			failure.WithProvider(providers.VertexAI),
			failure.WithCause(err))
	}

	if cfg.TokenSource == nil {
		ts = oauth2.ReuseTokenSource(nil, ts)
	}

	a := &Adapter{
		HTTPProvider: providers.NewHTTPProvider(providers.HTTPConfig{
			Name:       providers.VertexAI,
			Timeout:    cfg.Timeout,
			MaxRetries: cfg.MaxRetries,
			Transport:  cfg.Transport,
		}),
		config: cfg,
		tokens: ts,
	}

	slog.Debug("Vertex AI adapter initialized",
		"project", cfg.ProjectID,
		"location", cfg.Location,
		"credentials", source,
	)
	return a, nil
}

func resolveTokenSource(ctx context.Context, cfg Config) (oauth2.TokenSource, string, error) {
	switch {
	case cfg.TokenSource != nil:
		return cfg.TokenSource, "custom", nil

	case cfg.AccessToken != "":
		return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.AccessToken}), "access_token", nil

	case cfg.CredentialsPath != "":
		data, err := os.ReadFile(cfg.CredentialsPath)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read credentials file %q: %w", cfg.CredentialsPath, err)
		}
		creds, err := google.CredentialsFromJSON(ctx, data, CloudPlatformScope)
		if err != nil {
			return nil, "", fmt.Errorf("failed to parse credentials file %q: %w", cfg.CredentialsPath, err)
		}
		return creds.TokenSource, "credentials_file", nil

	default:
		creds, err := google.FindDefaultCredentials(ctx, CloudPlatformScope)
		if err != nil {
			return nil, "", err
		}
		return creds.TokenSource, "application_default", nil
	}
}

// TokenSource returns the caching token source the adapter authenticates
// with. Passing it back through Config.TokenSource skips credential
// discovery for the next adapter.
func (a *Adapter) TokenSource() oauth2.TokenSource {
	return a.tokens
}

// Name returns "vertex_ai".
func (a *Adapter) Name() string {
	return providers.VertexAI
}

// Invoke sends one generateContent request to Vertex AI.
func (a *Adapter) Invoke(ctx context.Context, instruction string, input any, cfg providers.GenerationConfig, model string) (*providers.Response, error) {
	if err := providers.ValidateConfig(providers.VertexAI, cfg); err != nil {
		return nil, err
	}

	message, err := providers.FormatInputMessage(providers.VertexAI, instruction, input)
	if err != nil {
		return nil, err
	}

	model = providers.ResolveModel(model, a.config.DefaultModel)
	url := fmt.Sprintf("%s/v1/projects/%s/locations/%s/publishers/google/models/%s:generateContent",
		a.config.BaseURL, a.config.ProjectID, a.config.Location, strings.TrimPrefix(model, modelPrefix))

	token, err := a.tokens.Token()
	if err != nil {
		return nil, failure.New(failure.MissingAPIKey,
			"Authentication failed for vertex_ai: could not obtain an access token",
			failure.WithProvider(providers.VertexAI), failure.WithCause(err))
	}

	var resp gemini.GenerateContentResponse
	err = a.DoJSONRequest(ctx, http.MethodPost, url,
		gemini.NewRequest(message, cfg.Temperature, cfg.MaxTokens, cfg.TopP), &resp,
		map[string]string{"Authorization": token.Type() + " " + token.AccessToken},
	)
	if err != nil {
		var pe *providers.ParseError
		if errors.As(err, &pe) {
			return nil, failure.New(failure.InvalidResponse, "Received malformed response from Vertex AI",
				failure.WithProvider(providers.VertexAI), failure.WithCause(err))
		}
		return nil, failure.Classify(err, providers.VertexAI)
	}

	content := resp.Text()
	if content == "" {
		return nil, failure.New(failure.EmptyResponse, "Received empty response from Vertex AI",
			failure.WithProvider(providers.VertexAI))
	}

	var usage providers.Usage
	if resp.UsageMetadata != nil {
		usage = providers.NewUsage(
			resp.UsageMetadata.PromptTokenCount,
			resp.UsageMetadata.CandidatesTokenCount,
			0,
		)
	}

	return providers.NewResponse(providers.VertexAI, content, model, usage), nil
}
