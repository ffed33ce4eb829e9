// Package providerfactory wires the provider adapters to configuration.
//
// NewDefaultRegistry registers one constructor per supported backend. Each
// constructor reads its section of config.ProvidersConfig when it is called,
// so a missing credential surfaces as a structured missing_api_key failure
// at dispatch time rather than at startup. All adapters built by one
// registry share a single pooled transport, and Vertex AI token sources are
// reused until the credential settings change.
package providerfactory

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"datacrunch-hq/relay/pkg/config"
	"datacrunch-hq/relay/pkg/providers"
	"datacrunch-hq/relay/pkg/providers/claude"
	"datacrunch-hq/relay/pkg/providers/deepseek"
	"datacrunch-hq/relay/pkg/providers/gemini"
	"datacrunch-hq/relay/pkg/providers/openai"
	"datacrunch-hq/relay/pkg/providers/vertexai"
	"datacrunch-hq/relay/pkg/quota"
)

// NewDefaultRegistry registers gemini, openai, claude, deepseek and
// vertex_ai, in that order. tracker is handed to the Gemini adapter, which
// keeps its own quota bookkeeping; blockDuration is the duration it blocks
// for.
func NewDefaultRegistry(cfg *config.ProvidersConfig, tracker *quota.Tracker, blockDuration time.Duration) *Registry {
	r := NewRegistry()
	transport := providers.NewTransport(providers.HTTPConfig{})
	vertexTokens := &tokenCache{}

	r.Register(providers.Gemini, func(ctx context.Context) (providers.Adapter, error) {
		logCreate(ctx, providers.Gemini)
		return adapter(gemini.NewAdapter(gemini.Config{
			APIKey:        cfg.Gemini.APIKey,
			BaseURL:       cfg.Gemini.BaseURL,
			DefaultModel:  cfg.Gemini.DefaultModel,
			Timeout:       cfg.Timeout,
			MaxRetries:    cfg.MaxRetries,
			BlockDuration: blockDuration,
			Transport:     transport,
		}, tracker))
	})

	r.Register(providers.OpenAI, func(ctx context.Context) (providers.Adapter, error) {
		logCreate(ctx, providers.OpenAI)
		return adapter(openai.NewAdapter(openai.Config{
			APIKey:       cfg.OpenAI.APIKey,
			BaseURL:      cfg.OpenAI.BaseURL,
			Organization: cfg.OpenAI.Organization,
			DefaultModel: cfg.OpenAI.DefaultModel,
			Timeout:      cfg.Timeout,
			Transport:    transport,
		}))
	})

	r.Register(providers.Claude, func(ctx context.Context) (providers.Adapter, error) {
		logCreate(ctx, providers.Claude)
		return adapter(claude.NewAdapter(claude.Config{
			APIKey:       cfg.Claude.APIKey,
			BaseURL:      cfg.Claude.BaseURL,
			DefaultModel: cfg.Claude.DefaultModel,
			Timeout:      cfg.Timeout,
			Transport:    transport,
		}))
	})

	r.Register(providers.DeepSeek, func(ctx context.Context) (providers.Adapter, error) {
		logCreate(ctx, providers.DeepSeek)
		return adapter(deepseek.NewAdapter(deepseek.Config{
			APIKey:       cfg.DeepSeek.APIKey,
			BaseURL:      cfg.DeepSeek.BaseURL,
			DefaultModel: cfg.DeepSeek.DefaultModel,
			Timeout:      cfg.Timeout,
			Transport:    transport,
		}))
	})

	r.Register(providers.VertexAI, func(ctx context.Context) (providers.Adapter, error) {
		logCreate(ctx, providers.VertexAI)
		vc := vertexai.Config{
			ProjectID:       cfg.VertexAI.ProjectID,
			Location:        cfg.VertexAI.Location,
			CredentialsPath: cfg.VertexAI.CredentialsPath,
			AccessToken:     cfg.VertexAI.AccessToken,
			BaseURL:         cfg.VertexAI.BaseURL,
			DefaultModel:    cfg.VertexAI.DefaultModel,
			Timeout:         cfg.Timeout,
			MaxRetries:      cfg.MaxRetries,
			Transport:       transport,
		}
		return vertexTokens.build(ctx, vc)
	})

	return r
}

// tokenCache keeps the Vertex AI token source across requests. The key covers
// the credential settings and the credentials file's modification time, so a
// rotated file or token is picked up on the next request.
type tokenCache struct {
	mu     sync.Mutex
	key    string
	tokens oauth2.TokenSource
}

func (c *tokenCache) build(ctx context.Context, cfg vertexai.Config) (providers.Adapter, error) {
	key := credentialKey(cfg)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.tokens != nil && c.key == key {
		cfg.TokenSource = c.tokens
	}
	a, err := vertexai.NewAdapter(ctx, cfg)
	if err != nil {
		return nil, err
	}
	c.key, c.tokens = key, a.TokenSource()
	return a, nil
}

func credentialKey(cfg vertexai.Config) string {
	var mod int64
	if cfg.CredentialsPath != "" {
		if fi, err := os.Stat(cfg.CredentialsPath); err == nil {
			mod = fi.ModTime().UnixNano()
		}
	}
	return fmt.Sprintf("%s|%s|%s|%d", cfg.ProjectID, cfg.AccessToken, cfg.CredentialsPath, mod)
}

// adapter keeps a failed constructor from yielding a non-nil interface
// holding a nil pointer.
func adapter[A providers.Adapter](a A, err error) (providers.Adapter, error) {
	if err != nil {
		return nil, err
	}
	return a, nil
}

func logCreate(ctx context.Context, name string) {
	slog.DebugContext(ctx, "creating provider adapter", "provider", name)
}
