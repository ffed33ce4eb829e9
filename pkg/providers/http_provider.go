package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"datacrunch-hq/relay/pkg/telemetry/tracing"
)

// HTTPConfig configures the pooled HTTP client shared by REST adapters.
type HTTPConfig struct {
	// Name is the provider name used in errors and logs.
	Name string

	// Timeout bounds a single round trip.
	Timeout time.Duration

	// MaxRetries is the number of additional attempts for network errors and
	// 5xx responses. Zero disables retries.
	MaxRetries int

	// MaxIdleConns caps idle connections across all hosts.
	MaxIdleConns int

	// MaxIdleConnsPerHost caps idle connections per host.
	MaxIdleConnsPerHost int

	// IdleConnTimeout closes idle connections after this duration.
	IdleConnTimeout time.Duration

	// Transport overrides the default pooled transport, mainly for tests and
	// for authenticated transports such as oauth2.Transport.
	Transport http.RoundTripper
}

func (c *HTTPConfig) applyDefaults() {
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxIdleConns == 0 {
		c.MaxIdleConns = 100
	}
	if c.MaxIdleConnsPerHost == 0 {
		c.MaxIdleConnsPerHost = 10
	}
	if c.IdleConnTimeout == 0 {
		c.IdleConnTimeout = 90 * time.Second
	}
}

// HTTPProvider is the base implementation for HTTP-based adapters. It owns a
// pooled client and maps transport failures onto the error types in this
// package.
type HTTPProvider struct {
	config HTTPConfig
	client *http.Client
}

// NewTransport builds the pooled transport described by config. Callers that
// construct adapters repeatedly build one and share it through
// HTTPConfig.Transport.
func NewTransport(config HTTPConfig) *http.Transport {
	config.applyDefaults()
	return &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        config.MaxIdleConns,
		MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
		IdleConnTimeout:     config.IdleConnTimeout,
		ForceAttemptHTTP2:   true,
	}
}

// NewHTTPProvider creates a new base HTTP provider with connection pooling.
func NewHTTPProvider(config HTTPConfig) *HTTPProvider {
	config.applyDefaults()

	transport := config.Transport
	if transport == nil {
		transport = NewTransport(config)
	}

	return &HTTPProvider{
		config: config,
		client: &http.Client{
			Transport: transport,
			Timeout:   config.Timeout,
		},
	}
}

// Name returns the provider name.
func (p *HTTPProvider) Name() string {
	return p.config.Name
}

// Client returns the underlying HTTP client.
func (p *HTTPProvider) Client() *http.Client {
	return p.client
}

// DoRequest performs an HTTP request and returns the response for any 2xx
// status. Network errors and 5xx responses are retried MaxRetries times,
// waiting 1s, 2s, 4s and so on between attempts. Other statuses map onto
// AuthError, RateLimitError or ProviderError without a retry.
func (p *HTTPProvider) DoRequest(ctx context.Context, method, url string, body []byte, headers map[string]string) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt <= p.config.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := p.backoff(ctx, attempt); err != nil {
				return nil, err
			}
		}

		req, err := p.newRequest(ctx, method, url, body, headers)
		if err != nil {
			return nil, err
		}

		resp, err := p.client.Do(req)
		if err != nil {
			if ctx.Err() != nil || isTimeout(err) {
				return nil, &TimeoutError{Provider: p.config.Name, Timeout: p.config.Timeout}
			}
			lastErr = &ProviderError{Provider: p.config.Name, Message: "network connection failed", Cause: err}
			slog.WarnContext(ctx, "provider request failed",
				"provider", p.config.Name, "attempt", attempt+1, "error", err)
			continue
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return resp, nil
		}

		lastErr = p.statusError(resp)
		if resp.StatusCode < http.StatusInternalServerError {
			return nil, lastErr
		}
		slog.WarnContext(ctx, "provider returned server error",
			"provider", p.config.Name, "status", resp.StatusCode, "attempt", attempt+1)
	}

	return nil, lastErr
}

func (p *HTTPProvider) backoff(ctx context.Context, attempt int) error {
	wait := time.Second << (attempt - 1)
	slog.DebugContext(ctx, "retrying provider request",
		"provider", p.config.Name, "attempt", attempt, "backoff", wait)

	t := time.NewTimer(wait)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return &TimeoutError{Provider: p.config.Name, Timeout: p.config.Timeout}
	case <-t.C:
		return nil
	}
}

func (p *HTTPProvider) newRequest(ctx context.Context, method, url string, body []byte, headers map[string]string) (*http.Request, error) {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, r)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	tracing.Inject(ctx, req.Header)
	return req, nil
}

// statusError drains and closes resp and describes its status.
func (p *HTTPProvider) statusError(resp *http.Response) error {
	defer resp.Body.Close()
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	msg := string(raw)

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &AuthError{Provider: p.config.Name, StatusCode: resp.StatusCode, Message: msg}
	case http.StatusTooManyRequests:
		return &RateLimitError{
			Provider:   p.config.Name,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Message:    msg,
		}
	default:
		return &ProviderError{Provider: p.config.Name, StatusCode: resp.StatusCode, Message: msg}
	}
}

// DoJSONRequest performs a JSON request and decodes the response into respBody.
func (p *HTTPProvider) DoJSONRequest(ctx context.Context, method, url string, reqBody, respBody any, headers map[string]string) error {
	var bodyBytes []byte
	if reqBody != nil {
		var err error
		bodyBytes, err = json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	resp, err := p.DoRequest(ctx, method, url, bodyBytes, headers)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	responseBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return &ParseError{
			Provider: p.config.Name,
			Cause:    fmt.Errorf("failed to read response: %w", err),
		}
	}

	if respBody != nil && len(responseBytes) > 0 {
		if err := json.Unmarshal(responseBytes, respBody); err != nil {
			return &ParseError{
				Provider:    p.config.Name,
				RawResponse: truncate(string(responseBytes), maxErrorBody),
				Cause:       fmt.Errorf("failed to unmarshal response: %w", err),
			}
		}
	}

	return nil
}

// Close releases idle connections.
func (p *HTTPProvider) Close() error {
	p.client.CloseIdleConnections()
	return nil
}

const maxErrorBody = 4096

func isTimeout(err error) bool {
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}

// parseRetryAfter accepts delay-seconds or an HTTP date.
func parseRetryAfter(v string) time.Duration {
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
