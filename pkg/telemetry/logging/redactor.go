package logging

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
)

// Redactor masks credentials in log attributes.
type Redactor struct {
	patterns []*redactPattern
}

// redactPattern contains a compiled regex and replacement string.
type redactPattern struct {
	name        string
	regex       *regexp.Regexp
	replacement string
}

// Built-in pattern names.
const (
	PatternAnthropicKey = "anthropic_key"
	PatternOpenAIKey    = "openai_key"
	PatternGoogleKey    = "google_key"
	PatternBearerToken  = "bearer_token"
	PatternKeyParam     = "key_param"
)

// Order matters: the Anthropic prefix also matches the OpenAI pattern.
var defaultPatterns = []struct {
	name, regex, replacement string
}{
	{PatternAnthropicKey, `sk-ant-[A-Za-z0-9_\-]+`, "sk-ant-***"},
	{PatternOpenAIKey, `sk-[A-Za-z0-9_\-]{8,}`, "sk-***"},
	{PatternGoogleKey, `AIza[0-9A-Za-z_\-]{20,}`, "AIza***"},
	{PatternBearerToken, `Bearer\s+[A-Za-z0-9\-._~+/]+=*`, "Bearer ***"},
	{PatternKeyParam, `([?&]key=)[^&\s]+`, "${1}***"},
}

// sensitiveKeys are attribute keys whose values are always masked.
var sensitiveKeys = []string{
	"api_key", "apikey", "access_token", "secret",
	"password", "authorization",
}

// NewRedactor creates a Redactor with the built-in patterns plus custom
// ones, which replace their matches with "***".
func NewRedactor(custom []string) (*Redactor, error) {
	r := &Redactor{}
	for _, p := range defaultPatterns {
		r.patterns = append(r.patterns, &redactPattern{
			name:        p.name,
			regex:       regexp.MustCompile(p.regex),
			replacement: p.replacement,
		})
	}
	for i, expr := range custom {
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("invalid redact pattern %d %q: %w", i, expr, err)
		}
		r.patterns = append(r.patterns, &redactPattern{
			name:        fmt.Sprintf("custom_%d", i),
			regex:       re,
			replacement: "***",
		})
	}
	return r, nil
}

// RedactString masks every pattern match in value.
func (r *Redactor) RedactString(value string) string {
	if value == "" {
		return value
	}
	for _, p := range r.patterns {
		value = p.regex.ReplaceAllString(value, p.replacement)
	}
	return value
}

// ReplaceAttr is a slog.HandlerOptions.ReplaceAttr hook. Sensitive keys are
// masked entirely; strings and errors are pattern-redacted.
func (r *Redactor) ReplaceAttr(_ []string, a slog.Attr) slog.Attr {
	if isSensitiveKey(a.Key) {
		if s, ok := a.Value.Any().(string); ok {
			return slog.String(a.Key, RedactAPIKey(s))
		}
		return slog.String(a.Key, "***")
	}

	switch a.Value.Kind() {
	case slog.KindString:
		if s := a.Value.String(); s != "" {
			return slog.String(a.Key, r.RedactString(s))
		}
	case slog.KindAny:
		if err, ok := a.Value.Any().(error); ok && err != nil {
			return slog.String(a.Key, r.RedactString(err.Error()))
		}
	}
	return a
}

func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, s := range sensitiveKeys {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

// RedactAPIKey masks an API key, keeping only a short prefix.
func RedactAPIKey(apiKey string) string {
	if apiKey == "" {
		return ""
	}
	if len(apiKey) <= 4 {
		return "***"
	}
	return apiKey[:4] + "***"
}
