package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestNewDefault(t *testing.T) {
	cfg := NewDefault()

	if cfg.Server.ListenAddress != DefaultListenAddress {
		t.Errorf("ListenAddress = %q", cfg.Server.ListenAddress)
	}
	if cfg.Quota.BlockDuration != 60*time.Minute {
		t.Errorf("BlockDuration = %v", cfg.Quota.BlockDuration)
	}
	if cfg.Providers.DeepSeek.BaseURL != "https://api.deepseek.com/v1" {
		t.Errorf("DeepSeek.BaseURL = %q", cfg.Providers.DeepSeek.BaseURL)
	}
	if cfg.Providers.VertexAI.Location != "us-central1" {
		t.Errorf("VertexAI.Location = %q", cfg.Providers.VertexAI.Location)
	}
	if !cfg.Ledger.Enabled || cfg.Ledger.Driver != "sqlite" || cfg.Ledger.Retention.Days != 30 {
		t.Errorf("Ledger = %+v", cfg.Ledger)
	}
	if !cfg.Telemetry.Metrics.Enabled || !cfg.Server.CORS.Enabled {
		t.Error("metrics and CORS should be enabled by default")
	}
	if tr := cfg.Telemetry.Tracing; tr.Enabled || tr.Sampler != "ratio" || tr.SampleRatio != 0.1 || tr.Endpoint != "localhost:4317" {
		t.Errorf("Tracing = %+v", tr)
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
server:
  listen_address: "0.0.0.0:9000"
  request_timeout: 45s
quota:
  block_duration: 15m
ledger:
  enabled: false
telemetry:
  logging:
    level: debug
    format: text
  metrics:
    enabled: false
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Server.ListenAddress != "0.0.0.0:9000" {
		t.Errorf("ListenAddress = %q", cfg.Server.ListenAddress)
	}
	if cfg.Server.RequestTimeout != 45*time.Second {
		t.Errorf("RequestTimeout = %v", cfg.Server.RequestTimeout)
	}
	if cfg.Server.ReadTimeout != DefaultReadTimeout {
		t.Errorf("ReadTimeout default not applied: %v", cfg.Server.ReadTimeout)
	}
	if cfg.Quota.BlockDuration != 15*time.Minute {
		t.Errorf("BlockDuration = %v", cfg.Quota.BlockDuration)
	}
	if cfg.Ledger.Enabled {
		t.Error("ledger.enabled: false should be honoured")
	}
	if cfg.Telemetry.Metrics.Enabled {
		t.Error("metrics.enabled: false should be honoured")
	}
	if cfg.Telemetry.Logging.Level != "debug" {
		t.Errorf("Level = %q", cfg.Telemetry.Logging.Level)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	if _, err := LoadConfig(writeConfig(t, "server: [")); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{"bad listen address", func(c *Config) { c.Server.ListenAddress = "localhost" }, "server.listen_address"},
		{"bad log level", func(c *Config) { c.Telemetry.Logging.Level = "verbose" }, "telemetry.logging.level"},
		{"bad log format", func(c *Config) { c.Telemetry.Logging.Format = "xml" }, "telemetry.logging.format"},
		{"bad ledger driver", func(c *Config) { c.Ledger.Driver = "postgres" }, "ledger.driver"},
		{"bad cron schedule", func(c *Config) { c.Ledger.Retention.Schedule = "every day" }, "ledger.retention.schedule"},
		{"bad base url", func(c *Config) { c.Providers.Gemini.BaseURL = "not a url" }, "providers.gemini.base_url"},
		{"negative retries", func(c *Config) { c.Providers.MaxRetries = -1 }, "providers.max_retries"},
		{"negative block duration", func(c *Config) { c.Quota.BlockDuration = -time.Minute }, "quota.block_duration"},
		{"bad sampler", func(c *Config) { c.Telemetry.Tracing.Sampler = "sometimes" }, "telemetry.tracing.sampler"},
		{"sample ratio above one", func(c *Config) { c.Telemetry.Tracing.SampleRatio = 1.5 }, "telemetry.tracing.sample_ratio"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefault()
			tt.mutate(cfg)

			err := Validate(cfg)
			var verr ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}

			found := false
			for _, fe := range verr.Errors {
				if fe.Field == tt.wantField {
					found = true
				}
			}
			if !found {
				t.Errorf("no error for %q in %v", tt.wantField, verr.Errors)
			}
		})
	}
}

func TestValidationErrorFormat(t *testing.T) {
	err := ValidationError{Errors: []FieldError{
		{Field: "a", Message: "bad"},
		{Field: "b", Message: "worse"},
	}}
	msg := err.Error()
	if !strings.Contains(msg, "2 errors") || !strings.Contains(msg, "a: bad") || !strings.Contains(msg, "b: worse") {
		t.Errorf("Error() = %q", msg)
	}
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "gem-key")
	t.Setenv("OPENAI_API_KEY", "oa-key")
	t.Setenv("ANTHROPIC_API_KEY", "ant-key")
	t.Setenv("DEEPSEEK_API_KEY", "ds-key")
	t.Setenv("DEEPSEEK_BASE_URL", "https://deepseek.example.com/v1")
	t.Setenv("VERTEX_AI_PROJECT_ID", "acme")
	t.Setenv("VERTEX_AI_LOCATION", "europe-west4")
	t.Setenv("RELAY_SERVER_LISTEN_ADDRESS", "0.0.0.0:7000")
	t.Setenv("RELAY_QUOTA_BLOCK_DURATION", "5m")
	t.Setenv("RELAY_LEDGER_ENABLED", "false")
	t.Setenv("RELAY_TELEMETRY_LOGGING_LEVEL", "warn")

	path := writeConfig(t, `
server:
  listen_address: "127.0.0.1:9000"
providers:
  gemini:
    api_key: from-file
`)

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides failed: %v", err)
	}

	p := cfg.Providers
	if p.Gemini.APIKey != "gem-key" {
		t.Errorf("environment should override the file key, got %q", p.Gemini.APIKey)
	}
	if p.OpenAI.APIKey != "oa-key" || p.Claude.APIKey != "ant-key" || p.DeepSeek.APIKey != "ds-key" {
		t.Errorf("credentials not loaded: %+v", p)
	}
	if p.DeepSeek.BaseURL != "https://deepseek.example.com/v1" {
		t.Errorf("DeepSeek.BaseURL = %q", p.DeepSeek.BaseURL)
	}
	if p.VertexAI.ProjectID != "acme" || p.VertexAI.Location != "europe-west4" {
		t.Errorf("VertexAI = %+v", p.VertexAI)
	}
	if cfg.Server.ListenAddress != "0.0.0.0:7000" {
		t.Errorf("ListenAddress = %q", cfg.Server.ListenAddress)
	}
	if cfg.Quota.BlockDuration != 5*time.Minute {
		t.Errorf("BlockDuration = %v", cfg.Quota.BlockDuration)
	}
	if cfg.Ledger.Enabled {
		t.Error("RELAY_LEDGER_ENABLED=false should disable the ledger")
	}
	if cfg.Telemetry.Logging.Level != "warn" {
		t.Errorf("Level = %q", cfg.Telemetry.Logging.Level)
	}
}

func TestLoadConfigWithEnvOverrides_NoFile(t *testing.T) {
	cfg, err := LoadConfigWithEnvOverrides("")
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides failed: %v", err)
	}
	if cfg.Server.ListenAddress == "" {
		t.Error("defaults should be applied without a file")
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "RELAY_TEST_DOTENV_VALUE=from-file\nRELAY_TEST_DOTENV_KEEP=from-file\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("RELAY_TEST_DOTENV_KEEP", "from-env")
	os.Unsetenv("RELAY_TEST_DOTENV_VALUE")
	t.Cleanup(func() { os.Unsetenv("RELAY_TEST_DOTENV_VALUE") })

	if err := LoadDotEnv(path, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("LoadDotEnv failed: %v", err)
	}

	if got := os.Getenv("RELAY_TEST_DOTENV_VALUE"); got != "from-file" {
		t.Errorf("RELAY_TEST_DOTENV_VALUE = %q", got)
	}
	if got := os.Getenv("RELAY_TEST_DOTENV_KEEP"); got != "from-env" {
		t.Errorf("existing variables must not be overridden, got %q", got)
	}
}

func TestSingleton(t *testing.T) {
	cfg := NewDefault()
	SetConfig(cfg)
	if GetConfig() != cfg {
		t.Error("GetConfig should return the stored configuration")
	}
	if MustGetConfig() != cfg {
		t.Error("MustGetConfig should return the stored configuration")
	}

	path := writeConfig(t, "quota:\n  block_duration: 2m\n")
	reloaded, err := ReloadConfig(path)
	if err != nil {
		t.Fatalf("ReloadConfig failed: %v", err)
	}
	if GetConfig() != reloaded || reloaded.Quota.BlockDuration != 2*time.Minute {
		t.Errorf("reloaded config not stored: %+v", reloaded.Quota)
	}

	if _, err := ReloadConfig(writeConfig(t, "server:\n  listen_address: nope\n")); err == nil {
		t.Error("expected reload error")
	}
	if GetConfig() != reloaded {
		t.Error("failed reload must keep the previous configuration")
	}
}
