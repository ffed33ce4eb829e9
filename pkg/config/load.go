package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any errors.
// The configuration is not modified by environment variables; use
// LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// parse decodes YAML over a configuration whose boolean switches are
// already seeded with their defaults, then fills in the remaining defaults.
func parse(data []byte) (*Config, error) {
	cfg := NewDefault()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	ApplyDefaults(cfg)
	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration and applies the environment
// on top of it. An empty path starts from defaults.
//
// The loading sequence is:
//  1. Load YAML from file (or defaults when path is empty)
//  2. Apply default values
//  3. Load a .env file from the working directory, if present, without
//     overriding variables that are already set
//  4. Read provider credentials (GEMINI_API_KEY, OPENAI_API_KEY, ...)
//  5. Apply RELAY_* overrides
//  6. Validate the final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	var cfg *Config
	if path == "" {
		cfg = NewDefault()
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
		}
		cfg, err = parse(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
		}
	}

	if err := LoadDotEnv(".env"); err != nil {
		return nil, err
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// LoadDotEnv loads variables from the given files into the process
// environment. Missing files are skipped and variables that are already set
// keep their value.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %q: %w", p, err)
		}
	}
	return nil
}

// envOverrides lists the RELAY_* variables. Pointer fields stay nil when the
// variable is unset.
type envOverrides struct {
	ListenAddress   *string        `env:"RELAY_SERVER_LISTEN_ADDRESS"`
	RequestTimeout  *time.Duration `env:"RELAY_SERVER_REQUEST_TIMEOUT"`
	ShutdownTimeout *time.Duration `env:"RELAY_SERVER_SHUTDOWN_TIMEOUT"`

	ProviderTimeout    *time.Duration `env:"RELAY_PROVIDERS_TIMEOUT"`
	ProviderMaxRetries *int           `env:"RELAY_PROVIDERS_MAX_RETRIES"`

	BlockDuration *time.Duration `env:"RELAY_QUOTA_BLOCK_DURATION"`

	CatalogueOverlay *string `env:"RELAY_CATALOGUE_OVERLAY_PATH"`
	PromptsPath      *string `env:"RELAY_PROMPTS_PATH"`

	LedgerEnabled       *bool   `env:"RELAY_LEDGER_ENABLED"`
	LedgerDriver        *string `env:"RELAY_LEDGER_DRIVER"`
	LedgerPath          *string `env:"RELAY_LEDGER_PATH"`
	LedgerRetentionDays *int    `env:"RELAY_LEDGER_RETENTION_DAYS"`

	LogLevel       *string `env:"RELAY_TELEMETRY_LOGGING_LEVEL"`
	LogFormat      *string `env:"RELAY_TELEMETRY_LOGGING_FORMAT"`
	MetricsEnabled *bool   `env:"RELAY_TELEMETRY_METRICS_ENABLED"`
	MetricsPath    *string `env:"RELAY_TELEMETRY_METRICS_PATH"`

	TracingEnabled  *bool    `env:"RELAY_TELEMETRY_TRACING_ENABLED"`
	TracingEndpoint *string  `env:"RELAY_TELEMETRY_TRACING_ENDPOINT"`
	TracingRatio    *float64 `env:"RELAY_TELEMETRY_TRACING_SAMPLE_RATIO"`
}

// applyEnv reads provider credentials and RELAY_* overrides.
func applyEnv(cfg *Config) error {
	if err := env.Parse(&cfg.Providers); err != nil {
		return fmt.Errorf("failed to read provider credentials from environment: %w", err)
	}

	var o envOverrides
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("failed to read RELAY_* overrides: %w", err)
	}

	set(&cfg.Server.ListenAddress, o.ListenAddress)
	set(&cfg.Server.RequestTimeout, o.RequestTimeout)
	set(&cfg.Server.ShutdownTimeout, o.ShutdownTimeout)
	set(&cfg.Providers.Timeout, o.ProviderTimeout)
	set(&cfg.Providers.MaxRetries, o.ProviderMaxRetries)
	set(&cfg.Quota.BlockDuration, o.BlockDuration)
	set(&cfg.Catalogue.OverlayPath, o.CatalogueOverlay)
	set(&cfg.Prompts.Path, o.PromptsPath)
	set(&cfg.Ledger.Enabled, o.LedgerEnabled)
	set(&cfg.Ledger.Driver, o.LedgerDriver)
	set(&cfg.Ledger.Path, o.LedgerPath)
	set(&cfg.Ledger.Retention.Days, o.LedgerRetentionDays)
	set(&cfg.Telemetry.Logging.Level, o.LogLevel)
	set(&cfg.Telemetry.Logging.Format, o.LogFormat)
	set(&cfg.Telemetry.Metrics.Enabled, o.MetricsEnabled)
	set(&cfg.Telemetry.Metrics.Path, o.MetricsPath)
	set(&cfg.Telemetry.Tracing.Enabled, o.TracingEnabled)
	set(&cfg.Telemetry.Tracing.Endpoint, o.TracingEndpoint)
	set(&cfg.Telemetry.Tracing.SampleRatio, o.TracingRatio)

	return nil
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
