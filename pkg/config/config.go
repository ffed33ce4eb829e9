package config

import "time"

// Config is the root configuration structure for the relay.
// It contains all configuration sections for the HTTP server, the LLM
// backends, quota handling, the model catalogue, prompt templates, the usage
// ledger and telemetry.
type Config struct {
	// Server contains HTTP server configuration including listen address,
	// timeouts, and CORS.
	Server ServerConfig `yaml:"server"`

	// Providers contains credentials and connection settings for every
	// supported backend.
	Providers ProvidersConfig `yaml:"providers"`

	// Quota controls how long a provider stays blocked after its backend
	// reports quota exhaustion.
	Quota QuotaConfig `yaml:"quota"`

	// Catalogue configures the model catalogue overlay file.
	Catalogue CatalogueConfig `yaml:"catalogue"`

	// Prompts configures the prompt template file.
	Prompts PromptsConfig `yaml:"prompts"`

	// Ledger configures the SQLite usage ledger.
	Ledger LedgerConfig `yaml:"ledger"`

	// Telemetry contains logging, metrics and tracing configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Format: "host:port" (e.g., "127.0.0.1:8000", "0.0.0.0:8000").
	// Default: "127.0.0.1:8000"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response. It must exceed RequestTimeout so that slow backends can
	// still be answered.
	// Default: 150s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next request
	// when keep-alives are enabled.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// RequestTimeout bounds the handling of a single request, including the
	// backend call.
	// Default: 120s
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// MaxHeaderBytes limits the size of request headers.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// MaxBodyBytes limits the size of request bodies.
	// Default: 10485760 (10MB)
	MaxBodyBytes int64 `yaml:"max_body_bytes"`

	// CORS contains Cross-Origin Resource Sharing configuration.
	CORS CORSConfig `yaml:"cors"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	// Enabled controls whether CORS headers are added.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// AllowedOrigins lists the allowed origins. Use ["*"] for any origin.
	// Default: ["*"]
	AllowedOrigins []string `yaml:"allowed_origins"`

	// AllowedMethods lists the allowed HTTP methods.
	AllowedMethods []string `yaml:"allowed_methods"`

	// AllowedHeaders lists the allowed request headers.
	AllowedHeaders []string `yaml:"allowed_headers"`

	// MaxAge is the preflight cache lifetime in seconds.
	// Default: 3600
	MaxAge int `yaml:"max_age"`
}

// ProvidersConfig contains settings shared by all backends plus one section
// per backend. Credentials are normally supplied through the environment.
type ProvidersConfig struct {
	// Timeout bounds a single backend round trip.
	// Default: 60s
	Timeout time.Duration `yaml:"timeout" validate:"gte=0"`

	// MaxRetries enables transport-level retries of network errors and 5xx
	// responses for the REST adapters. Zero disables them.
	// Default: 0
	MaxRetries int `yaml:"max_retries" validate:"gte=0,lte=10"`

	Gemini   GeminiConfig   `yaml:"gemini"`
	OpenAI   OpenAIConfig   `yaml:"openai"`
	Claude   ClaudeConfig   `yaml:"claude"`
	DeepSeek DeepSeekConfig `yaml:"deepseek"`
	VertexAI VertexAIConfig `yaml:"vertex_ai"`
}

// GeminiConfig configures the Gemini backend.
type GeminiConfig struct {
	// APIKey authenticates requests. Environment: GEMINI_API_KEY.
	APIKey string `yaml:"api_key" env:"GEMINI_API_KEY"`

	// BaseURL overrides the public endpoint, mainly for testing.
	BaseURL string `yaml:"base_url" validate:"omitempty,url"`

	// DefaultModel is used when a request names no model.
	// Default: "gemini-pro"
	DefaultModel string `yaml:"default_model"`
}

// OpenAIConfig configures the OpenAI backend.
type OpenAIConfig struct {
	// APIKey authenticates requests. Environment: OPENAI_API_KEY.
	APIKey string `yaml:"api_key" env:"OPENAI_API_KEY"`

	// BaseURL overrides the public endpoint.
	BaseURL string `yaml:"base_url" validate:"omitempty,url"`

	// Organization is sent as the OpenAI-Organization header when set.
	Organization string `yaml:"organization" env:"OPENAI_ORGANIZATION"`

	// DefaultModel is used when a request names no model.
	// Default: "gpt-3.5-turbo"
	DefaultModel string `yaml:"default_model"`
}

// ClaudeConfig configures the Anthropic backend.
type ClaudeConfig struct {
	// APIKey authenticates requests. Environment: ANTHROPIC_API_KEY.
	APIKey string `yaml:"api_key" env:"ANTHROPIC_API_KEY"`

	// BaseURL overrides the public endpoint.
	BaseURL string `yaml:"base_url" validate:"omitempty,url"`

	// DefaultModel is used when a request names no model.
	// Default: "claude-3-opus-20240229"
	DefaultModel string `yaml:"default_model"`
}

// DeepSeekConfig configures the DeepSeek backend.
type DeepSeekConfig struct {
	// APIKey authenticates requests. Environment: DEEPSEEK_API_KEY.
	APIKey string `yaml:"api_key" env:"DEEPSEEK_API_KEY"`

	// BaseURL is the OpenAI-compatible endpoint. Environment: DEEPSEEK_BASE_URL.
	// Default: "https://api.deepseek.com/v1"
	BaseURL string `yaml:"base_url" env:"DEEPSEEK_BASE_URL" validate:"omitempty,url"`

	// DefaultModel is used when a request names no model.
	// Default: "deepseek-chat"
	DefaultModel string `yaml:"default_model"`
}

// VertexAIConfig configures the Vertex AI backend.
type VertexAIConfig struct {
	// ProjectID is the Google Cloud project. Environment: VERTEX_AI_PROJECT_ID.
	ProjectID string `yaml:"project_id" env:"VERTEX_AI_PROJECT_ID"`

	// Location is the Vertex AI region. Environment: VERTEX_AI_LOCATION.
	// Default: "us-central1"
	Location string `yaml:"location" env:"VERTEX_AI_LOCATION"`

	// CredentialsPath points at a service account JSON file.
	// Environment: VERTEX_AI_CREDENTIALS_PATH.
	CredentialsPath string `yaml:"credentials_path" env:"VERTEX_AI_CREDENTIALS_PATH"`

	// AccessToken is a pre-issued OAuth2 token, used instead of
	// CredentialsPath when set. Environment: VERTEX_AI_ACCESS_TOKEN.
	AccessToken string `yaml:"access_token" env:"VERTEX_AI_ACCESS_TOKEN"`

	// BaseURL overrides the regional endpoint.
	BaseURL string `yaml:"base_url" validate:"omitempty,url"`

	// DefaultModel is used when a request names no model.
	// Default: "gemini-pro"
	DefaultModel string `yaml:"default_model"`
}

// QuotaConfig controls provider blocking.
type QuotaConfig struct {
	// BlockDuration is how long a provider stays blocked after a quota
	// failure.
	// Default: 60m
	BlockDuration time.Duration `yaml:"block_duration" validate:"gte=0"`
}

// CatalogueConfig configures the model catalogue.
type CatalogueConfig struct {
	// OverlayPath is an optional YAML file whose models replace or extend
	// the built-in catalogue.
	OverlayPath string `yaml:"overlay_path"`

	// Watch reloads the overlay when the file changes.
	Watch bool `yaml:"watch"`
}

// PromptsConfig configures prompt templates.
type PromptsConfig struct {
	// Path is an optional YAML file whose templates replace or extend the
	// built-in templates.
	Path string `yaml:"path"`

	// Watch reloads the file when it changes.
	Watch bool `yaml:"watch"`
}

// LedgerConfig configures the usage ledger.
type LedgerConfig struct {
	// Enabled turns usage recording on.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Driver selects the SQLite driver: "sqlite" (pure Go, modernc.org/sqlite)
	// or "sqlite3" (cgo, github.com/mattn/go-sqlite3).
	// Default: "sqlite"
	Driver string `yaml:"driver" validate:"omitempty,oneof=sqlite sqlite3"`

	// Path is the database file.
	// Default: "data/usage.db"
	Path string `yaml:"path"`

	// BusyTimeout is how long SQLite waits on a locked database.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout" validate:"gte=0"`

	// BufferSize is the capacity of the asynchronous write queue.
	// Default: 1000
	BufferSize int `yaml:"buffer_size" validate:"gte=0"`

	// Retention controls pruning of old entries.
	Retention RetentionConfig `yaml:"retention"`
}

// RetentionConfig controls ledger pruning.
type RetentionConfig struct {
	// Days is the age after which entries are deleted. Zero keeps entries
	// forever.
	// Default: 30
	Days int `yaml:"days" validate:"gte=0"`

	// Schedule is a standard 5-field cron expression.
	// Default: "0 3 * * *"
	Schedule string `yaml:"schedule"`
}

// TelemetryConfig contains observability settings.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	// Default: "info"
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`

	// Format is one of json, text, console.
	// Default: "json"
	Format string `yaml:"format" validate:"omitempty,oneof=json text console"`

	// AddSource includes file and line in log records.
	AddSource bool `yaml:"add_source"`

	// RedactPatterns are extra regular expressions whose matches are masked
	// in log output, on top of the built-in API key patterns.
	RedactPatterns []string `yaml:"redact_patterns"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	// Enabled exposes the metrics endpoint.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path of the endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace prefixes every metric name.
	// Default: "relay"
	Namespace string `yaml:"namespace"`
}

// TracingConfig configures OpenTelemetry tracing.
type TracingConfig struct {
	// Enabled exports spans to an OTLP collector.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Endpoint is the OTLP gRPC collector address.
	// Default: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// Insecure disables TLS towards the collector.
	Insecure bool `yaml:"insecure"`

	// Timeout bounds each export.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout" validate:"gte=0"`

	// Sampler is one of always, never, ratio.
	// Default: "ratio"
	Sampler string `yaml:"sampler" validate:"omitempty,oneof=always never ratio"`

	// SampleRatio is the fraction of root traces sampled by the ratio
	// sampler. Zero means the default; use sampler "never" to sample nothing.
	// Default: 0.1
	SampleRatio float64 `yaml:"sample_ratio" validate:"gte=0,lte=1"`

	// ServiceName is reported as service.name.
	// Default: "relay"
	ServiceName string `yaml:"service_name"`
}
