package config

import "time"

// Default values for configuration fields.
const (
	// Server defaults
	DefaultListenAddress   = "127.0.0.1:8000"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 150 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultRequestTimeout  = 120 * time.Second
	DefaultMaxHeaderBytes  = 1048576  // 1MB
	DefaultMaxBodyBytes    = 10485760 // 10MB

	// CORS defaults
	DefaultCORSEnabled = true
	DefaultCORSMaxAge  = 3600 // 1 hour

	// Provider defaults
	DefaultProviderTimeout  = 60 * time.Second
	DefaultGeminiModel      = "gemini-pro"
	DefaultOpenAIModel      = "gpt-3.5-turbo"
	DefaultClaudeModel      = "claude-3-opus-20240229"
	DefaultDeepSeekModel    = "deepseek-chat"
	DefaultDeepSeekBaseURL  = "https://api.deepseek.com/v1"
	DefaultVertexAIModel    = "gemini-pro"
	DefaultVertexAILocation = "us-central1"

	// Quota defaults
	DefaultBlockDuration = 60 * time.Minute

	// Ledger defaults
	DefaultLedgerEnabled     = true
	DefaultLedgerDriver      = "sqlite"
	DefaultLedgerPath        = "data/usage.db"
	DefaultLedgerBusyTimeout = 5 * time.Second
	DefaultLedgerBufferSize  = 1000
	DefaultRetentionDays     = 30
	DefaultRetentionSchedule = "0 3 * * *"

	// Telemetry defaults
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "json"
	DefaultMetricsEnabled   = true
	DefaultMetricsPath      = "/metrics"
	DefaultMetricsNamespace = "relay"
	DefaultTracingEndpoint  = "localhost:4317"
	DefaultTracingTimeout   = 10 * time.Second
	DefaultTracingSampler   = "ratio"
	DefaultTracingRatio     = 0.1
	DefaultServiceName      = "relay"
)

// DefaultCORSAllowedMethods are the methods allowed for cross-origin requests.
var DefaultCORSAllowedMethods = []string{"GET", "POST", "OPTIONS"}

// DefaultCORSAllowedHeaders are the headers allowed for cross-origin requests.
var DefaultCORSAllowedHeaders = []string{"Content-Type", "X-Request-ID"}

// NewDefault returns a configuration populated with defaults only.
func NewDefault() *Config {
	cfg := &Config{
		Server: ServerConfig{CORS: CORSConfig{Enabled: DefaultCORSEnabled}},
		Ledger: LedgerConfig{Enabled: DefaultLedgerEnabled, Retention: RetentionConfig{Days: DefaultRetentionDays}},
		Telemetry: TelemetryConfig{
			Metrics: MetricsConfig{Enabled: DefaultMetricsEnabled},
		},
	}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills every zero-valued field with its default. Boolean
// switches are left alone; LoadConfig seeds them before parsing YAML.
func ApplyDefaults(cfg *Config) {
	applyServerDefaults(&cfg.Server)
	applyProviderDefaults(&cfg.Providers)

	if cfg.Quota.BlockDuration == 0 {
		cfg.Quota.BlockDuration = DefaultBlockDuration
	}

	applyLedgerDefaults(&cfg.Ledger)
	applyTelemetryDefaults(&cfg.Telemetry)
}

func applyServerDefaults(s *ServerConfig) {
	if s.ListenAddress == "" {
		s.ListenAddress = DefaultListenAddress
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = DefaultReadTimeout
	}
	if s.WriteTimeout == 0 {
		s.WriteTimeout = DefaultWriteTimeout
	}
	if s.IdleTimeout == 0 {
		s.IdleTimeout = DefaultIdleTimeout
	}
	if s.ShutdownTimeout == 0 {
		s.ShutdownTimeout = DefaultShutdownTimeout
	}
	if s.RequestTimeout == 0 {
		s.RequestTimeout = DefaultRequestTimeout
	}
	if s.MaxHeaderBytes == 0 {
		s.MaxHeaderBytes = DefaultMaxHeaderBytes
	}
	if s.MaxBodyBytes == 0 {
		s.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if len(s.CORS.AllowedOrigins) == 0 {
		s.CORS.AllowedOrigins = []string{"*"}
	}
	if len(s.CORS.AllowedMethods) == 0 {
		s.CORS.AllowedMethods = append([]string(nil), DefaultCORSAllowedMethods...)
	}
	if len(s.CORS.AllowedHeaders) == 0 {
		s.CORS.AllowedHeaders = append([]string(nil), DefaultCORSAllowedHeaders...)
	}
	if s.CORS.MaxAge == 0 {
		s.CORS.MaxAge = DefaultCORSMaxAge
	}
}

func applyProviderDefaults(p *ProvidersConfig) {
	if p.Timeout == 0 {
		p.Timeout = DefaultProviderTimeout
	}
	if p.Gemini.DefaultModel == "" {
		p.Gemini.DefaultModel = DefaultGeminiModel
	}
	if p.OpenAI.DefaultModel == "" {
		p.OpenAI.DefaultModel = DefaultOpenAIModel
	}
	if p.Claude.DefaultModel == "" {
		p.Claude.DefaultModel = DefaultClaudeModel
	}
	if p.DeepSeek.DefaultModel == "" {
		p.DeepSeek.DefaultModel = DefaultDeepSeekModel
	}
	if p.DeepSeek.BaseURL == "" {
		p.DeepSeek.BaseURL = DefaultDeepSeekBaseURL
	}
	if p.VertexAI.DefaultModel == "" {
		p.VertexAI.DefaultModel = DefaultVertexAIModel
	}
	if p.VertexAI.Location == "" {
		p.VertexAI.Location = DefaultVertexAILocation
	}
}

func applyLedgerDefaults(l *LedgerConfig) {
	if l.Driver == "" {
		l.Driver = DefaultLedgerDriver
	}
	if l.Path == "" {
		l.Path = DefaultLedgerPath
	}
	if l.BusyTimeout == 0 {
		l.BusyTimeout = DefaultLedgerBusyTimeout
	}
	if l.BufferSize == 0 {
		l.BufferSize = DefaultLedgerBufferSize
	}
	if l.Retention.Schedule == "" {
		l.Retention.Schedule = DefaultRetentionSchedule
	}
}

func applyTelemetryDefaults(t *TelemetryConfig) {
	if t.Logging.Level == "" {
		t.Logging.Level = DefaultLogLevel
	}
	if t.Logging.Format == "" {
		t.Logging.Format = DefaultLogFormat
	}
	if t.Metrics.Path == "" {
		t.Metrics.Path = DefaultMetricsPath
	}
	if t.Metrics.Namespace == "" {
		t.Metrics.Namespace = DefaultMetricsNamespace
	}
	if t.Tracing.Endpoint == "" {
		t.Tracing.Endpoint = DefaultTracingEndpoint
	}
	if t.Tracing.Timeout == 0 {
		t.Tracing.Timeout = DefaultTracingTimeout
	}
	if t.Tracing.Sampler == "" {
		t.Tracing.Sampler = DefaultTracingSampler
	}
	if t.Tracing.SampleRatio == 0 {
		t.Tracing.SampleRatio = DefaultTracingRatio
	}
	if t.Tracing.ServiceName == "" {
		t.Tracing.ServiceName = DefaultServiceName
	}
}
