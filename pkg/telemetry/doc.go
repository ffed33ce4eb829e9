// Package telemetry groups the relay's observability packages.
//
// # Components
//
//   - logging: slog setup, request-scoped attributes and credential redaction
//   - metrics: Prometheus collectors fed by dispatch outcomes and HTTP traffic
//   - tracing: OpenTelemetry spans exported over OTLP/gRPC
//   - health: readiness checks behind GET /ready
//
// Each component is configured from its section of config.TelemetryConfig
// and is wired together by the run command.
package telemetry
