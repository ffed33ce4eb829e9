// Package tracing provides OpenTelemetry tracing for the relay.
//
// Spans are exported over OTLP gRPC. Three sampling strategies are
// supported, always wrapped in ParentBased so a sampled incoming traceparent
// keeps its trace sampled:
//   - always: sample every trace
//   - never: sample nothing
//   - ratio: sample a fraction of root traces by trace ID
//
// # Spans
//
// The HTTP middleware opens a server span per request named after the
// matched route, continuing any W3C traceparent sent by the caller. The
// dispatch orchestrator opens a "dispatch" child span carrying the provider,
// model, token usage and, on failure, the failure category. Provider
// adapters that speak plain HTTP inject traceparent into their outgoing
// requests.
//
// # Usage
//
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing, tracing.WithVersion(version))
//	if err != nil {
//	    return err
//	}
//	defer tracer.Shutdown(context.Background())
//
//	ctx, span := tracer.Start(ctx, "dispatch")
//	defer span.End()
//	tracing.SetProviderAttributes(span, "openai", "gpt-4")
//
// A disabled or nil *Tracer returns non-recording spans.
package tracing
