package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys. Relay-specific keys use the "relay." namespace.
const (
	AttrProvider  = "relay.provider"
	AttrModel     = "relay.model"
	AttrRequestID = "relay.request_id"
	AttrTemplate  = "relay.template_id"

	AttrTokensPrompt     = "relay.tokens.prompt"
	AttrTokensCompletion = "relay.tokens.completion"
	AttrTokensTotal      = "relay.tokens.total"
	AttrCost             = "relay.cost_usd"

	AttrErrorType      = "relay.error.type"
	AttrErrorRetryable = "relay.error.retryable"

	AttrHTTPMethod = "http.request.method"
	AttrHTTPRoute  = "http.route"
	AttrHTTPStatus = "http.response.status_code"
)

// SetProviderAttributes records which provider and model served a span.
func SetProviderAttributes(span trace.Span, provider, model string) {
	attrs := []attribute.KeyValue{attribute.String(AttrProvider, provider)}
	if model != "" {
		attrs = append(attrs, attribute.String(AttrModel, model))
	}
	span.SetAttributes(attrs...)
}

// SetUsageAttributes records token counts and the estimated cost.
func SetUsageAttributes(span trace.Span, prompt, completion, total int, costUSD string) {
	span.SetAttributes(
		attribute.Int(AttrTokensPrompt, prompt),
		attribute.Int(AttrTokensCompletion, completion),
		attribute.Int(AttrTokensTotal, total),
		attribute.String(AttrCost, costUSD),
	)
}

// SetFailure marks the span as failed with a failure category.
func SetFailure(span trace.Span, category, message string, retryable bool) {
	span.SetAttributes(
		attribute.String(AttrErrorType, category),
		attribute.Bool(AttrErrorRetryable, retryable),
	)
	span.SetStatus(codes.Error, message)
}

// SetHTTPAttributes records the outcome of a served request. 5xx responses
// mark the span as failed.
func SetHTTPAttributes(span trace.Span, method, route string, status int) {
	attrs := []attribute.KeyValue{
		attribute.String(AttrHTTPMethod, method),
		attribute.Int(AttrHTTPStatus, status),
	}
	if route != "" {
		attrs = append(attrs, attribute.String(AttrHTTPRoute, route))
	}
	span.SetAttributes(attrs...)
	if status >= 500 {
		span.SetStatus(codes.Error, "")
	}
}
