package middleware

import (
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"datacrunch-hq/relay/pkg/telemetry/logging"
	"datacrunch-hq/relay/pkg/telemetry/tracing"
)

// TraceIDHeader carries the trace ID of a traced request back to the caller.
const TraceIDHeader = "X-Trace-ID"

// TracingMiddleware opens a server span per request, continuing the trace
// of an incoming traceparent header. The span is renamed to the matched
// route once the mux has run, so it must sit inside LoggingMiddleware.
func TracingMiddleware(tracer *tracing.Tracer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !tracer.Enabled() {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := tracing.Extract(r.Context(), r.Header)
			ctx, span := tracer.Start(ctx, r.Method, trace.WithSpanKind(trace.SpanKindServer))
			defer span.End()

			if id := logging.GetRequestID(ctx); id != "" {
				span.SetAttributes(attribute.String(tracing.AttrRequestID, id))
			}
			if id := tracing.TraceID(ctx); id != "" {
				w.Header().Set(TraceIDHeader, id)
			}

			sw := newStatusWriter(w)
			next.ServeHTTP(sw, r.WithContext(ctx))

			route := routeFrom(ctx)
			if route != "" {
				span.SetName(route)
			}
			tracing.SetHTTPAttributes(span, r.Method, route, sw.Status())
		})
	}
}
