// Package middleware provides the HTTP middleware shared by every relay
// route.
//
// # Middleware Chain
//
// The server assembles the chain outermost first:
//
//	handler = Recovery(Logging(RequestID(Tracing(CORS(Timeout(mux))))))
//
//   - RecoveryMiddleware turns a handler panic into a 500 processing_error body.
//   - LoggingMiddleware logs each request and reports it to an HTTPRecorder.
//   - RequestIDMiddleware assigns the X-Request-ID and stores it with
//     logging.WithRequestID so the dispatcher and ledger see the same id.
//   - TracingMiddleware opens a server span named after the matched route
//     and continues an incoming traceparent.
//   - CORSMiddleware answers preflight requests from the configured origins.
//   - TimeoutMiddleware puts a deadline on the request context.
//
// Handlers registered on the mux are wrapped with Route so the logging
// and tracing middleware can label metrics and spans with the matched
// pattern instead of the raw path.
package middleware
