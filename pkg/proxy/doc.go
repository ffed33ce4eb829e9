// Package proxy implements the wire side of the relay's HTTP API: decoding
// process requests, resolving prompt templates and writing JSON responses
// and structured failures.
//
// Handlers live in proxy/handlers and cross-cutting concerns in
// proxy/middleware. The server package assembles them into the route table:
//
//	POST /api/v1/ai/process
//	GET  /api/v1/ai/providers
//	GET  /api/v1/ai/status
//	POST /api/v1/ai/unblock/{provider}
//	GET  /api/v1/ai/prompt-templates
//	GET  /api/v1/ai/models
//	GET  /api/v1/ai/models/{id}
//	GET  /api/v1/ai/usage
//	GET  /
//	GET  /health
//
// # Error Bodies
//
// Every failure is answered with the structured failure encoding:
//
//	{
//	  "error_type": "quota_exceeded",
//	  "message": "Provider gemini is currently blocked due to quota exceeded. Please try again later.",
//	  "details": {"blocked_providers": {"gemini": "2024-01-01T13:00:00Z"}},
//	  "provider": "gemini",
//	  "timestamp": "2024-01-01T12:00:00.123Z",
//	  "is_retryable": false
//	}
//
// HandleError picks the status: dispatch errors carry their own, bare
// failures are mapped by category, and anything else becomes a 500
// processing_error whose message does not expose internals.
package proxy
