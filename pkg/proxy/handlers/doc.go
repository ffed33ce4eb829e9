// Package handlers provides the relay's HTTP endpoint handlers.
//
// Every handler is a small struct implementing http.Handler that depends on
// an interface rather than a concrete component:
//
//   - ProcessHandler: POST /api/v1/ai/process, via Dispatcher
//   - ProvidersHandler, StatusHandler, UnblockHandler: provider availability
//   - PromptTemplatesHandler: template listing, via TemplateCatalogue
//   - ModelsHandler, ModelHandler: the model catalogue
//   - UsageHandler: ledger totals, 503 when the ledger is disabled
//   - RootHandler, HealthHandler: service identity and liveness
//
// Failures are written with proxy.WriteError, so every error body has the
// same shape:
//
//	{
//	  "error_type": "quota_exceeded",
//	  "message": "Provider gemini is currently blocked due to quota exceeded. Please try again later.",
//	  "details": {"blocked_providers": {"gemini": "2026-01-02T15:04:05Z"}},
//	  "provider": "gemini",
//	  "timestamp": "2026-01-02T14:04:05.123Z",
//	  "is_retryable": false
//	}
package handlers
