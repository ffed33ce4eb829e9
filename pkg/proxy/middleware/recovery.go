package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime/debug"

	"datacrunch-hq/relay/pkg/failure"
)

// RecoveryMiddleware recovers from panics in HTTP handlers and answers with
// a 500 processing_error. The panic and stack trace are logged; neither is
// exposed to the client. http.ErrAbortHandler is re-panicked so net/http can
// abort the connection as intended.
//
// Example usage:
//
//	handler = RecoveryMiddleware(handler)
func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			slog.ErrorContext(r.Context(), "panic in handler",
				"error", rec,
				"request_id", w.Header().Get(RequestIDHeader),
				"method", r.Method,
				"path", r.URL.Path,
				"stack", string(debug.Stack()),
			)

			fe := failure.New(failure.ProcessingError,
				"An internal error occurred. Please try again later.",
				failure.WithRetryable(false))

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(fe)
		}()

		next.ServeHTTP(w, r)
	})
}
