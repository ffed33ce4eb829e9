package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"datacrunch-hq/relay/pkg/telemetry/logging"
)

// HTTPRecorder receives one observation per served request.
// *metrics.Collector implements it.
type HTTPRecorder interface {
	RecordHTTPRequest(method, route string, status int, duration time.Duration)
}

// LoggingMiddleware logs one line per request and reports it to recorder
// when one is given. 5xx responses log at error, 4xx at warn.
func LoggingMiddleware(recorder HTTPRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ctx := context.WithValue(r.Context(), StartTimeKey, start)
			ctx, route := withRouteHolder(ctx)

			sw := newStatusWriter(w)
			next.ServeHTTP(sw, r.WithContext(ctx))

			elapsed := time.Since(start)
			status := sw.Status()
			if recorder != nil {
				recorder.RecordHTTPRequest(r.Method, route.pattern, status, elapsed)
			}

			// The request id lives in the inner context, so it is read
			// back from the response header.
			slog.Log(ctx, levelFor(status), "request completed",
				"method", r.Method,
				"path", r.URL.Path,
				"route", route.pattern,
				"status", status,
				"bytes", sw.bytes,
				"latency_ms", elapsed.Milliseconds(),
				"request_id", sw.Header().Get(RequestIDHeader),
				"remote_addr", r.RemoteAddr,
			)
		})
	}
}

func levelFor(status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// Route records the matched mux pattern for LoggingMiddleware. Wrap each
// handler registered on the mux with it.
func Route(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h, ok := r.Context().Value(routeKey).(*routeHolder); ok {
			h.pattern = r.Pattern
		}
		next.ServeHTTP(w, r)
	})
}

// GetStartTime returns the time LoggingMiddleware saw the request, or the
// zero time.
func GetStartTime(ctx context.Context) time.Time {
	t, _ := ctx.Value(StartTimeKey).(time.Time)
	return t
}

// GetRequestID returns the request id stored by RequestIDMiddleware.
func GetRequestID(ctx context.Context) string {
	return logging.GetRequestID(ctx)
}
