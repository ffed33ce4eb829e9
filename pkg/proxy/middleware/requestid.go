package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"datacrunch-hq/relay/pkg/telemetry/logging"
)

const (
	// RequestIDHeader is the HTTP header for request ID.
	RequestIDHeader = "X-Request-ID"

	// maxRequestIDLength bounds client-supplied ids.
	maxRequestIDLength = 128
)

// RequestIDMiddleware assigns every request an id. A client-supplied
// X-Request-ID is kept when it is printable and short enough; otherwise a
// UUIDv4 is generated.
//
// The id is stored with logging.WithRequestID, so every log record written
// with the request context carries it, and echoed in the X-Request-ID
// response header.
//
// Example usage:
//
//	handler = RequestIDMiddleware(handler)
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if !validRequestID(requestID) {
			requestID = uuid.NewString()
		}

		ctx := logging.WithRequestID(r.Context(), requestID)
		w.Header().Set(RequestIDHeader, requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLength {
		return false
	}
	return !strings.ContainsFunc(id, func(r rune) bool {
		return r < 0x21 || r > 0x7e
	})
}
