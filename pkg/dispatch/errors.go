package dispatch

import (
	"encoding/json"
	"net/http"

	"datacrunch-hq/relay/pkg/failure"
)

// Error is a failed dispatch: the structured failure plus the HTTP status
// the transport should answer with.
type Error struct {
	Status  int
	Failure *failure.Error
}

func (e *Error) Error() string {
	return e.Failure.Error()
}

func (e *Error) Unwrap() error {
	return e.Failure
}

// MarshalJSON encodes the wrapped failure.
func (e *Error) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Failure)
}

// StatusFor maps a failure category to an HTTP status.
func StatusFor(c failure.Category) int {
	switch c {
	case failure.InvalidInput, failure.InvalidConfig, failure.InvalidProvider:
		return http.StatusBadRequest
	case failure.MissingAPIKey:
		return http.StatusUnauthorized
	case failure.QuotaExceeded, failure.RateLimitExceeded:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// constructionStatus maps failures raised while building an adapter.
// Configuration problems are reported as client errors there.
func constructionStatus(c failure.Category) int {
	switch c {
	case failure.InvalidInput, failure.MissingAPIKey:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
