package proxy

import (
	"errors"
	"fmt"
	"net/http"

	"datacrunch-hq/relay/pkg/dispatch"
	"datacrunch-hq/relay/pkg/failure"
)

// HandleError converts an error to a status code and a structured failure.
//
// Example usage:
//
//	if err != nil {
//	    WriteError(w, err)
//	    return
//	}
func HandleError(err error) (int, *failure.Error) {
	var derr *dispatch.Error
	if errors.As(err, &derr) {
		return derr.Status, derr.Failure
	}

	if fe, ok := failure.As(err); ok {
		return dispatch.StatusFor(fe.Category), fe
	}

	return http.StatusInternalServerError, failure.New(failure.ProcessingError,
		"An internal error occurred. Please try again later.",
		failure.WithRetryable(false))
}

// NotFound builds the failure for a missing resource.
func NotFound(format string, args ...any) *dispatch.Error {
	return &dispatch.Error{
		Status:  http.StatusNotFound,
		Failure: failure.New(failure.InvalidInput, fmt.Sprintf(format, args...)),
	}
}

// Unavailable builds the failure for a disabled feature.
func Unavailable(feature string) *dispatch.Error {
	return &dispatch.Error{
		Status: http.StatusServiceUnavailable,
		Failure: failure.New(failure.InvalidConfig,
			fmt.Sprintf("%s is not enabled on this server", feature),
			failure.WithRetryable(false)),
	}
}
