package proxy

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
)

// WriteJSONResponse writes data as JSON with the given status.
func WriteJSONResponse(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON response: %w", err)
	}
	return nil
}

// WriteError writes err as a structured failure body with its mapped status.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, fe := HandleError(err)
	if werr := WriteJSONResponse(w, status, fe); werr != nil {
		slog.ErrorContext(r.Context(), "failed to write error response",
			"status", status,
			"error", werr,
		)
	}
}

// WriteOK writes a 200 JSON response, logging encoding failures.
func WriteOK(w http.ResponseWriter, r *http.Request, data any) {
	if err := WriteJSONResponse(w, http.StatusOK, data); err != nil {
		slog.ErrorContext(r.Context(), "failed to write response", "error", err)
	}
}
