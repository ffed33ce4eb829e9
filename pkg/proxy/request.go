package proxy

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"datacrunch-hq/relay/pkg/dispatch"
	"datacrunch-hq/relay/pkg/failure"
	"datacrunch-hq/relay/pkg/prompts"
)

// MaxRequestBodySize is the default body limit (10MB).
const MaxRequestBodySize = 10 * 1024 * 1024

// ProcessRequest is the body of POST /api/v1/ai/process. TemplateID selects
// a stored prompt; InstructionPrompt then becomes its extra instructions.
type ProcessRequest struct {
	dispatch.Payload
	TemplateID string `json:"template_id,omitempty"`
}

// TemplateResolver resolves prompt templates. *prompts.Store implements it.
type TemplateResolver interface {
	Has(id string) bool
	Get(id, extra string) string
}

var _ TemplateResolver = (*prompts.Store)(nil)

// DecodeProcessRequest reads and decodes a process request. maxBytes <= 0
// uses MaxRequestBodySize. A nil resolver rejects template_id.
//
// Malformed bodies, oversize bodies and unknown templates are reported as
// invalid_input failures.
func DecodeProcessRequest(r *http.Request, maxBytes int64, resolver TemplateResolver) (dispatch.Payload, error) {
	if maxBytes <= 0 {
		maxBytes = MaxRequestBodySize
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBytes+1))
	if err != nil {
		return dispatch.Payload{}, failure.InvalidInputError(
			fmt.Sprintf("Failed to read request body: %v", err), failure.WithCause(err))
	}
	if int64(len(body)) > maxBytes {
		return dispatch.Payload{}, failure.InvalidInputError(
			fmt.Sprintf("Request body exceeds maximum size of %d bytes", maxBytes),
			failure.WithDetail("max_bytes", maxBytes))
	}

	var req ProcessRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return dispatch.Payload{}, failure.InvalidInputError(
			fmt.Sprintf("Invalid JSON: %v", err), failure.WithCause(err))
	}

	if id := strings.TrimSpace(req.TemplateID); id != "" {
		if resolver == nil || !resolver.Has(id) {
			return dispatch.Payload{}, failure.InvalidInputError(
				fmt.Sprintf("Unknown prompt template: %s", id),
				failure.WithDetail("template_id", id))
		}
		req.InstructionPrompt = resolver.Get(id, req.InstructionPrompt)
	}

	return req.Payload, nil
}

// ErrMissingPathValue is returned by PathValue for an empty segment.
var ErrMissingPathValue = errors.New("missing path value")

// PathValue returns a trimmed, non-empty wildcard segment of the route.
func PathValue(r *http.Request, name string) (string, error) {
	v := strings.TrimSpace(r.PathValue(name))
	if v == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingPathValue, name)
	}
	return v, nil
}
