package handlers

import (
	"net/http"

	"datacrunch-hq/relay/pkg/dispatch"
	"datacrunch-hq/relay/pkg/proxy"
)

// ProcessHandler serves POST /api/v1/ai/process.
type ProcessHandler struct {
	Dispatcher Dispatcher

	// Templates resolves template_id; nil rejects requests that set one.
	Templates proxy.TemplateResolver

	// MaxBodyBytes limits the request body; zero uses proxy.MaxRequestBodySize.
	MaxBodyBytes int64
}

// NewProcessHandler creates a process handler.
func NewProcessHandler(d Dispatcher, templates proxy.TemplateResolver, maxBodyBytes int64) *ProcessHandler {
	return &ProcessHandler{Dispatcher: d, Templates: templates, MaxBodyBytes: maxBodyBytes}
}

// ServeHTTP decodes the request, dispatches it and writes either the
// provider response or the failure with its mapped status.
func (h *ProcessHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	payload, err := proxy.DecodeProcessRequest(r, h.MaxBodyBytes, h.Templates)
	if err != nil {
		proxy.WriteError(w, r, err)
		return
	}

	req, err := dispatch.NewRequest(payload)
	if err != nil {
		proxy.WriteError(w, r, err)
		return
	}

	resp, err := h.Dispatcher.Process(r.Context(), req)
	if err != nil {
		proxy.WriteError(w, r, err)
		return
	}

	proxy.WriteOK(w, r, resp)
}
