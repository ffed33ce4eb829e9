package handlers

import (
	"net/http"

	"datacrunch-hq/relay/pkg/proxy"
)

// RootResponse is the body of GET /.
type RootResponse struct {
	Message string `json:"message"`
	Version string `json:"version"`
	Status  string `json:"status"`
}

// RootHandler identifies the service.
type RootHandler struct {
	Name    string
	Version string
}

func (h *RootHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	proxy.WriteOK(w, r, RootResponse{Message: h.Name, Version: h.Version, Status: "operational"})
}

// HealthHandler answers liveness probes. It does not contact providers.
type HealthHandler struct{}

func (HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	proxy.WriteOK(w, r, map[string]string{"status": "healthy"})
}
