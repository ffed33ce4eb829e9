package handlers

import (
	"fmt"
	"net/http"

	"datacrunch-hq/relay/pkg/dispatch"
	"datacrunch-hq/relay/pkg/failure"
	"datacrunch-hq/relay/pkg/proxy"
)

// ProvidersResponse is the body of GET /api/v1/ai/providers.
type ProvidersResponse struct {
	Providers []string `json:"providers"`
}

// UnblockResponse is the body of POST /api/v1/ai/unblock/{provider}.
type UnblockResponse struct {
	Message  string `json:"message"`
	Provider string `json:"provider"`
}

// TemplatesResponse is the body of GET /api/v1/ai/prompt-templates.
type TemplatesResponse struct {
	Templates map[string]string `json:"templates"`
}

// ProvidersHandler lists the supported providers.
type ProvidersHandler struct {
	Dispatcher Dispatcher
}

func (h *ProvidersHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	proxy.WriteOK(w, r, ProvidersResponse{Providers: h.Dispatcher.SupportedProviders()})
}

// StatusHandler reports blocked and available providers.
type StatusHandler struct {
	Dispatcher Dispatcher
}

func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	proxy.WriteOK(w, r, h.Dispatcher.ProviderStatus())
}

// UnblockHandler lifts a provider's quota block. Unblocking a provider that
// is not blocked succeeds; an unknown provider is rejected.
type UnblockHandler struct {
	Dispatcher Dispatcher
}

func (h *UnblockHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	provider, err := proxy.PathValue(r, "provider")
	if err != nil {
		proxy.WriteError(w, r, failure.InvalidInputError("Provider name is required"))
		return
	}

	if !h.Dispatcher.Unblock(provider) {
		proxy.WriteError(w, r, &dispatch.Error{
			Status: http.StatusBadRequest,
			Failure: failure.New(failure.InvalidProvider,
				fmt.Sprintf("Unsupported AI provider: %s", provider),
				failure.WithProvider(provider),
				failure.WithDetail("supported_providers", h.Dispatcher.SupportedProviders())),
		})
		return
	}

	proxy.WriteOK(w, r, UnblockResponse{
		Message:  fmt.Sprintf("Provider %s has been unblocked", provider),
		Provider: provider,
	})
}

// PromptTemplatesHandler lists template ids with their descriptions.
type PromptTemplatesHandler struct {
	Templates TemplateCatalogue
}

func (h *PromptTemplatesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	templates := map[string]string{}
	if h.Templates != nil {
		templates = h.Templates.List()
	}
	proxy.WriteOK(w, r, TemplatesResponse{Templates: templates})
}
