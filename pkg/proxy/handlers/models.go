package handlers

import (
	"net/http"
	"strings"

	"datacrunch-hq/relay/pkg/catalogue"
	"datacrunch-hq/relay/pkg/failure"
	"datacrunch-hq/relay/pkg/proxy"
)

// ModelsResponse is the body of GET /api/v1/ai/models.
type ModelsResponse struct {
	Models []catalogue.ModelSpec `json:"models"`
	Count  int                   `json:"count"`
}

// ModelsHandler lists the catalogue, optionally filtered with ?provider=.
type ModelsHandler struct {
	Catalogue ModelCatalogue
}

func (h *ModelsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var models []catalogue.ModelSpec
	if p := strings.TrimSpace(r.URL.Query().Get("provider")); p != "" {
		models = h.Catalogue.ByProvider(p)
	} else {
		models = h.Catalogue.All()
	}
	if models == nil {
		models = []catalogue.ModelSpec{}
	}
	proxy.WriteOK(w, r, ModelsResponse{Models: models, Count: len(models)})
}

// ModelHandler returns one model. With ?provider= the id is resolved the way
// the dispatcher resolves it for that provider.
type ModelHandler struct {
	Catalogue ModelCatalogue
}

func (h *ModelHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := proxy.PathValue(r, "id")
	if err != nil {
		proxy.WriteError(w, r, failure.InvalidInputError("Model id is required"))
		return
	}

	var (
		spec catalogue.ModelSpec
		ok   bool
	)
	if p := strings.TrimSpace(r.URL.Query().Get("provider")); p != "" {
		spec, ok = h.Catalogue.LookupFor(p, id)
	} else {
		spec, ok = h.Catalogue.Lookup(id)
	}
	if !ok {
		proxy.WriteError(w, r, proxy.NotFound("Unknown model: %s", id))
		return
	}

	proxy.WriteOK(w, r, spec)
}
