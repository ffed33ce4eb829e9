package handlers

import (
	"context"
	"time"

	"datacrunch-hq/relay/pkg/catalogue"
	"datacrunch-hq/relay/pkg/dispatch"
	"datacrunch-hq/relay/pkg/ledger"
	"datacrunch-hq/relay/pkg/providers"
	"datacrunch-hq/relay/pkg/proxy"
)

// Dispatcher runs requests and reports provider availability.
// *dispatch.Orchestrator implements it.
type Dispatcher interface {
	Process(ctx context.Context, req *dispatch.Request) (*providers.Response, error)
	SupportedProviders() []string
	ProviderStatus() dispatch.Status
	Unblock(provider string) bool
}

// ModelCatalogue answers model listings. *catalogue.Catalogue implements it.
type ModelCatalogue interface {
	All() []catalogue.ModelSpec
	ByProvider(provider string) []catalogue.ModelSpec
	Lookup(id string) (catalogue.ModelSpec, bool)
	LookupFor(provider, id string) (catalogue.ModelSpec, bool)
}

// TemplateCatalogue resolves and lists prompt templates.
// *prompts.Store implements it.
type TemplateCatalogue interface {
	proxy.TemplateResolver
	List() map[string]string
}

// UsageReporter aggregates recorded usage. ledger.Storage implements it.
type UsageReporter interface {
	Summary(ctx context.Context, since time.Time) ([]ledger.ProviderUsage, error)
}

var (
	_ Dispatcher     = (*dispatch.Orchestrator)(nil)
	_ ModelCatalogue = (*catalogue.Catalogue)(nil)
	_ UsageReporter  = (ledger.Storage)(nil)
)
