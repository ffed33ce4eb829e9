package providerfactory

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"datacrunch-hq/relay/pkg/providers"
)

// Constructor builds a fresh adapter for one request.
type Constructor func(ctx context.Context) (providers.Adapter, error)

// Registry maps provider names to adapter constructors.
//
// Adapters are constructed per request so that credential changes (for
// example a rotated Vertex AI token file) take effect without a restart.
//
// Registry is thread-safe and can be used concurrently.
type Registry struct {
	mu           sync.RWMutex
	constructors map[string]Constructor
	order        []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{constructors: make(map[string]Constructor)}
}

// Register adds a constructor under name. Registering an existing name
// replaces its constructor but keeps its position in Names.
func (r *Registry) Register(name string, c Constructor) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.constructors[name]; ok {
		slog.Warn("replacing existing provider constructor", "name", name)
	} else {
		r.order = append(r.order, name)
	}
	r.constructors[name] = c
}

// Lookup returns the constructor registered under name.
func (r *Registry) Lookup(name string) (Constructor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.constructors[name]
	return c, ok
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.Lookup(name)
	return ok
}

// Names returns registered provider names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Clone(r.order)
}

// New constructs an adapter for name.
func (r *Registry) New(ctx context.Context, name string) (providers.Adapter, error) {
	c, ok := r.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("provider %q not registered", name)
	}
	return c(ctx)
}
