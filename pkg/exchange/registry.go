package exchange

import (
	"fmt"
	"slices"
	"sync"

	"tradegate/pkg/core"
)

// Factory builds an adapter from a validated config.
type Factory func(config *core.Config, opts ...ClientOption) (Exchange, error)

// Registry maps venue identifiers to adapter factories.
// Venue packages register themselves from init, so importing a venue is enough to make it available.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register adds a factory under name, replacing any previous one.
func (r *Registry) Register(name string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// New builds the adapter named by config.Exchange.
func (r *Registry) New(config *core.Config, opts ...ClientOption) (Exchange, error) {
	if config == nil {
		return nil, fmt.Errorf("%w: nil config", core.ErrInvalidParams)
	}

	r.mu.RLock()
	factory, ok := r.factories[config.Exchange]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("exchange %q not registered", config.Exchange)
	}
	return factory(config, opts...)
}

// Names returns the registered venue identifiers in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (r *Registry) Exists(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[name]
	return ok
}

var defaultRegistry = NewRegistry()

// Register adds a factory to the default registry.
func Register(name string, factory Factory) {
	defaultRegistry.Register(name, factory)
}

// New builds an adapter from the default registry.
func New(config *core.Config, opts ...ClientOption) (Exchange, error) {
	return defaultRegistry.New(config, opts...)
}

// Names lists the venues in the default registry.
func Names() []string {
	return defaultRegistry.Names()
}
