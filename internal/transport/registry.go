package transport

import "github.com/commwatch/commwatch/internal/model"

// Registry maps a transport type to its Adapter, per spec §4.5's
// "look up the adapter by device type" pipeline step.
type Registry struct {
	adapters map[model.TransportType]Adapter
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[model.TransportType]Adapter)}
}

// Register binds transportType to adapter.
func (r *Registry) Register(transportType model.TransportType, adapter Adapter) {
	r.adapters[transportType] = adapter
}

// Get returns the adapter bound to transportType.
func (r *Registry) Get(transportType model.TransportType) (Adapter, bool) {
	a, ok := r.adapters[transportType]
	return a, ok
}
