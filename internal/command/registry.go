package command

import (
	"sync"
)

// Registry keeps commands in registration order. Names are not deduplicated;
// every matching command is tried.
type Registry struct {
	mu    sync.RWMutex
	specs []*Spec
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends spec unless it has already been registered somewhere.
func (r *Registry) Register(spec *Spec) bool {
	if spec == nil || !spec.hasHandler() || spec.Name() == "" {
		return false
	}
	if !spec.markRegistered() {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.specs = append(r.specs, spec)
	return true
}

// Define constructs a command and registers it.
func (r *Registry) Define(name string, handler Handler, opts ...Option) *Spec {
	spec := NewSpec(name, handler, opts...)
	r.Register(spec)
	return spec
}

// Commands returns a snapshot of the registered commands.
func (r *Registry) Commands() []*Spec {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*Spec(nil), r.specs...)
}

// Len returns the number of registered commands.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.specs)
}
