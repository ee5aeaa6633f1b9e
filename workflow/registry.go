package workflow

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps the fixed enumeration of agent keys to workflow instances.
// Registration happens at startup; lookups are concurrent-safe.
type Registry struct {
	mu        sync.RWMutex
	workflows map[string]*Workflow
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{workflows: map[string]*Workflow{}}
}

// Register adds a workflow under its key, replacing any previous entry.
func (r *Registry) Register(w *Workflow) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.workflows[w.Key()] = w
}

// Get returns the workflow for key.
func (r *Registry) Get(key string) (*Workflow, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.workflows[key]
	return w, ok
}

// MustGet returns the workflow for key or an error naming it.
func (r *Registry) MustGet(key string) (*Workflow, error) {
	if w, ok := r.Get(key); ok {
		return w, nil
	}
	return nil, fmt.Errorf("workflow %q not registered", key)
}

// Keys returns the registered agent keys in sorted order, giving the
// classifier a deterministic label enumeration.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.workflows))
	for k := range r.workflows {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Descriptions returns key → description for prompt assembly.
func (r *Registry) Descriptions() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]string, len(r.workflows))
	for k, w := range r.workflows {
		out[k] = w.Description()
	}
	return out
}
