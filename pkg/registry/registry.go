package registry

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
)

// ErrNotFound is returned by Lookup when no template is registered under the
// requested key.
var ErrNotFound = errors.New("registry: partial not found")

// Registry maps pattern keys to raw template text for a single build pass.
// Writers are serialized, readers run concurrently. Callers create one
// Registry per build and pass it explicitly; there is no process-wide
// instance.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]string
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		entries: make(map[string]string),
	}
}

// Register stores template under key, replacing any previous entry.
func (r *Registry) Register(key, template string) error {
	if key = normalize(key); key == "" {
		return fmt.Errorf("registry: partial key is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[key] = template
	return nil
}

// MustRegister panics on registration failure. Handy for test fixtures.
func (r *Registry) MustRegister(key, template string) {
	if err := r.Register(key, template); err != nil {
		panic(err)
	}
}

// Lookup returns the template registered under key or an error wrapping
// ErrNotFound.
func (r *Registry) Lookup(key string) (string, error) {
	if r == nil {
		return "", fmt.Errorf("%w: %q", ErrNotFound, key)
	}
	normalized := normalize(key)

	r.mu.RLock()
	defer r.mu.RUnlock()

	template, ok := r.entries[normalized]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrNotFound, normalized)
	}
	return template, nil
}

// Has reports whether key is registered.
func (r *Registry) Has(key string) bool {
	if r == nil {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.entries[normalize(key)]
	return ok
}

// Keys returns the registered keys in sorted order.
func (r *Registry) Keys() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.entries))
	for key := range r.entries {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}

// Len returns the number of registered entries.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Reset drops every entry. Used at the start of a full rebuild.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = make(map[string]string)
}

// Snapshot returns an independent copy of the registry. Later registrations
// on either side are not visible to the other.
func (r *Registry) Snapshot() *Registry {
	cloned := New()
	if r == nil {
		return cloned
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	for key, template := range r.entries {
		cloned.entries[key] = template
	}
	return cloned
}

func normalize(key string) string {
	return strings.TrimSpace(key)
}
