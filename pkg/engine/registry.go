package engine

import (
	"fmt"
	"path"
	"slices"
	"strings"
	"sync"
)

// Registry stores engines by name and by file extension.
type Registry struct {
	mu         sync.RWMutex
	engines    map[string]Engine
	extensions map[string]string
}

// NewRegistry creates an empty engine registry.
func NewRegistry() *Registry {
	return &Registry{
		engines:    make(map[string]Engine),
		extensions: make(map[string]string),
	}
}

// Register adds an engine by its Name(). Duplicate names or extensions
// return an error.
func (r *Registry) Register(e Engine) error {
	if e == nil {
		return fmt.Errorf("engine: engine is required")
	}
	name := normalizeName(e.Name())
	if name == "" {
		return fmt.Errorf("engine: engine name is required")
	}
	ext := normalizeExtension(e.FileExtension())
	if ext == "" {
		return fmt.Errorf("engine: engine %q has no file extension", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.engines[name]; exists {
		return fmt.Errorf("engine: engine %q already registered", name)
	}
	if owner, exists := r.extensions[ext]; exists {
		return fmt.Errorf("engine: extension %q already claimed by %q", ext, owner)
	}
	r.engines[name] = e
	r.extensions[ext] = name
	return nil
}

// MustRegister panics on registration failure.
func (r *Registry) MustRegister(e Engine) {
	if err := r.Register(e); err != nil {
		panic(err)
	}
}

// Get retrieves an engine by name.
func (r *Registry) Get(name string) (Engine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.engines[normalizeName(name)]
	if !ok {
		return nil, fmt.Errorf("engine: engine %q not found", name)
	}
	return e, nil
}

// ForExtension returns the engine owning ext (".html" or "html").
func (r *Registry) ForExtension(ext string) (Engine, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	name, ok := r.extensions[normalizeExtension(ext)]
	if !ok {
		return nil, false
	}
	return r.engines[name], true
}

// ForPath returns the engine owning the extension of filePath.
func (r *Registry) ForPath(filePath string) (Engine, bool) {
	return r.ForExtension(path.Ext(filePath))
}

// List returns the registered engine names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.engines))
	for name := range r.engines {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Extensions returns the claimed extensions, sorted.
func (r *Registry) Extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exts := make([]string, 0, len(r.extensions))
	for ext := range r.extensions {
		exts = append(exts, ext)
	}
	slices.Sort(exts)
	return exts
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func normalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
