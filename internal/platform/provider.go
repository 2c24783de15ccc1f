package platform

import (
	"fmt"
	"runtime"
	"sort"
	"sync"
)

// ErrUnsupported is returned when no backend is registered under the
// requested name.
var ErrUnsupported = fmt.Errorf("accessibility backend not supported on %s/%s", runtime.GOOS, runtime.GOARCH)

// Factory opens an Accessibility backend. It is invoked on the goroutine
// that will own the returned value.
type Factory func() (Accessibility, error)

// Registry maps backend names to factories. The command layer builds one,
// registers the backends it was compiled with and hands it to the worker.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a backend. Registering the same name twice is an error.
func (r *Registry) Register(name string, f Factory) error {
	if name == "" || f == nil {
		return fmt.Errorf("register backend: name and factory are required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.factories[name]; ok {
		return fmt.Errorf("backend %q already registered", name)
	}
	r.factories[name] = f
	return nil
}

// Unregister removes a backend. Unknown names are ignored.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.factories, name)
}

// Factory returns the factory registered under name.
func (r *Registry) Factory(name string) (Factory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("backend %q: %w", name, ErrUnsupported)
	}
	return f, nil
}

// Open looks up name and calls its factory on the calling goroutine.
func (r *Registry) Open(name string) (Accessibility, error) {
	f, err := r.Factory(name)
	if err != nil {
		return nil, err
	}
	return f()
}

// Names lists the registered backends in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
