package backend

import (
	"fmt"
	"strings"
	"sync"
)

// Registry holds the known backend identifiers: modules, their functions,
// and the config keys each module accepts. Hosts populate it at startup;
// from the decoder's perspective it is read-only, and decoding never grows
// it. Resolving a reference against anything outside the registry is a
// decode failure, which is what keeps untrusted input from manufacturing
// new symbolic identifiers.
type Registry struct {
	mu      sync.RWMutex
	modules map[string]*moduleEntry
}

type moduleEntry struct {
	functions  map[string]Backend
	configKeys map[string]struct{}
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{modules: make(map[string]*moduleEntry)}
}

// Register installs a backend function under module/function and records the
// config keys the module accepts. Registering the same pair twice replaces
// the implementation; config keys accumulate.
func (r *Registry) Register(module, function string, impl Backend, configKeys ...string) error {
	if r == nil {
		return fmt.Errorf("backend: registry is nil")
	}
	module = strings.TrimSpace(module)
	function = strings.TrimSpace(function)
	if module == "" || function == "" {
		return fmt.Errorf("backend: module and function identifiers are required")
	}
	if impl == nil {
		return fmt.Errorf("backend: implementation for %s.%s is nil", module, function)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.modules[module]
	if !ok {
		entry = &moduleEntry{
			functions:  make(map[string]Backend),
			configKeys: make(map[string]struct{}),
		}
		r.modules[module] = entry
	}
	entry.functions[function] = impl
	for _, key := range configKeys {
		key = strings.TrimSpace(key)
		if key != "" {
			entry.configKeys[key] = struct{}{}
		}
	}
	return nil
}

// MustRegister is Register but panics on error; intended for startup wiring.
func (r *Registry) MustRegister(module, function string, impl Backend, configKeys ...string) {
	if err := r.Register(module, function, impl, configKeys...); err != nil {
		panic(err)
	}
}

// KnownModule reports whether the module identifier is registered.
func (r *Registry) KnownModule(module string) bool {
	if r == nil {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.modules[module]
	return ok
}

// KnownFunction reports whether module.function is registered.
func (r *Registry) KnownFunction(module, function string) bool {
	if r == nil {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.modules[module]
	if !ok {
		return false
	}
	_, ok = entry.functions[function]
	return ok
}

// KnownConfigKey reports whether the module accepts the config key.
func (r *Registry) KnownConfigKey(module, key string) bool {
	if r == nil {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.modules[module]
	if !ok {
		return false
	}
	_, ok = entry.configKeys[key]
	return ok
}

// Lookup returns the backend registered under module.function.
func (r *Registry) Lookup(module, function string) (Backend, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.modules[module]
	if !ok {
		return nil, false
	}
	impl, ok := entry.functions[function]
	return impl, ok
}

var defaultRegistry = func() *Registry {
	r := NewRegistry()
	r.MustRegister("memory", "submit", NewMemory(), "collection")
	r.MustRegister("webhook", "submit", NewWebhook(nil), "url", "method", "header")
	return r
}()

// Default returns the process-wide registry carrying the built-in backends.
// Hosts extend it at startup, before any decoding happens.
func Default() *Registry { return defaultRegistry }
