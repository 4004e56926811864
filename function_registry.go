package permrun

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Function represents a helper callable from predicate expressions.
type Function func(args ...any) (any, error)

// FunctionRegistry stores custom predicate helpers keyed by name. Helpers
// are handy for geometry math that is awkward inline, like power-of-two
// checks against a resolved block size.
type FunctionRegistry struct {
	mu        sync.RWMutex
	functions map[string]Function
}

// NewFunctionRegistry constructs an empty registry.
func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{
		functions: make(map[string]Function),
	}
}

// Register stores fn under name, guarding against duplicates.
func (r *FunctionRegistry) Register(name string, fn Function) error {
	if fn == nil {
		return fmt.Errorf("permrun: function %q is nil", name)
	}
	if name == "" {
		return fmt.Errorf("permrun: function name must not be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.functions == nil {
		r.functions = make(map[string]Function)
	}
	key := strings.ToLower(name)
	if _, exists := r.functions[key]; exists {
		return fmt.Errorf("permrun: function %q already registered", name)
	}
	r.functions[key] = fn
	return nil
}

// Call invokes a registered function by name.
func (r *FunctionRegistry) Call(name string, args ...any) (any, error) {
	if r == nil {
		return nil, fmt.Errorf("permrun: function registry not configured")
	}
	r.mu.RLock()
	fn, ok := r.functions[strings.ToLower(name)]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("permrun: function %q not registered", name)
	}
	return fn(args...)
}

// Names lists registered function names in sorted order.
func (r *FunctionRegistry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	names := make([]string, 0, len(r.functions))
	for name := range r.functions {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}

// Clone returns an independent copy of the registry.
func (r *FunctionRegistry) Clone() *FunctionRegistry {
	if r == nil {
		return nil
	}
	clone := NewFunctionRegistry()
	r.mu.RLock()
	for name, fn := range r.functions {
		clone.functions[name] = fn
	}
	r.mu.RUnlock()
	return clone
}
