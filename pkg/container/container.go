// Package container is a small named-module registry. Each Container is
// independent; there is no package-level instance.
package container

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownModule is returned by Resolve for names that were never bound.
var ErrUnknownModule = errors.New("container: unknown module")

// Factory produces a module instance.
type Factory func() any

type binding struct {
	factory   Factory
	singleton bool
	instance  any
	resolved  bool
}

// Container maps module names to factories or fixed instances.
type Container struct {
	mu       sync.Mutex
	bindings map[string]*binding
}

func New() *Container {
	return &Container{bindings: map[string]*binding{}}
}

// Bind registers a factory invoked on every Resolve.
func (c *Container) Bind(name string, factory Factory) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bindings[name] = &binding{factory: factory}
}

// Singleton registers a factory invoked once, on first Resolve.
func (c *Container) Singleton(name string, factory Factory) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bindings[name] = &binding{factory: factory, singleton: true}
}

// Instance registers an already built module.
func (c *Container) Instance(name string, v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bindings[name] = &binding{singleton: true, instance: v, resolved: true}
}

// Resolve returns the module bound to name.
func (c *Container) Resolve(name string) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	b, ok := c.bindings[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownModule, name)
	}
	if b.resolved {
		return b.instance, nil
	}

	v := b.factory()
	if b.singleton {
		b.instance, b.resolved = v, true
	}
	return v, nil
}

// Has reports whether name is bound.
func (c *Container) Has(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.bindings[name]
	return ok
}

// Names lists every bound name, sorted.
func (c *Container) Names() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]string, 0, len(c.bindings))
	for name := range c.bindings {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Resolve is a typed wrapper around Container.Resolve.
func Resolve[T any](c *Container, name string) (T, error) {
	var zero T
	v, err := c.Resolve(name)
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("container: module %q is %T, not %T", name, v, zero)
	}
	return t, nil
}
