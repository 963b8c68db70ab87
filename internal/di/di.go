// Package di provides a small lazy service container with typed tokens.
package di

import (
	"fmt"
	"sync"
)

// ServiceRegistry resolves services by key.
type ServiceRegistry interface {
	Get(key string) any
}

// Container is a ServiceRegistry that also accepts registrations.
type Container interface {
	ServiceRegistry
	Register(key string, value any)
	RegisterFactory(key string, factory func(ServiceRegistry) any)
}

type container struct {
	mu        sync.Mutex
	instances map[string]any
	factories map[string]func(ServiceRegistry) any
	building  map[string]bool
}

// NewContainer creates an empty Container. Factories run once, on first Get.
func NewContainer() Container {
	return &container{
		instances: make(map[string]any),
		factories: make(map[string]func(ServiceRegistry) any),
		building:  make(map[string]bool),
	}
}

func (c *container) Register(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.instances[key] = value
}

func (c *container) RegisterFactory(key string, factory func(ServiceRegistry) any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.instances, key)
	c.factories[key] = factory
}

// Get returns the service for key, building it if needed. It panics on an
// unknown key or a dependency cycle, both of which are wiring bugs.
func (c *container) Get(key string) any {
	c.mu.Lock()
	if v, ok := c.instances[key]; ok {
		c.mu.Unlock()
		return v
	}
	factory, ok := c.factories[key]
	if !ok {
		c.mu.Unlock()
		panic(fmt.Sprintf("di: service %q is not registered", key))
	}
	if c.building[key] {
		c.mu.Unlock()
		panic(fmt.Sprintf("di: dependency cycle while building %q", key))
	}
	c.building[key] = true
	c.mu.Unlock()

	// Factories may resolve other services, so build without holding the lock.
	v := factory(c)

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.building, key)
	if existing, ok := c.instances[key]; ok {
		return existing
	}
	c.instances[key] = v
	return v
}

// Token is a typed service key.
type Token[T any] struct {
	key string
}

// NewToken creates a token for key.
func NewToken[T any](key string) Token[T] {
	return Token[T]{key: key}
}

// Key returns the underlying registry key.
func (t Token[T]) Key() string {
	return t.key
}

// RegisterToken registers a typed factory for t.
func RegisterToken[T any](c Container, t Token[T], factory func(ServiceRegistry) T) {
	c.RegisterFactory(t.key, func(sr ServiceRegistry) any {
		return factory(sr)
	})
}

// RegisterValue registers an already built v for t.
func RegisterValue[T any](c Container, t Token[T], v T) {
	c.Register(t.key, v)
}

// GetToken resolves t from sr.
func GetToken[T any](sr ServiceRegistry, t Token[T]) T {
	v, ok := sr.Get(t.key).(T)
	if !ok {
		panic(fmt.Sprintf("di: service %q has unexpected type %T", t.key, sr.Get(t.key)))
	}
	return v
}
