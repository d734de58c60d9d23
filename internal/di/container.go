// Package di wires the storage backends, the event journal and the scenario
// runner from the configuration.
package di

import (
	"errors"
	"sort"
	"sync"
)

// Container is the dependency injection container.
// It manages service registration and resolution.
type Container struct {
	mu       sync.RWMutex
	services map[string]interface{}
	builders map[string]Builder
	building map[string]*build
}

// Builder is a function that creates a service instance.
type Builder func(c *Container) (interface{}, error)

// build runs a builder at most once while it succeeds. Builders may Get
// other services.
type build struct {
	once    sync.Once
	service interface{}
	err     error
}

// New creates a new dependency injection container.
func New() *Container {
	return &Container{
		services: make(map[string]interface{}),
		builders: make(map[string]Builder),
		building: make(map[string]*build),
	}
}

// Register registers a service instance.
func (c *Container) Register(name string, service interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.services[name] = service
}

// RegisterBuilder registers a builder function for lazy instantiation.
func (c *Container) RegisterBuilder(name string, builder Builder) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.builders[name] = builder
}

// Get retrieves a service by name.
func (c *Container) Get(name string) (interface{}, error) {
	c.mu.RLock()
	service, exists := c.services[name]
	c.mu.RUnlock()

	if exists {
		return service, nil
	}

	// Try to build it
	c.mu.Lock()
	builder, hasBuilder := c.builders[name]
	if !hasBuilder {
		c.mu.Unlock()
		return nil, errors.New("service not found: " + name)
	}
	b, ok := c.building[name]
	if !ok {
		b = &build{}
		c.building[name] = b
	}
	c.mu.Unlock()

	b.once.Do(func() {
		b.service, b.err = builder(c)
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	if b.err != nil {
		// Let the next Get retry
		if c.building[name] == b {
			delete(c.building, name)
		}
		return nil, b.err
	}
	c.services[name] = b.service
	return b.service, nil
}

// Lookup returns a service only if it was registered or already built.
// It never runs a builder.
func (c *Container) Lookup(name string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	service, exists := c.services[name]
	return service, exists
}

// MustGet retrieves a service or panics if not found.
func (c *Container) MustGet(name string) interface{} {
	service, err := c.Get(name)
	if err != nil {
		panic(err)
	}
	return service
}

// Has checks if a service is registered.
func (c *Container) Has(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, exists := c.services[name]
	if exists {
		return true
	}
	_, exists = c.builders[name]
	return exists
}

// ServiceNames returns all registered service names.
func (c *Container) ServiceNames() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make(map[string]bool)
	for name := range c.services {
		names[name] = true
	}
	for name := range c.builders {
		names[name] = true
	}

	result := make([]string, 0, len(names))
	for name := range names {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}

// Clear removes all services and builders.
func (c *Container) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.services = make(map[string]interface{})
	c.builders = make(map[string]Builder)
	c.building = make(map[string]*build)
}

// Service names constants for type-safe access.
const (
	ServiceConfig        = "config"
	ServiceStorage       = "storage.manager"
	ServiceSnapshotStore = "snapshot.store"
	ServiceJournal       = "eventlog.journal"
	ServiceRunner        = "scenario.runner"
)
