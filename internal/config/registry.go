package config

import (
	"fmt"
	"sync"

	werrors "github.com/wrenchdag/wrench/pkg/errors"
	"github.com/wrenchdag/wrench/pkg/pipeline"
)

// ComponentFactory builds a pipeline.Component from its resolved
// constructor parameters. Implementations live alongside the concrete
// adapter they build (a BaseHarvester, a BaseCataloger, ...); the
// registry itself carries no domain knowledge.
type ComponentFactory func(params map[string]any) (pipeline.Component, error)

// Registry resolves a class_path string to a ComponentFactory (spec
// §4.10). Factories are registered by the embedding program (the CLI's
// main, a test) before loading any config.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]ComponentFactory
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]ComponentFactory)}
}

// Register associates classPath with a factory. Registering the same
// class_path twice overwrites the earlier factory.
func (r *Registry) Register(classPath string, factory ComponentFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[classPath] = factory
}

// Build instantiates the component named by cfg.ClassPath.
func (r *Registry) Build(cfg ComponentConfig) (pipeline.Component, error) {
	r.mu.RLock()
	factory, ok := r.factories[cfg.ClassPath]
	r.mu.RUnlock()
	if !ok {
		return nil, &werrors.NotFoundError{Resource: "component class_path", Name: cfg.ClassPath}
	}
	c, err := factory(cfg.Params)
	if err != nil {
		return nil, fmt.Errorf("building component %q (%s): %w", cfg.Name, cfg.ClassPath, err)
	}
	return c, nil
}
