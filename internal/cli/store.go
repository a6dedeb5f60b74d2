// Package cli holds the shared wiring behind cmd/wrench's subcommands:
// building a Result Store from config and building the application-wide
// Registry of component factories.
package cli

import (
	"fmt"

	"github.com/wrenchdag/wrench/internal/config"
	werrors "github.com/wrenchdag/wrench/pkg/errors"
	"github.com/wrenchdag/wrench/pkg/store"
)

// BuildStore constructs the Result Store backend named by cfg (spec
// §4.1); a nil cfg defaults to an in-memory store.
func BuildStore(cfg *config.StoreConfig) (store.Store, error) {
	if cfg == nil || cfg.Kind == "" || cfg.Kind == "memory" {
		return store.NewMemoryStore(), nil
	}
	switch cfg.Kind {
	case "filesystem":
		if cfg.Path == "" {
			return nil, &werrors.DefinitionError{Message: "filesystem store requires a path"}
		}
		return store.NewFilesystemStore(cfg.Path)
	case "sqlite":
		if cfg.Path == "" {
			return nil, &werrors.DefinitionError{Message: "sqlite store requires a path"}
		}
		return store.NewSQLiteStore(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown store kind %q", cfg.Kind)
	}
}

// NewRegistry returns a Registry with the built-in demo adapters
// registered. A deployment with real adapters would register those
// too, before calling config.Load.
func NewRegistry() *config.Registry {
	r := config.NewRegistry()
	config.RegisterBuiltins(r)
	return r
}
