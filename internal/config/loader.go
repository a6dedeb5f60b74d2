package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	werrors "github.com/wrenchdag/wrench/pkg/errors"
	"github.com/wrenchdag/wrench/pkg/pipeline"
)

// Load reads and resolves a pipeline definition file from path, then
// builds its graph against registry (spec §4.10).
func Load(path string, registry *Registry) (*PipelineConfig, *pipeline.Graph, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return LoadBytes(raw, registry)
}

// LoadBytes is Load without a filesystem dependency, used directly by
// tests.
func LoadBytes(raw []byte, registry *Registry) (*PipelineConfig, *pipeline.Graph, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, nil, fmt.Errorf("parsing config: %w", err)
	}

	envResolved, err := resolveEnvDeep(doc)
	if err != nil {
		return nil, nil, err
	}
	envResolvedMap, _ := envResolved.(map[string]any)

	resolved, err := resolveValue(envResolvedMap, envResolvedMap)
	if err != nil {
		return nil, nil, fmt.Errorf("resolving config references: %w", err)
	}

	reencoded, err := yaml.Marshal(resolved)
	if err != nil {
		return nil, nil, fmt.Errorf("re-encoding resolved config: %w", err)
	}

	var cfg PipelineConfig
	if err := yaml.Unmarshal(reencoded, &cfg); err != nil {
		return nil, nil, fmt.Errorf("decoding resolved config: %w", err)
	}

	graph, err := buildGraph(&cfg, registry)
	if err != nil {
		return nil, nil, err
	}

	return &cfg, graph, nil
}

// resolveEnvDeep substitutes ${ENV_VAR} strings throughout v, leaving
// {resolver_, key_} maps untouched — those are resolved in a second
// pass (resolve.go), against the env-substituted document, matching
// spec §4.10's "fully-resolved config document" phrasing.
func resolveEnvDeep(v any) (any, error) {
	switch val := v.(type) {
	case string:
		return resolveEnvString(val), nil
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, e := range val {
			r, err := resolveEnvDeep(e)
			if err != nil {
				return nil, err
			}
			out[k] = r
		}
		return out, nil
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			r, err := resolveEnvDeep(e)
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return out, nil
	default:
		return v, nil
	}
}

func buildGraph(cfg *PipelineConfig, registry *Registry) (*pipeline.Graph, error) {
	if len(cfg.Components) == 0 {
		return nil, &werrors.DefinitionError{Message: "pipeline config has no components"}
	}

	connections := cfg.Connections
	if len(connections) == 0 && cfg.Template != "" {
		connections = templateConnections(cfg.Template)
		if connections == nil {
			return nil, &werrors.DefinitionError{Message: fmt.Sprintf("unknown template %q", cfg.Template)}
		}
	}

	g := pipeline.NewGraph()
	for _, cc := range cfg.Components {
		comp, err := registry.Build(cc)
		if err != nil {
			return nil, err
		}
		if err := g.AddNode(pipeline.Node{Name: cc.Name, Component: comp}); err != nil {
			return nil, err
		}
	}

	for _, conn := range connections {
		if err := g.AddEdge(pipeline.Edge{
			From:        conn.Start,
			To:          conn.End,
			InputConfig: conn.InputConfig,
		}); err != nil {
			return nil, err
		}
	}

	validator := pipeline.NewValidator(g)
	if _, err := validator.Validate(); err != nil {
		return nil, err
	}

	return g, nil
}
