package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/expr-lang/expr"

	werrors "github.com/wrenchdag/wrench/pkg/errors"
)

// resolveValue recursively substitutes "${ENV_VAR}" strings and
// {resolver_: "config_key", key_: "a.b.c"} maps throughout v (spec
// §4.10). docRoot is the already-resolved top-level config document
// ({resolver_, key_} dot paths are evaluated against it, via
// expr-lang/expr so the path syntax doesn't need its own parser).
func resolveValue(v any, docRoot map[string]any) (any, error) {
	switch val := v.(type) {
	case string:
		return resolveEnvString(val), nil
	case map[string]any:
		if resolver, key, ok := asConfigKeyRef(val); ok {
			return resolveConfigKey(resolver, key, docRoot)
		}
		out := make(map[string]any, len(val))
		for k, e := range val {
			r, err := resolveValue(e, docRoot)
			if err != nil {
				return nil, err
			}
			out[k] = r
		}
		return out, nil
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			r, err := resolveValue(e, docRoot)
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

func resolveEnvString(s string) string {
	if !strings.Contains(s, "${") {
		return s
	}
	return os.Expand(s, func(name string) string {
		return os.Getenv(name)
	})
}

// asConfigKeyRef recognizes {resolver_: "config_key", key_: "a.b.c"}.
// The "config_key" resolver name is the only one this engine supports;
// it is kept as an explicit field (rather than assumed) so a future
// resolver kind has somewhere to hook in.
func asConfigKeyRef(m map[string]any) (resolver, key string, ok bool) {
	r, hasR := m["resolver_"].(string)
	k, hasK := m["key_"].(string)
	if !hasR || !hasK {
		return "", "", false
	}
	return r, k, true
}

func resolveConfigKey(resolver, key string, docRoot map[string]any) (any, error) {
	if resolver != "config_key" {
		return nil, &werrors.DefinitionError{Message: fmt.Sprintf("unknown resolver_ %q", resolver)}
	}
	result, err := expr.Eval(key, docRoot)
	if err != nil {
		return nil, &werrors.DefinitionError{Message: fmt.Sprintf("evaluating key_ %q: %v", key, err)}
	}
	return result, nil
}
