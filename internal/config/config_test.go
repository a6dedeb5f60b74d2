package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRegistry() *Registry {
	r := NewRegistry()
	RegisterBuiltins(r)
	return r
}

func TestLoadBytes_TemplateWiring(t *testing.T) {
	yamlDoc := []byte(`
name: sensors
template: sensor_pipeline
components:
  - name: harvester
    class_path: wrench.builtin.StaticHarvester
    params:
      items: []
  - name: grouper
    class_path: wrench.builtin.FieldGrouper
    params:
      field: category
  - name: enricher
    class_path: wrench.builtin.PassthroughEnricher
    params:
      service_id: svc
  - name: cataloger
    class_path: wrench.builtin.NoopCataloger
    params: {}
`)

	cfg, graph, err := LoadBytes(yamlDoc, testRegistry())
	require.NoError(t, err)
	assert.Equal(t, "sensors", cfg.Name)
	require.NotNil(t, graph)

	roots := graph.Roots()
	require.Len(t, roots, 1)
	assert.Equal(t, "harvester", roots[0].Name)
}

func TestLoadBytes_EnvVarSubstitution(t *testing.T) {
	require.NoError(t, os.Setenv("WRENCH_TEST_SERVICE_ID", "from-env"))
	defer os.Unsetenv("WRENCH_TEST_SERVICE_ID")

	yamlDoc := []byte(`
name: sensors
template: sensor_pipeline
components:
  - name: harvester
    class_path: wrench.builtin.StaticHarvester
    params:
      items: []
  - name: grouper
    class_path: wrench.builtin.FieldGrouper
    params:
      field: category
  - name: enricher
    class_path: wrench.builtin.PassthroughEnricher
    params:
      service_id: "${WRENCH_TEST_SERVICE_ID}"
  - name: cataloger
    class_path: wrench.builtin.NoopCataloger
    params: {}
`)

	_, graph, err := LoadBytes(yamlDoc, testRegistry())
	require.NoError(t, err)
	require.NotNil(t, graph)
}

func TestLoadBytes_ConfigKeyResolution(t *testing.T) {
	yamlDoc := []byte(`
name: sensors
template: sensor_pipeline
config:
  deployment:
    service_id: looked-up
components:
  - name: harvester
    class_path: wrench.builtin.StaticHarvester
    params:
      items: []
  - name: grouper
    class_path: wrench.builtin.FieldGrouper
    params:
      field: category
  - name: enricher
    class_path: wrench.builtin.PassthroughEnricher
    params:
      service_id:
        resolver_: config_key
        key_: config.deployment.service_id
  - name: cataloger
    class_path: wrench.builtin.NoopCataloger
    params: {}
`)

	_, graph, err := LoadBytes(yamlDoc, testRegistry())
	require.NoError(t, err)
	require.NotNil(t, graph)

	n, ok := graph.Node("enricher")
	require.True(t, ok)
	assert.NotNil(t, n.Component)
}

func TestLoadBytes_MissingComponents(t *testing.T) {
	_, _, err := LoadBytes([]byte(`name: empty`), testRegistry())
	assert.Error(t, err)
}

func TestLoadBytes_UnknownClassPath(t *testing.T) {
	yamlDoc := []byte(`
name: bad
connections: []
components:
  - name: x
    class_path: does.not.exist
    params: {}
`)
	_, _, err := LoadBytes(yamlDoc, testRegistry())
	assert.Error(t, err)
}
