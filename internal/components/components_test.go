package components

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wrenchdag/wrench/pkg/engine"
	"github.com/wrenchdag/wrench/pkg/history"
	"github.com/wrenchdag/wrench/pkg/pipeline"
	"github.com/wrenchdag/wrench/pkg/state"
	"github.com/wrenchdag/wrench/pkg/store"
)

func buildGraph(t *testing.T, harvester *StaticHarvester) *pipeline.Graph {
	t.Helper()

	g := pipeline.NewGraph()
	require.NoError(t, g.AddNode(pipeline.Node{Name: "harvester", Component: NewHarvesterComponent(harvester)}))
	require.NoError(t, g.AddNode(pipeline.Node{Name: "grouper", Component: NewGrouperComponent(FieldGrouper{Field: "category"}.AsGroupFunc())}))
	require.NoError(t, g.AddNode(pipeline.Node{Name: "enricher", Component: NewEnricherComponent(PassthroughEnrich("svc"))}))
	require.NoError(t, g.AddNode(pipeline.Node{Name: "cataloger", Component: NewCatalogerComponent(NoopCataloger{})}))

	require.NoError(t, g.AddEdge(pipeline.Edge{From: "harvester", To: "grouper", InputConfig: map[string]string{
		"items": "harvester.items", "operations": "harvester.operations",
	}}))
	require.NoError(t, g.AddEdge(pipeline.Edge{From: "harvester", To: "enricher", InputConfig: map[string]string{
		"items": "harvester.items",
	}}))
	require.NoError(t, g.AddEdge(pipeline.Edge{From: "grouper", To: "enricher", InputConfig: map[string]string{
		"groups": "grouper.groups",
	}}))
	require.NoError(t, g.AddEdge(pipeline.Edge{From: "enricher", To: "cataloger", InputConfig: map[string]string{
		"service_metadata": "enricher.service_metadata", "group_metadata": "enricher.group_metadata",
	}}))
	return g
}

func newTestRunner(t *testing.T, harvester *StaticHarvester) (*pipeline.Graph, store.Store, *engine.Engine) {
	t.Helper()
	g := buildGraph(t, harvester)
	s := store.NewMemoryStore()
	stateMgr := state.NewManager(s)
	tracker := history.NewTracker(s)
	eng := engine.New(g, s, stateMgr, tracker)
	return g, s, eng
}

func TestSensorPipeline_FirstRun_AllAdds(t *testing.T) {
	harvester := &StaticHarvester{Items: []pipeline.Item{
		{ID: "1", Content: map[string]any{"category": "sensor", "n": "D1"}},
		{ID: "2", Content: map[string]any{"category": "sensor", "n": "D2"}},
	}}
	_, s, eng := newTestRunner(t, harvester)

	record, err := eng.Run(context.Background(), "sensor-pipeline", "manual", nil)
	require.NoError(t, err)
	assert.Equal(t, history.RunCompleted, record.Status)
	assert.Equal(t, "sensor-pipeline", record.PipelineName)
	assert.Equal(t, "manual", record.TriggeredBy)

	data, ok, err := s.Get(context.Background(), record.RunID+":harvester")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, string(data), `"Type":"ADD"`)
	assert.NotContains(t, string(data), `"Type":"UPDATE"`)
	assert.NotContains(t, string(data), `"Type":"DELETE"`)
}

func TestSensorPipeline_IncrementalRuns(t *testing.T) {
	harvester := &StaticHarvester{Items: []pipeline.Item{
		{ID: "1", Content: map[string]any{"category": "sensor", "n": "D1"}},
		{ID: "2", Content: map[string]any{"category": "sensor", "n": "D2"}},
	}}
	g, s, eng := newTestRunner(t, harvester)
	_ = g

	ctx := context.Background()
	record1, err := eng.Run(ctx, "sensor-pipeline", "manual", nil)
	require.NoError(t, err)
	assert.Equal(t, history.RunCompleted, record1.Status)

	// Run 2: item 1 updated, item 2 deleted, item 3 added (spec §8
	// scenario 4).
	harvester.Items = []pipeline.Item{
		{ID: "1", Content: map[string]any{"category": "sensor", "n": "D1-updated"}},
		{ID: "3", Content: map[string]any{"category": "sensor", "n": "D3"}},
	}
	record2, err := eng.Run(ctx, "sensor-pipeline", "manual", nil)
	require.NoError(t, err)
	assert.Equal(t, history.RunCompleted, record2.Status)

	data, ok, err := s.Get(ctx, record2.RunID+":harvester")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, string(data), `"Type":"UPDATE"`)
	assert.Contains(t, string(data), `"Type":"ADD"`)
	assert.Contains(t, string(data), `"Type":"DELETE"`)

	// Run 3: unchanged items -> empty operation list, stop_pipeline.
	record3, err := eng.Run(ctx, "sensor-pipeline", "manual", nil)
	require.NoError(t, err)
	assert.Equal(t, history.RunStopped, record3.Status)
}
