package history

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wrenchdag/wrench/pkg/store"
)

func TestTracker_StartCompletionRoundTrip(t *testing.T) {
	ctx := context.Background()
	tr := NewTracker(store.NewMemoryStore())

	require.NoError(t, tr.RecordRunStart(ctx, "run-1", "catalog-pipeline", "schedule", map[string]any{"limit": float64(10)}))
	require.NoError(t, tr.RecordComponentPerformance(ctx, "run-1", "harvester", PerfRecord{DurationMS: 120}))
	require.NoError(t, tr.RecordRunCompletion(ctx, "run-1", false))

	records, err := tr.GetRunRecords(ctx, 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, RunCompleted, records[0].Status)
	assert.Equal(t, "catalog-pipeline", records[0].PipelineName)
	assert.Equal(t, int64(120), records[0].ComponentPerformance["harvester"].DurationMS)
	assert.NotNil(t, records[0].EndTime)
}

func TestTracker_MostRecentFirst(t *testing.T) {
	ctx := context.Background()
	tr := NewTracker(store.NewMemoryStore())

	require.NoError(t, tr.RecordRunStart(ctx, "run-1", "p", "manual", nil))
	require.NoError(t, tr.RecordRunCompletion(ctx, "run-1", false))
	require.NoError(t, tr.RecordRunStart(ctx, "run-2", "p", "manual", nil))
	require.NoError(t, tr.RecordRunCompletion(ctx, "run-2", false))

	records, err := tr.GetRunRecords(ctx, 0)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "run-2", records[0].RunID)
	assert.Equal(t, "run-1", records[1].RunID)
}

func TestTracker_GetRunRecordsRespectsLimit(t *testing.T) {
	ctx := context.Background()
	tr := NewTracker(store.NewMemoryStore())

	for _, id := range []string{"run-1", "run-2", "run-3"} {
		require.NoError(t, tr.RecordRunStart(ctx, id, "p", "manual", nil))
		require.NoError(t, tr.RecordRunCompletion(ctx, id, false))
	}

	records, err := tr.GetRunRecords(ctx, 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "run-3", records[0].RunID)
	assert.Equal(t, "run-2", records[1].RunID)
}

func TestTracker_RecordRunFailure(t *testing.T) {
	ctx := context.Background()
	tr := NewTracker(store.NewMemoryStore())

	require.NoError(t, tr.RecordRunStart(ctx, "run-1", "p", "manual", nil))
	require.NoError(t, tr.RecordRunFailure(ctx, "run-1", errors.New("enricher: connection refused")))

	records, err := tr.GetRunRecords(ctx, 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, RunFailed, records[0].Status)
	assert.Equal(t, "enricher: connection refused", records[0].Error)
}

func TestTracker_GetLastSuccessfulRunSkipsFailures(t *testing.T) {
	ctx := context.Background()
	tr := NewTracker(store.NewMemoryStore())

	require.NoError(t, tr.RecordRunStart(ctx, "run-1", "p", "manual", nil))
	require.NoError(t, tr.RecordRunCompletion(ctx, "run-1", false))
	require.NoError(t, tr.RecordRunStart(ctx, "run-2", "p", "manual", nil))
	require.NoError(t, tr.RecordRunFailure(ctx, "run-2", errors.New("boom")))

	last, err := tr.GetLastSuccessfulRun(ctx)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, "run-1", last.RunID)
}

func TestTracker_GetLastSuccessfulRunIncludesStoppedEarly(t *testing.T) {
	ctx := context.Background()
	tr := NewTracker(store.NewMemoryStore())

	require.NoError(t, tr.RecordRunStart(ctx, "run-1", "p", "manual", nil))
	require.NoError(t, tr.RecordRunCompletion(ctx, "run-1", true))

	last, err := tr.GetLastSuccessfulRun(ctx)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, RunStopped, last.Status)
}

func TestTracker_LoadsExistingHistoryFromStore(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()

	tr1 := NewTracker(s)
	require.NoError(t, tr1.RecordRunStart(ctx, "run-1", "p", "manual", nil))
	require.NoError(t, tr1.RecordRunCompletion(ctx, "run-1", false))

	tr2 := NewTracker(s)
	records, err := tr2.GetRunRecords(ctx, 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "run-1", records[0].RunID)
}
