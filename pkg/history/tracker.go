// Package history implements the Run Tracker (spec §4.3): an
// append-only history of runs, lazily loaded from the Result Store and
// fully re-serialized on each mutation.
package history

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/wrenchdag/wrench/pkg/store"
)

// RunStatus is the terminal (or in-flight) status of a run.
type RunStatus string

const (
	RunStarted   RunStatus = "STARTED"
	RunCompleted RunStatus = "COMPLETED"
	RunFailed    RunStatus = "FAILED"
	RunStopped   RunStatus = "STOPPED"
)

// PerfRecord captures one component's timing and memory use within a run.
type PerfRecord struct {
	DurationMS  int64 `json:"duration_ms"`
	MemoryBytes int64 `json:"memory_bytes,omitempty"`
}

// RunRecord is one run's full history entry (spec §3). PipelineName and
// TriggeredBy are supplemental fields recovered from the original
// implementation's CLI (see SPEC_FULL.md §3).
type RunRecord struct {
	RunID               string                `json:"run_id"`
	PipelineName        string                `json:"pipeline_name,omitempty"`
	TriggeredBy         string                `json:"triggered_by,omitempty"`
	Status              RunStatus             `json:"status"`
	StartTime           time.Time             `json:"start_time"`
	EndTime             *time.Time            `json:"end_time,omitempty"`
	Error               string                `json:"error,omitempty"`
	ComponentStatuses   map[string]string     `json:"component_statuses,omitempty"`
	Inputs              map[string]any        `json:"inputs,omitempty"`
	ComponentPerformance map[string]PerfRecord `json:"component_performance,omitempty"`
	PipelineMemoryPeak  int64                 `json:"pipeline_memory_peak,omitempty"`
}

const historyKey = "pipeline:run_history"

// Tracker is the Run Tracker bound to one Result Store.
type Tracker struct {
	store store.Store

	mu      sync.Mutex
	loaded  bool
	records []RunRecord
}

// NewTracker creates a Run Tracker over s.
func NewTracker(s store.Store) *Tracker {
	return &Tracker{store: s}
}

func (t *Tracker) ensureLoaded(ctx context.Context) error {
	if t.loaded {
		return nil
	}
	data, ok, err := t.store.Get(ctx, historyKey)
	if err != nil {
		return err
	}
	if ok {
		if err := json.Unmarshal(data, &t.records); err != nil {
			return err
		}
	}
	t.loaded = true
	return nil
}

func (t *Tracker) persist(ctx context.Context) error {
	data, err := json.Marshal(t.records)
	if err != nil {
		return err
	}
	return t.store.Add(ctx, historyKey, data, true)
}

func (t *Tracker) find(runID string) int {
	for i := range t.records {
		if t.records[i].RunID == runID {
			return i
		}
	}
	return -1
}

// RecordRunStart appends a new STARTED record for runID.
func (t *Tracker) RecordRunStart(ctx context.Context, runID, pipelineName, triggeredBy string, sanitizedInputs map[string]any) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.ensureLoaded(ctx); err != nil {
		return err
	}

	t.records = append(t.records, RunRecord{
		RunID:         runID,
		PipelineName:  pipelineName,
		TriggeredBy:   triggeredBy,
		Status:        RunStarted,
		StartTime:     time.Now().UTC(),
		Inputs:        sanitizedInputs,
		ComponentStatuses: map[string]string{},
	})
	return t.persist(ctx)
}

// RecordComponentPerformance attaches a node's timing/memory to runID's record.
func (t *Tracker) RecordComponentPerformance(ctx context.Context, runID, component string, perf PerfRecord) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.ensureLoaded(ctx); err != nil {
		return err
	}

	idx := t.find(runID)
	if idx < 0 {
		return nil
	}
	if t.records[idx].ComponentPerformance == nil {
		t.records[idx].ComponentPerformance = map[string]PerfRecord{}
	}
	t.records[idx].ComponentPerformance[component] = perf
	return t.persist(ctx)
}

// RecordRunCompletion marks runID COMPLETED, or STOPPED if stoppedEarly.
func (t *Tracker) RecordRunCompletion(ctx context.Context, runID string, stoppedEarly bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.ensureLoaded(ctx); err != nil {
		return err
	}

	idx := t.find(runID)
	if idx < 0 {
		return nil
	}
	now := time.Now().UTC()
	t.records[idx].EndTime = &now
	if stoppedEarly {
		t.records[idx].Status = RunStopped
	} else {
		t.records[idx].Status = RunCompleted
	}
	return t.persist(ctx)
}

// RecordRunFailure marks runID FAILED with the given error message.
func (t *Tracker) RecordRunFailure(ctx context.Context, runID string, runErr error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.ensureLoaded(ctx); err != nil {
		return err
	}

	idx := t.find(runID)
	if idx < 0 {
		return nil
	}
	now := time.Now().UTC()
	t.records[idx].EndTime = &now
	t.records[idx].Status = RunFailed
	if runErr != nil {
		t.records[idx].Error = runErr.Error()
	}
	return t.persist(ctx)
}

// SetComponentStatus records a node's current status string on runID's record.
func (t *Tracker) SetComponentStatus(ctx context.Context, runID, component, status string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.ensureLoaded(ctx); err != nil {
		return err
	}

	idx := t.find(runID)
	if idx < 0 {
		return nil
	}
	if t.records[idx].ComponentStatuses == nil {
		t.records[idx].ComponentStatuses = map[string]string{}
	}
	t.records[idx].ComponentStatuses[component] = status
	return t.persist(ctx)
}

// GetRunRecords returns up to limit records, most-recent-first. limit
// <= 0 means no limit.
func (t *Tracker) GetRunRecords(ctx context.Context, limit int) ([]RunRecord, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	out := make([]RunRecord, len(t.records))
	for i, r := range t.records {
		out[len(t.records)-1-i] = r
	}
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

// GetLastSuccessfulRun returns the most recent COMPLETED or STOPPED
// record, or nil if there isn't one.
func (t *Tracker) GetLastSuccessfulRun(ctx context.Context) (*RunRecord, error) {
	records, err := t.GetRunRecords(ctx, 0)
	if err != nil {
		return nil, err
	}
	for i := range records {
		if records[i].Status == RunCompleted || records[i].Status == RunStopped {
			return &records[i], nil
		}
	}
	return nil, nil
}
