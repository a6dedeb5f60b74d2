// Package runner provides the Pipeline Runner (spec §4.10): a thin
// facade that owns one pipeline's built graph plus its Result Store,
// State Manager and Run Tracker, and exposes a single Run entry point
// that delegates to the Run Engine — grounded in the original
// implementation's PipelineRunner (wrench/pipeline/config/runner.py),
// whose constructor takes a pipeline definition plus config and whose
// run(user_input) simply forwards to the underlying pipeline.
package runner

import (
	"context"

	"github.com/wrenchdag/wrench/pkg/engine"
	"github.com/wrenchdag/wrench/pkg/history"
	"github.com/wrenchdag/wrench/pkg/pipeline"
	"github.com/wrenchdag/wrench/pkg/state"
	"github.com/wrenchdag/wrench/pkg/store"
)

// Runner binds a built pipeline Graph to the storage it runs against.
type Runner struct {
	Name    string
	Graph   *pipeline.Graph
	Store   store.Store
	State   *state.Manager
	Tracker *history.Tracker
	Engine  *engine.Engine
}

// New builds a Runner over graph, constructing its own State Manager
// and Run Tracker atop s. The Run Tracker reads the run history from s
// once and then rewrites its own in-memory copy on every change, so two
// Runners that record runs in the same s at the same time can overwrite
// each other's history entries.
func New(name string, graph *pipeline.Graph, s store.Store, opts ...engine.Option) *Runner {
	stateMgr := state.NewManager(s)
	tracker := history.NewTracker(s)
	eng := engine.New(graph, s, stateMgr, tracker, opts...)

	return &Runner{
		Name:    name,
		Graph:   graph,
		Store:   s,
		State:   stateMgr,
		Tracker: tracker,
		Engine:  eng,
	}
}

// Run executes one run of the pipeline. triggeredBy defaults to
// "manual" when empty (an interactive invocation, as opposed to a
// Scheduler-driven "interval"/"cron" run).
func (r *Runner) Run(ctx context.Context, triggeredBy string, runtimeInputs engine.RuntimeInputs) (*history.RunRecord, error) {
	if triggeredBy == "" {
		triggeredBy = "manual"
	}
	return r.Engine.Run(ctx, r.Name, triggeredBy, runtimeInputs)
}

// History returns the most recent run records for this pipeline, most
// recent first, bounded by limit (0 means unbounded).
func (r *Runner) History(ctx context.Context, limit int) ([]history.RunRecord, error) {
	return r.Tracker.GetRunRecords(ctx, limit)
}
