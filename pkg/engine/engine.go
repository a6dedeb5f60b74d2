// Package engine implements the Run Engine (spec §4.7): the concurrent
// executor that drives a pipeline graph's nodes through the
// PENDING -> RUNNING -> {DONE, FAILED, STOP_PIPELINE} status machine,
// resolving each node's inputs from upstream results and runtime
// inputs, staging and committing component state, and recording the
// run in the Run Tracker.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/wrenchdag/wrench/internal/log"
	"github.com/wrenchdag/wrench/internal/metrics"
	"github.com/wrenchdag/wrench/internal/tracing"
	werrors "github.com/wrenchdag/wrench/pkg/errors"
	"github.com/wrenchdag/wrench/pkg/history"
	"github.com/wrenchdag/wrench/pkg/pipeline"
	"github.com/wrenchdag/wrench/pkg/state"
	"github.com/wrenchdag/wrench/pkg/store"
)

// DefaultMaxConcurrency bounds how many nodes may have their Run method
// in flight at once, mirroring the teacher's DefaultParallelConcurrency
// (pkg/workflow.Executor): conservative by default, overridable per
// engine instance.
const DefaultMaxConcurrency = 3

// RuntimeInputs supplies the runtime-provided parameters for a run,
// keyed by node name then parameter name.
type RuntimeInputs map[string]map[string]any

// Engine drives one pipeline graph's runs against a shared Result
// Store, State Manager and Run Tracker.
type Engine struct {
	graph   *pipeline.Graph
	store   store.Store
	state   *state.Manager
	tracker *history.Tracker
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics *metrics.Recorder

	sem chan struct{}
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithMaxConcurrency bounds the number of nodes executing concurrently.
func WithMaxConcurrency(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.sem = make(chan struct{}, n)
		}
	}
}

// WithLogger overrides the engine's structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithTracer attaches an OpenTelemetry tracer. A nil tracer (the
// default) disables span emission without requiring a feature flag.
func WithTracer(tracer trace.Tracer) Option {
	return func(e *Engine) { e.tracer = tracer }
}

// WithMetrics attaches a Prometheus metrics recorder. A nil recorder
// (the default) disables metric emission.
func WithMetrics(rec *metrics.Recorder) Option {
	return func(e *Engine) { e.metrics = rec }
}

// New creates a Run Engine bound to a graph, a Result Store, a State
// Manager and a Run Tracker over the same store.
func New(graph *pipeline.Graph, s store.Store, stateMgr *state.Manager, tracker *history.Tracker, opts ...Option) *Engine {
	e := &Engine{
		graph:   graph,
		store:   s,
		state:   stateMgr,
		tracker: tracker,
		logger:  slog.Default(),
		sem:     make(chan struct{}, DefaultMaxConcurrency),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func resultKey(runID, name string) string { return fmt.Sprintf("%s:%s", runID, name) }
func statusKey(runID, name string) string { return fmt.Sprintf("%s:%s:status", runID, name) }

// runState is the mutable bookkeeping for a single Run invocation.
type runState struct {
	runID   string
	nodes   map[string]*nodeState
	wg      sync.WaitGroup

	mu           sync.Mutex
	failed       bool
	failErr      error
	stoppedEarly bool
}

// Run executes the pipeline once under a fresh run id (spec §4.7
// per-run procedure, steps 1-14). triggeredBy is recorded on the run
// record ("manual", "interval", "cron"); runtimeInputs supplies
// parameters the graph could not bind from upstream edges.
func (e *Engine) Run(ctx context.Context, pipelineName, triggeredBy string, runtimeInputs RuntimeInputs) (*history.RunRecord, error) {
	validator := pipeline.NewValidator(e.graph)
	required, err := validator.Validate()
	if err != nil {
		return nil, err
	}
	for node, params := range required {
		for _, p := range params {
			if _, ok := runtimeInputs[node][p]; !ok {
				return nil, &werrors.ValidationError{
					Node:    node,
					Field:   p,
					Message: "required input not supplied by an edge, a default, or runtime inputs",
				}
			}
		}
	}

	runID := uuid.NewString()
	logger := log.WithRun(e.logger, runID)

	sanitized := make(map[string]any, len(runtimeInputs))
	for node, params := range runtimeInputs {
		sanitized[node] = params
	}
	if err := e.tracker.RecordRunStart(ctx, runID, pipelineName, triggeredBy, sanitized); err != nil {
		return nil, err
	}

	e.state.PrepareNewVersion(runID)

	rs := &runState{runID: runID, nodes: make(map[string]*nodeState, len(e.graph.Nodes()))}
	for _, n := range e.graph.Nodes() {
		rs.nodes[n.Name] = newNodeState()
		if err := e.store.Add(ctx, statusKey(runID, n.Name), []byte(StatusPending), true); err != nil {
			return nil, err
		}
	}

	ctx, runSpan := tracing.StartRun(ctx, e.tracer, pipelineName, runID)

	for _, root := range e.graph.Roots() {
		e.scheduleNode(ctx, rs, root.Name, runtimeInputs, logger)
	}
	rs.wg.Wait()

	rs.mu.Lock()
	failed := rs.failed
	failErr := rs.failErr
	stoppedEarly := rs.stoppedEarly
	rs.mu.Unlock()

	if !failed {
		if err := e.state.CommitVersion(ctx); err != nil {
			failed = true
			failErr = err
		}
	} else {
		e.state.DiscardPending()
	}

	switch {
	case failed:
		_ = e.tracker.RecordRunFailure(ctx, runID, failErr)
		e.metrics.IncRunTotal(ctx, string(history.RunFailed))
		tracing.EndWithStatus(runSpan, string(history.RunFailed), failErr)
	default:
		_ = e.tracker.RecordRunCompletion(ctx, runID, stoppedEarly)
		status := history.RunCompleted
		if stoppedEarly {
			status = history.RunStopped
		}
		e.metrics.IncRunTotal(ctx, string(status))
		tracing.EndWithStatus(runSpan, string(status), nil)
	}

	records, err := e.tracker.GetRunRecords(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("run %s: no record written", runID)
	}
	// A component's own Run error is reported on the FAILED record only;
	// any other failure is also returned to the caller.
	var execErr *werrors.ExecutionError
	if werrors.As(failErr, &execErr) {
		return &records[0], nil
	}
	return &records[0], failErr
}

// scheduleNode is called once per predecessor completion (and once per
// root at run start). It re-checks readiness and the at-most-one
// transition guard before doing any work, so a node is never executed
// twice even when two predecessors finish concurrently (spec §4.7
// steps 5-6).
func (e *Engine) scheduleNode(ctx context.Context, rs *runState, name string, runtimeInputs RuntimeInputs, logger *slog.Logger) {
	rs.wg.Add(1)
	go func() {
		defer rs.wg.Done()
		e.executeNode(ctx, rs, name, runtimeInputs, logger)
	}()
}

func (e *Engine) executeNode(ctx context.Context, rs *runState, name string, runtimeInputs RuntimeInputs, logger *slog.Logger) {
	node, ok := e.graph.Node(name)
	if !ok {
		return
	}

	for _, parent := range node.Parents {
		if rs.nodes[parent].get() != StatusDone {
			return
		}
	}

	ns := rs.nodes[name]
	if err := ns.transition(name, StatusRunning); err != nil {
		return
	}
	_ = e.store.Add(ctx, statusKey(rs.runID, name), []byte(StatusRunning), true)

	nodeLogger := log.WithNode(logger, name)
	ctx, span := tracing.StartNode(ctx, e.tracer, rs.runID, name)
	start := time.Now()

	select {
	case e.sem <- struct{}{}:
		defer func() { <-e.sem }()
	case <-ctx.Done():
		e.finishFailed(ctx, rs, ns, name, ctx.Err(), nodeLogger, span, start)
		return
	}

	inputs, err := e.resolveInputs(ctx, rs.runID, node, runtimeInputs[name])
	if err != nil {
		e.finishFailed(ctx, rs, ns, name, err, nodeLogger, span, start)
		return
	}

	desc := node.Component.Descriptor()
	var componentState map[string]any
	if pipeline.DeclaresState(desc) {
		componentState, err = e.state.GetComponentState(ctx, name)
		if err != nil {
			e.finishFailed(ctx, rs, ns, name, err, nodeLogger, span, start)
			return
		}
	}

	output, runErr := node.Component.Run(ctx, inputs, componentState)
	duration := time.Since(start)
	e.metrics.ObserveNodeDuration(ctx, name, duration.Seconds())
	_ = e.tracker.RecordComponentPerformance(ctx, rs.runID, name, history.PerfRecord{DurationMS: duration.Milliseconds()})

	if runErr != nil {
		e.finishFailed(ctx, rs, ns, name, &werrors.ExecutionError{Node: name, Cause: runErr}, nodeLogger, span, start)
		return
	}

	if len(output.State) > 0 {
		if err := e.state.StageComponentState(name, output.State); err != nil {
			e.finishFailed(ctx, rs, ns, name, err, nodeLogger, span, start)
			return
		}
	}

	data, err := json.Marshal(output.Data)
	if err != nil {
		e.finishFailed(ctx, rs, ns, name, err, nodeLogger, span, start)
		return
	}
	if err := e.store.Add(ctx, resultKey(rs.runID, name), data, true); err != nil {
		e.finishFailed(ctx, rs, ns, name, err, nodeLogger, span, start)
		return
	}

	if output.StopPipeline {
		_ = ns.transition(name, StatusStopPipeline)
		_ = e.store.Add(ctx, statusKey(rs.runID, name), []byte(StatusStopPipeline), true)
		rs.mu.Lock()
		rs.stoppedEarly = true
		rs.mu.Unlock()
		nodeLogger.Info("node stopped pipeline", log.EventKey, "stop_pipeline", log.DurationKey, duration.Milliseconds())
		tracing.EndWithStatus(span, string(StatusStopPipeline), nil)
		return
	}

	_ = ns.transition(name, StatusDone)
	_ = e.store.Add(ctx, statusKey(rs.runID, name), []byte(StatusDone), true)
	nodeLogger.Info("node completed", log.EventKey, "done", log.DurationKey, duration.Milliseconds())
	tracing.EndWithStatus(span, string(StatusDone), nil)

	for _, child := range node.Children {
		e.scheduleNode(ctx, rs, child, runtimeInputs, logger)
	}
}

func (e *Engine) finishFailed(ctx context.Context, rs *runState, ns *nodeState, name string, err error, logger *slog.Logger, span trace.Span, start time.Time) {
	_ = ns.transition(name, StatusFailed)
	_ = e.store.Add(ctx, statusKey(rs.runID, name), []byte(StatusFailed), true)
	_ = e.store.Add(ctx, resultKey(rs.runID, name), []byte(fmt.Sprintf(`{"error":%q}`, err.Error())), true)

	rs.mu.Lock()
	if !rs.failed {
		rs.failed = true
		rs.failErr = err
	}
	rs.mu.Unlock()

	logger.Error("node failed", log.EventKey, "failed", "error", err, log.DurationKey, time.Since(start).Milliseconds())
	tracing.EndWithStatus(span, string(StatusFailed), err)
}

// resolveInputs implements spec §4.7 step 7: runtime inputs form the
// base, then every edge-bound parameter overrides with the resolved
// upstream value (whole-output or field-qualified). A field-qualified
// binding pulls the named field out of the source component's
// serialized result; a whole-output binding passes the full result map.
func (e *Engine) resolveInputs(ctx context.Context, runID string, node *pipeline.Node, runtime map[string]any) (map[string]any, error) {
	inputs := make(map[string]any, len(runtime))
	for k, v := range runtime {
		inputs[k] = v
	}

	for _, edge := range e.graph.PreviousEdges(node.Name) {
		for targetParam, sourceRefStr := range edge.InputConfig {
			ref := pipeline.ParseSourceRef(sourceRefStr)

			data, ok, err := e.store.Get(ctx, resultKey(runID, ref.Component))
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			var result map[string]any
			if err := json.Unmarshal(data, &result); err != nil {
				return nil, err
			}

			if ref.Field == "" {
				inputs[targetParam] = result
			} else {
				inputs[targetParam] = result[ref.Field]
			}
		}
	}

	return inputs, nil
}
