// Package metrics wires the engine's run/node/store counters into
// Prometheus via the OpenTelemetry metrics SDK, the way the teacher's
// internal/tracing and internal/operation packages separate span
// emission from counter emission rather than hand-rolling either.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	otelprometheus "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// Recorder emits the three run-engine metrics named in the
// observability surface: wrench_run_total{status},
// wrench_node_duration_seconds{component}, wrench_store_op_total{op,kind}.
// A nil *Recorder is valid and records nothing, so callers never need a
// feature flag to disable metrics.
type Recorder struct {
	registry     *prometheus.Registry
	runTotal     metric.Int64Counter
	nodeDuration metric.Float64Histogram
	storeOpTotal metric.Int64Counter
}

// NewRecorder builds a Recorder backed by its own Prometheus registry,
// ready to be served over /metrics via Recorder.Handler.
func NewRecorder() (*Recorder, error) {
	registry := prometheus.NewRegistry()

	exporter, err := otelprometheus.New(otelprometheus.WithRegisterer(registry))
	if err != nil {
		return nil, err
	}
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	meter := provider.Meter("wrench")

	runTotal, err := meter.Int64Counter(
		"wrench_run_total",
		metric.WithDescription("Total pipeline runs by terminal status"),
	)
	if err != nil {
		return nil, err
	}
	nodeDuration, err := meter.Float64Histogram(
		"wrench_node_duration_seconds",
		metric.WithDescription("Node execution duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}
	storeOpTotal, err := meter.Int64Counter(
		"wrench_store_op_total",
		metric.WithDescription("Total Result Store operations by op and backend kind"),
	)
	if err != nil {
		return nil, err
	}

	return &Recorder{
		registry:     registry,
		runTotal:     runTotal,
		nodeDuration: nodeDuration,
		storeOpTotal: storeOpTotal,
	}, nil
}

// Handler serves the recorder's registry in the Prometheus exposition
// format, or nil if r is nil.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return nil
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// IncRunTotal records one completed run under the given terminal status.
func (r *Recorder) IncRunTotal(ctx context.Context, status string) {
	if r == nil {
		return
	}
	r.runTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}

// ObserveNodeDuration records one node execution's wall time.
func (r *Recorder) ObserveNodeDuration(ctx context.Context, component string, seconds float64) {
	if r == nil {
		return
	}
	r.nodeDuration.Record(ctx, seconds, metric.WithAttributes(attribute.String("component", component)))
}

// IncStoreOp records one Result Store operation.
func (r *Recorder) IncStoreOp(ctx context.Context, op, kind string) {
	if r == nil {
		return
	}
	r.storeOpTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("op", op),
		attribute.String("kind", kind),
	))
}
