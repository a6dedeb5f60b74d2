// Package scheduler implements the periodic triggers (spec §4.9) that
// repeatedly invoke a pipeline Runner: an interval trigger (fixed
// period, fields or ISO-8601 duration form) and a cron trigger (5-field
// expression or explicit fields form). Both share one contract and both
// fire once immediately on Start.
package scheduler

import "context"

// RunFunc is the callback a Trigger invokes on each firing. triggeredBy
// is "interval" or "cron" depending on the trigger kind and is recorded
// on the run record (spec §3's RunRecord.TriggeredBy supplemental
// field, SPEC_FULL.md §3).
type RunFunc func(ctx context.Context, triggeredBy string) error

// Trigger is the shared contract of both trigger kinds (spec §4.9):
// Start launches a background loop that repeatedly invokes RunFunc with
// the same configured inputs; Shutdown stops further invocations (an
// in-flight run completes unless the caller also cancels ctx).
type Trigger interface {
	Start(ctx context.Context) error
	Shutdown()
}
