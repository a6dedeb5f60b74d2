package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	werrors "github.com/wrenchdag/wrench/pkg/errors"
)

// CronSpec configures a CronTrigger (spec §4.9). Exactly one of Expr (a
// standard 5-field cron string, with the usual @hourly/@daily/...
// aliases) or Fields (the explicit-fields form) must be set.
type CronSpec struct {
	Expr   string
	Fields *CronFields
}

func (s CronSpec) parse() (*cronExpr, error) {
	hasExpr := s.Expr != ""
	hasFields := s.Fields != nil
	switch {
	case hasExpr && hasFields:
		return nil, &werrors.DefinitionError{Message: "cron trigger: expr and fields are mutually exclusive"}
	case hasExpr:
		return parseStandardCron(s.Expr)
	case hasFields:
		return parseExplicitCron(*s.Fields)
	default:
		return nil, &werrors.DefinitionError{Message: "cron trigger: one of expr or fields is required"}
	}
}

// CronTrigger fires RunFunc once immediately on Start, then again at
// each time cronExpr.Next computes, for as long as it is running (spec
// §4.9). Like IntervalTrigger, an overlapping firing (the previous run
// still in flight when the next is due) is skipped rather than queued.
type CronTrigger struct {
	expr   *cronExpr
	run    RunFunc
	logger *slog.Logger

	mu      sync.Mutex
	running bool
	busy    bool
	cancel  context.CancelFunc
	done    chan struct{}

	// now is overridable in tests; defaults to time.Now.
	now func() time.Time
}

// NewCronTrigger validates spec and builds a CronTrigger that invokes
// run on each firing. logger may be nil.
func NewCronTrigger(spec CronSpec, run RunFunc, logger *slog.Logger) (*CronTrigger, error) {
	expr, err := spec.parse()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CronTrigger{
		expr:   expr,
		run:    run,
		logger: logger,
		now:    time.Now,
	}, nil
}

func (t *CronTrigger) Start(ctx context.Context) error {
	t.mu.Lock()
	if t.running {
		t.mu.Unlock()
		return nil
	}
	t.running = true
	loopCtx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.done = make(chan struct{})
	t.mu.Unlock()

	go t.loop(loopCtx)
	return nil
}

func (t *CronTrigger) Shutdown() {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	t.running = false
	cancel := t.cancel
	done := t.done
	t.mu.Unlock()

	cancel()
	<-done
}

func (t *CronTrigger) loop(ctx context.Context) {
	defer close(t.done)

	t.fire(ctx)

	for {
		next := t.expr.Next(t.now())
		if next.IsZero() {
			t.logger.Error("cron trigger found no future firing time, stopping")
			return
		}

		timer := time.NewTimer(next.Sub(t.now()))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			t.fire(ctx)
		}
	}
}

func (t *CronTrigger) fire(ctx context.Context) {
	t.mu.Lock()
	if t.busy {
		t.mu.Unlock()
		t.logger.Warn("cron trigger skipped overlapping firing")
		return
	}
	t.busy = true
	t.mu.Unlock()

	defer func() {
		t.mu.Lock()
		t.busy = false
		t.mu.Unlock()
	}()

	if err := t.run(ctx, "cron"); err != nil {
		t.logger.Error("cron trigger run failed", slog.String("error", err.Error()))
	}
}
