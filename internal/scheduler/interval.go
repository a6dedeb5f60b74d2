package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	werrors "github.com/wrenchdag/wrench/pkg/errors"
)

// IntervalSpec configures an IntervalTrigger (spec §4.9). Exactly one of
// the field form (Weeks/Days/Hours/Minutes/Seconds, any subset summed
// together) or Duration (an ISO-8601 string) must be set; setting both,
// or neither, is a definition error.
type IntervalSpec struct {
	Weeks   int
	Days    int
	Hours   int
	Minutes int
	Seconds int

	Duration string
}

func (s IntervalSpec) period() (time.Duration, error) {
	hasFields := s.Weeks != 0 || s.Days != 0 || s.Hours != 0 || s.Minutes != 0 || s.Seconds != 0
	hasDuration := s.Duration != ""

	switch {
	case hasFields && hasDuration:
		return 0, &werrors.DefinitionError{Message: "interval trigger: fields and duration are mutually exclusive"}
	case hasDuration:
		return ParseISODuration(s.Duration)
	case hasFields:
		d := time.Duration(s.Weeks)*7*24*time.Hour +
			time.Duration(s.Days)*24*time.Hour +
			time.Duration(s.Hours)*time.Hour +
			time.Duration(s.Minutes)*time.Minute +
			time.Duration(s.Seconds)*time.Second
		if d <= 0 {
			return 0, &werrors.DefinitionError{Message: "interval trigger: period must be positive"}
		}
		return d, nil
	default:
		return 0, &werrors.DefinitionError{Message: "interval trigger: one of fields or duration is required"}
	}
}

// IntervalTrigger fires RunFunc once immediately on Start and then every
// period thereafter, for as long as the trigger is running (spec §4.9).
// A golang.org/x/time/rate limiter guards against a misconfigured
// sub-second period from saturating the runner with overlapping
// invocations; overlapping firings of this same trigger are otherwise
// skipped rather than queued (a slow run simply delays the next tick by
// however long it took a busy-flag to clear).
type IntervalTrigger struct {
	period time.Duration
	run     RunFunc
	logger  *slog.Logger
	limiter *rate.Limiter

	mu      sync.Mutex
	running bool
	busy    bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewIntervalTrigger validates spec and builds an IntervalTrigger that
// invokes run on each firing. logger may be nil.
func NewIntervalTrigger(spec IntervalSpec, run RunFunc, logger *slog.Logger) (*IntervalTrigger, error) {
	period, err := spec.period()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &IntervalTrigger{
		period:  period,
		run:     run,
		logger:  logger,
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
	}, nil
}

func (t *IntervalTrigger) Start(ctx context.Context) error {
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

func (t *IntervalTrigger) Shutdown() {
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

func (t *IntervalTrigger) loop(ctx context.Context) {
	defer close(t.done)

	t.fire(ctx)

	ticker := time.NewTicker(t.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.fire(ctx)
		}
	}
}

func (t *IntervalTrigger) fire(ctx context.Context) {
	t.mu.Lock()
	if t.busy {
		t.mu.Unlock()
		t.logger.Warn("interval trigger skipped overlapping firing")
		return
	}
	t.busy = true
	t.mu.Unlock()

	defer func() {
		t.mu.Lock()
		t.busy = false
		t.mu.Unlock()
	}()

	if err := t.limiter.Wait(ctx); err != nil {
		return
	}

	if err := t.run(ctx, "interval"); err != nil {
		t.logger.Error("interval trigger run failed", slog.String("error", err.Error()))
	}
}
