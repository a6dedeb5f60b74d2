package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntervalTrigger_FiresImmediatelyThenPeriodically(t *testing.T) {
	var calls int32
	trig, err := NewIntervalTrigger(IntervalSpec{Seconds: 1}, func(ctx context.Context, triggeredBy string) error {
		assert.Equal(t, "interval", triggeredBy)
		atomic.AddInt32(&calls, 1)
		return nil
	}, nil)
	require.NoError(t, err)

	require.NoError(t, trig.Start(context.Background()))
	defer trig.Shutdown()

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&calls) >= 1
	}, time.Second, 10*time.Millisecond)

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&calls) >= 2
	}, 3*time.Second, 10*time.Millisecond)
}

func TestIntervalSpec_MutuallyExclusive(t *testing.T) {
	_, err := NewIntervalTrigger(IntervalSpec{Seconds: 1, Duration: "PT1S"}, noop, nil)
	assert.Error(t, err)

	_, err = NewIntervalTrigger(IntervalSpec{}, noop, nil)
	assert.Error(t, err)
}

func TestIntervalTrigger_ShutdownStopsFurtherFirings(t *testing.T) {
	var calls int32
	trig, err := NewIntervalTrigger(IntervalSpec{Seconds: 1}, func(ctx context.Context, triggeredBy string) error {
		atomic.AddInt32(&calls, 1)
		return nil
	}, nil)
	require.NoError(t, err)

	require.NoError(t, trig.Start(context.Background()))
	require.Eventually(t, func() bool { return atomic.LoadInt32(&calls) >= 1 }, time.Second, 10*time.Millisecond)

	trig.Shutdown()
	after := atomic.LoadInt32(&calls)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, after, atomic.LoadInt32(&calls))
}

func noop(ctx context.Context, triggeredBy string) error { return nil }
