package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCronTrigger_FiresImmediately(t *testing.T) {
	var calls int32
	trig, err := NewCronTrigger(CronSpec{Expr: "* * * * *"}, func(ctx context.Context, triggeredBy string) error {
		assert.Equal(t, "cron", triggeredBy)
		atomic.AddInt32(&calls, 1)
		return nil
	}, nil)
	require.NoError(t, err)

	require.NoError(t, trig.Start(context.Background()))
	defer trig.Shutdown()

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&calls) >= 1
	}, time.Second, 10*time.Millisecond)
}

func TestCronSpec_MutuallyExclusive(t *testing.T) {
	_, err := NewCronTrigger(CronSpec{Expr: "* * * * *", Fields: &CronFields{Minute: "*"}}, noop, nil)
	assert.Error(t, err)

	_, err = NewCronTrigger(CronSpec{}, noop, nil)
	assert.Error(t, err)
}

func TestCronTrigger_NextFiringHonorsFields(t *testing.T) {
	trig, err := NewCronTrigger(CronSpec{Fields: &CronFields{Minute: "0", Hour: "3"}}, noop, nil)
	require.NoError(t, err)

	from := time.Date(2026, 7, 30, 10, 0, 0, 0, time.UTC)
	next := trig.expr.Next(from)
	assert.False(t, next.IsZero())
	assert.Equal(t, 3, next.Hour())
	assert.Equal(t, 0, next.Minute())
}
