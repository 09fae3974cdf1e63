//go:build unit

package worker_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"event-ticketing/internal/infra/worker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeriodic_RunsUntilStopped(t *testing.T) {
	var calls atomic.Int32
	p := worker.NewPeriodic("sweeper", 5*time.Millisecond, func(context.Context) (int, error) {
		calls.Add(1)
		return 1, nil
	})

	require.NoError(t, p.Start(context.Background()))
	assert.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, p.Stop(ctx))

	settled := calls.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, settled, calls.Load(), "no passes after stop")
}

func TestPeriodic_FailedPassDoesNotStopTheLoop(t *testing.T) {
	var calls atomic.Int32
	p := worker.NewPeriodic("outbox", 5*time.Millisecond, func(context.Context) (int, error) {
		if calls.Add(1) == 1 {
			return 0, errors.New("broker down")
		}
		return 0, nil
	})

	require.NoError(t, p.Start(context.Background()))
	assert.Eventually(t, func() bool { return calls.Load() >= 2 }, time.Second, time.Millisecond)
	require.NoError(t, p.Stop(context.Background()))
}

func TestPeriodic_ZeroIntervalIsDisabled(t *testing.T) {
	called := false
	p := worker.NewPeriodic("off", 0, func(context.Context) (int, error) {
		called = true
		return 0, nil
	})

	require.NoError(t, p.Start(context.Background()))
	require.NoError(t, p.Stop(context.Background()))
	assert.False(t, called)
}

func TestPeriodic_RunOncePassesDeadline(t *testing.T) {
	var hadDeadline bool
	p := worker.NewPeriodic("once", time.Minute, func(ctx context.Context) (int, error) {
		_, hadDeadline = ctx.Deadline()
		return 0, nil
	})

	p.RunOnce(context.Background())

	assert.True(t, hadDeadline)
}
