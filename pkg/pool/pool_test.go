package pool

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunAttemptsEveryUnitExactlyOnce(t *testing.T) {
	units := make([]int, 500)
	for i := range units {
		units[i] = i
	}

	calls := make([]int32, len(units))
	var inFlight, peak int32

	outcomes, summary := Run(context.Background(), units, 100,
		func(ctx context.Context, unit int) (int, error) {
			current := atomic.AddInt32(&inFlight, 1)
			defer atomic.AddInt32(&inFlight, -1)
			for {
				observed := atomic.LoadInt32(&peak)
				if current <= observed || atomic.CompareAndSwapInt32(&peak, observed, current) {
					break
				}
			}
			atomic.AddInt32(&calls[unit], 1)
			return unit * 2, nil
		})

	require.Len(t, outcomes, 500)
	assert.Equal(t, 500, summary.Attempted)
	assert.Equal(t, 500, summary.Succeeded)
	assert.Equal(t, 0, summary.Failed)
	assert.NotEmpty(t, summary.RunID)
	assert.LessOrEqual(t, peak, int32(100))

	for i, count := range calls {
		assert.Equal(t, int32(1), count, "unit %d", i)
	}
	for _, o := range outcomes {
		assert.Equal(t, o.Input*2, o.Result)
		assert.NoError(t, o.Err)
	}
}

func TestRunIsolatesFailures(t *testing.T) {
	units := make([]int, 100)
	for i := range units {
		units[i] = i
	}

	errOdd := errors.New("odd unit")
	outcomes, summary := Run(context.Background(), units, 10,
		func(ctx context.Context, unit int) (int, error) {
			if unit%2 == 1 {
				return 0, errOdd
			}
			return unit, nil
		})

	assert.Equal(t, 100, summary.Attempted)
	assert.Equal(t, 50, summary.Succeeded)
	assert.Equal(t, 50, summary.Failed)

	assert.Len(t, Successes(outcomes), 50)
	failures := Failures(outcomes)
	require.Len(t, failures, 50)
	for _, f := range failures {
		assert.ErrorIs(t, f.Err, errOdd)
		assert.Equal(t, 1, f.Input%2)
	}
}

func TestRunStopsSchedulingOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	units := []int{1, 2, 3}
	outcomes, summary := Run(ctx, units, 1,
		func(ctx context.Context, unit int) (int, error) {
			return unit, nil
		})

	assert.Empty(t, outcomes)
	assert.Equal(t, 0, summary.Attempted)
}

func TestRunDefaultsThrottleLimit(t *testing.T) {
	outcomes, summary := Run(context.Background(), []string{"a", "b"}, 0,
		func(ctx context.Context, unit string) (string, error) {
			return unit, nil
		})

	require.Len(t, outcomes, 2)
	assert.Equal(t, 2, summary.Succeeded)
}

func TestRunEmptyInput(t *testing.T) {
	outcomes, summary := Run(context.Background(), nil, 10,
		func(ctx context.Context, unit int) (int, error) {
			return unit, nil
		})

	assert.Empty(t, outcomes)
	assert.Equal(t, 0, summary.Attempted)
	assert.NotEmpty(t, summary.RunID)
}
