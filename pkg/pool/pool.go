// Package pool runs independent units of work with a bounded concurrency
// limit. Each unit reports its own outcome; one failed unit never aborts
// the batch. Enumeration modules use it to fan out DNS and HTTP probes.
package pool

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

// DefaultThrottleLimit bounds in-flight units when the caller does not set
// a limit.
const DefaultThrottleLimit = 100

// Worker processes a single unit of work.
type Worker[T, R any] func(ctx context.Context, unit T) (R, error)

// Outcome records the result of one unit, success or failure.
type Outcome[T, R any] struct {
	Input    T
	Result   R
	Err      error
	Duration time.Duration
}

// Summary aggregates a batch run for the operator-facing report.
type Summary struct {
	RunID     string        `json:"runId"`
	Attempted int           `json:"attempted"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Elapsed   time.Duration `json:"elapsedNs"`
}

// Run fans units out across at most limit concurrent workers and collects
// every outcome. Context cancellation stops scheduling new units; units
// already in flight finish and are counted.
func Run[T, R any](ctx context.Context, units []T, limit int, fn Worker[T, R]) ([]Outcome[T, R], Summary) {
	if limit <= 0 {
		limit = DefaultThrottleLimit
	}

	start := time.Now()
	sem := semaphore.NewWeighted(int64(limit))
	outcomes := make([]Outcome[T, R], len(units))

	var wg sync.WaitGroup
	scheduled := 0

	for i, unit := range units {
		if err := sem.Acquire(ctx, 1); err != nil {
			// Context cancelled; remaining units are not attempted.
			break
		}
		scheduled++

		wg.Add(1)
		go func(i int, unit T) {
			defer wg.Done()
			defer sem.Release(1)

			unitStart := time.Now()
			result, err := fn(ctx, unit)
			outcomes[i] = Outcome[T, R]{
				Input:    unit,
				Result:   result,
				Err:      err,
				Duration: time.Since(unitStart),
			}
		}(i, unit)
	}

	wg.Wait()
	outcomes = outcomes[:scheduled]

	summary := Summary{
		RunID:     uuid.NewString(),
		Attempted: scheduled,
		Elapsed:   time.Since(start),
	}
	for _, o := range outcomes {
		if o.Err != nil {
			summary.Failed++
		} else {
			summary.Succeeded++
		}
	}

	return outcomes, summary
}

// Successes extracts the results of units that completed without error.
func Successes[T, R any](outcomes []Outcome[T, R]) []R {
	results := make([]R, 0, len(outcomes))
	for _, o := range outcomes {
		if o.Err == nil {
			results = append(results, o.Result)
		}
	}
	return results
}

// Failures extracts the outcomes of units that reported an error.
func Failures[T, R any](outcomes []Outcome[T, R]) []Outcome[T, R] {
	failed := make([]Outcome[T, R], 0)
	for _, o := range outcomes {
		if o.Err != nil {
			failed = append(failed, o)
		}
	}
	return failed
}
