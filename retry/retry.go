// Package retry runs an operation under a bounded exponential-backoff
// budget, with an optional per-failure fallback. The result is a tri-state
// outcome so callers decide what exhaustion means instead of catching a
// suppressed error.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Status classifies how a Run ended.
type Status int

const (
	// Succeeded means the operation itself completed.
	Succeeded Status = iota
	// Recovered means the operation failed but the fallback healed it.
	Recovered
	// Exhausted means the retry budget ran out without success.
	Exhausted
)

// Outcome is the result of a Run. Err carries the last attempt's error when
// Status is Exhausted.
type Outcome struct {
	Status Status
	Err    error
}

// OK reports whether the run ended with a usable result.
func (o Outcome) OK() bool {
	return o.Status != Exhausted
}

// Policy bounds a retry loop: at most Attempts tries, waiting an exponential
// backoff between MinWait and MaxWait (growing by Multiplier) that stops
// once TotalBudget has elapsed.
type Policy struct {
	Attempts    int
	MinWait     time.Duration
	MaxWait     time.Duration
	TotalBudget time.Duration
	Multiplier  float64
}

// DefaultPolicy returns the commit-retry defaults: 5 attempts, 100ms initial
// wait, 60s max wait, 30 minute total budget, factor 2.0.
func DefaultPolicy() Policy {
	return Policy{
		Attempts:    5,
		MinWait:     100 * time.Millisecond,
		MaxWait:     60 * time.Second,
		TotalBudget: 30 * time.Minute,
		Multiplier:  2.0,
	}
}

// Run executes op up to p.Attempts times. After each failed attempt the
// onFailure fallback (when non-nil) gets a chance to recover; if it reports
// success the run ends with Recovered. Otherwise the loop backs off and
// retries. Context cancellation and budget exhaustion both end the run with
// Exhausted, carrying the last error seen.
func (p Policy) Run(ctx context.Context, op func(context.Context) error, onFailure func(context.Context, error) bool) Outcome {
	bo := backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(p.MinWait),
		backoff.WithMaxInterval(p.MaxWait),
		backoff.WithMaxElapsedTime(p.TotalBudget),
		backoff.WithMultiplier(p.Multiplier),
	)

	var lastErr error
	for attempt := 1; attempt <= p.Attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr == nil {
				lastErr = err
			}
			return Outcome{Status: Exhausted, Err: lastErr}
		}

		err := op(ctx)
		if err == nil {
			return Outcome{Status: Succeeded}
		}
		if onFailure != nil && onFailure(ctx, err) {
			return Outcome{Status: Recovered}
		}
		lastErr = err

		if attempt == p.Attempts {
			break
		}
		wait := bo.NextBackOff()
		if wait == backoff.Stop {
			break
		}
		if !sleep(ctx, wait) {
			return Outcome{Status: Exhausted, Err: lastErr}
		}
	}

	return Outcome{Status: Exhausted, Err: lastErr}
}

func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
