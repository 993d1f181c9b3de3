package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-oauth-session/retry"
)

func fastPolicy(attempts int) retry.Policy {
	return retry.Policy{
		Attempts:    attempts,
		MinWait:     time.Millisecond,
		MaxWait:     5 * time.Millisecond,
		TotalBudget: time.Second,
		Multiplier:  2.0,
	}
}

func TestPolicyRun(t *testing.T) {
	ctx := context.Background()

	t.Run("immediate success", func(t *testing.T) {
		calls := 0
		outcome := fastPolicy(5).Run(ctx, func(context.Context) error {
			calls++
			return nil
		}, nil)
		require.Equal(t, retry.Succeeded, outcome.Status)
		require.True(t, outcome.OK())
		require.NoError(t, outcome.Err)
		require.Equal(t, 1, calls)
	})

	t.Run("success after failures", func(t *testing.T) {
		calls := 0
		outcome := fastPolicy(5).Run(ctx, func(context.Context) error {
			calls++
			if calls < 3 {
				return errors.New("transient")
			}
			return nil
		}, nil)
		require.Equal(t, retry.Succeeded, outcome.Status)
		require.Equal(t, 3, calls)
	})

	t.Run("fallback recovers", func(t *testing.T) {
		calls, fallbacks := 0, 0
		outcome := fastPolicy(5).Run(ctx,
			func(context.Context) error {
				calls++
				return errors.New("broken")
			},
			func(_ context.Context, err error) bool {
				fallbacks++
				return true
			})
		require.Equal(t, retry.Recovered, outcome.Status)
		require.True(t, outcome.OK())
		require.Equal(t, 1, calls)
		require.Equal(t, 1, fallbacks)
	})

	t.Run("exhaustion carries the last error", func(t *testing.T) {
		calls := 0
		lastErr := errors.New("attempt 5")
		outcome := fastPolicy(5).Run(ctx, func(context.Context) error {
			calls++
			if calls == 5 {
				return lastErr
			}
			return errors.New("earlier")
		}, nil)
		require.Equal(t, retry.Exhausted, outcome.Status)
		require.False(t, outcome.OK())
		require.Equal(t, 5, calls)
		require.ErrorIs(t, outcome.Err, lastErr)
	})

	t.Run("failing fallback does not stop retries", func(t *testing.T) {
		calls, fallbacks := 0, 0
		outcome := fastPolicy(3).Run(ctx,
			func(context.Context) error {
				calls++
				return errors.New("broken")
			},
			func(context.Context, error) bool {
				fallbacks++
				return false
			})
		require.Equal(t, retry.Exhausted, outcome.Status)
		require.Equal(t, 3, calls)
		require.Equal(t, 3, fallbacks)
	})

	t.Run("cancelled context ends the run", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		outcome := fastPolicy(5).Run(cancelled, func(context.Context) error {
			t.Fatal("op must not run with a cancelled context")
			return nil
		}, nil)
		require.Equal(t, retry.Exhausted, outcome.Status)
		require.ErrorIs(t, outcome.Err, context.Canceled)
	})
}

func TestDefaultPolicy(t *testing.T) {
	p := retry.DefaultPolicy()
	require.Equal(t, 5, p.Attempts)
	require.Equal(t, 100*time.Millisecond, p.MinWait)
	require.Equal(t, 60*time.Second, p.MaxWait)
	require.Equal(t, 30*time.Minute, p.TotalBudget)
	require.Equal(t, 2.0, p.Multiplier)
}
