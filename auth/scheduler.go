package auth

import (
	"context"
	"sync"
	"time"

	"github.com/jrsteele09/go-oauth-session/rest"
)

const (
	// maxRefreshWindowMillis caps how far ahead of expiry a refresh fires.
	maxRefreshWindowMillis = 300_000 // 5 minutes

	// minRefreshWaitMillis is the floor for the wait between refreshes, so
	// clock skew or an already-expired token cannot busy-loop the scheduler.
	minRefreshWaitMillis = 10
)

// RefreshWait returns how long to wait before refreshing a token that
// expires in expiresIn. The refresh fires up to 10% of the remaining
// lifetime early, capped at 5 minutes, and never less than 10ms out.
func RefreshWait(expiresIn time.Duration) time.Duration {
	expiresInMillis := expiresIn.Milliseconds()

	refreshWindowMillis := expiresInMillis / 10
	if refreshWindowMillis > maxRefreshWindowMillis {
		refreshWindowMillis = maxRefreshWindowMillis
	}

	waitMillis := expiresInMillis - refreshWindowMillis
	if waitMillis < minRefreshWaitMillis {
		waitMillis = minRefreshWaitMillis
	}

	return time.Duration(waitMillis) * time.Millisecond
}

// Scheduler owns the background refresh of scheduled sessions. One goroutine
// per session sleeps until shortly before the token expires, refreshes it,
// and reschedules itself from the new expiry, until the refresh reports that
// no further refresh is needed or the scheduler is closed.
//
// The scheduler is shared and caller-owned: create one per process (or per
// catalog client) and close it to stop all refresh loops.
type Scheduler struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewScheduler creates a running scheduler.
func NewScheduler() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{ctx: ctx, cancel: cancel}
}

// Close stops all refresh loops and waits for in-flight refreshes to finish.
func (s *Scheduler) Close() {
	s.cancel()
	s.wg.Wait()
}

// scheduleTokenRefresh starts the refresh loop for a session whose token
// expires at expiresAtMillis.
func (s *Scheduler) scheduleTokenRefresh(client rest.Client, session *Session, expiresAtMillis int64) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		session.refreshLoop(s.ctx, client, expiresAtMillis)
	}()
}

// refreshLoop is the self-renewing timer chain: sleep until the refresh
// window opens, refresh, recompute the next expiry from the refresh start
// time plus the interval the server suggested, repeat. The chain ends when
// Refresh reports no further refresh is needed or ctx is cancelled. Each
// wait is recomputed from the previous refresh's own timing, so slow
// refreshes do not accumulate drift.
func (s *Session) refreshLoop(ctx context.Context, client rest.Client, expiresAtMillis int64) {
	for {
		wait := RefreshWait(time.Duration(expiresAtMillis-s.nowMillis()) * time.Millisecond)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		refreshStartMillis := s.nowMillis()
		interval, ok := s.Refresh(ctx, client)
		if !ok {
			return
		}
		expiresAtMillis = refreshStartMillis + interval.Milliseconds()
	}
}
