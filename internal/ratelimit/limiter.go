// Package ratelimit throttles outbound API calls with a sliding-window limiter
// shared by concurrent workers.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Image generation quota used when the caller does not configure one.
const (
	DefaultWindow          = 60 * time.Second
	DefaultImagesPerMinute = 7
)

// Limiter admits at most limit callers in any trailing window. The admission
// decision is made under the mutex; waiting happens outside it.
type Limiter struct {
	limit  int
	window time.Duration
	now    func() time.Time
	sleep  func(context.Context, time.Duration) error

	mu     sync.Mutex
	stamps []time.Time
}

// Option customises a Limiter.
type Option func(*Limiter)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		if now != nil {
			l.now = now
		}
	}
}

// WithSleeper overrides how the limiter waits for the window to open.
func WithSleeper(sleep func(context.Context, time.Duration) error) Option {
	return func(l *Limiter) {
		if sleep != nil {
			l.sleep = sleep
		}
	}
}

// New constructs a limiter. Non-positive arguments fall back to the defaults.
func New(limit int, window time.Duration, opts ...Option) *Limiter {
	if limit <= 0 {
		limit = DefaultImagesPerMinute
	}
	if window <= 0 {
		window = DefaultWindow
	}
	l := &Limiter{
		limit:  limit,
		window: window,
		now:    time.Now,
		sleep:  SleepWithContext,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Wait blocks until the caller may proceed and records the admission. It
// returns the context error if ctx ends while waiting.
func (l *Limiter) Wait(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		wait, admitted := l.reserve()
		if admitted {
			return nil
		}
		if err := l.sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// reserve prunes expired stamps and either records an admission or reports
// how long until the oldest stamp leaves the window.
func (l *Limiter) reserve() (time.Duration, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)
	keep := 0
	for keep < len(l.stamps) && !l.stamps[keep].After(cutoff) {
		keep++
	}
	l.stamps = l.stamps[keep:]

	if len(l.stamps) < l.limit {
		l.stamps = append(l.stamps, now)
		return 0, true
	}
	wait := l.stamps[0].Add(l.window).Sub(now)
	if wait <= 0 {
		wait = time.Millisecond
	}
	return wait, false
}

// InFlight returns the number of admissions inside the current window.
func (l *Limiter) InFlight() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	cutoff := l.now().Add(-l.window)
	count := 0
	for _, stamp := range l.stamps {
		if stamp.After(cutoff) {
			count++
		}
	}
	return count
}

// SleepWithContext blocks for the given duration, returning early if the
// context is cancelled.
func SleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
