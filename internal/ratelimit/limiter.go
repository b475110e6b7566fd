// Package ratelimit enforces a sliding-window cap on calls to the
// translation oracle. One limiter instance is constructed per pipeline run
// and shared by every caller in that run; it is never a package global, so
// concurrent runs and tests cannot interfere with each other.
package ratelimit

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Limiter allows at most maxCalls acquisitions within any trailing window.
type Limiter struct {
	mu         sync.Mutex
	maxCalls   int
	window     time.Duration
	timestamps []time.Time

	// now and sleep are swappable for tests.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// Option customizes a Limiter.
type Option func(*Limiter)

// WithClock overrides the time source and sleeper (for tests).
func WithClock(now func() time.Time, sleep func(context.Context, time.Duration) error) Option {
	return func(l *Limiter) {
		if now != nil {
			l.now = now
		}
		if sleep != nil {
			l.sleep = sleep
		}
	}
}

// New constructs a Limiter permitting maxCalls per window.
func New(maxCalls int, window time.Duration, opts ...Option) (*Limiter, error) {
	if maxCalls < 1 {
		return nil, errors.New("ratelimit: maxCalls must be at least 1")
	}
	if window <= 0 {
		return nil, errors.New("ratelimit: window must be positive")
	}
	limiter := &Limiter{
		maxCalls: maxCalls,
		window:   window,
		now:      time.Now,
		sleep:    SleepWithContext,
	}
	for _, opt := range opts {
		opt(limiter)
	}
	return limiter, nil
}

// Acquire blocks until fewer than maxCalls acquisitions were recorded in the
// trailing window, then records one. It returns early with the context error
// if ctx is cancelled while waiting. Safe for concurrent callers.
func (l *Limiter) Acquire(ctx context.Context) error {
	for {
		wait, ok := l.tryAcquire()
		if ok {
			return nil
		}
		if err := l.sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// tryAcquire prunes expired timestamps and either records a new call or
// reports how long until the oldest recorded call leaves the window.
func (l *Limiter) tryAcquire() (time.Duration, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)
	kept := l.timestamps[:0]
	for _, ts := range l.timestamps {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	l.timestamps = kept

	if len(l.timestamps) < l.maxCalls {
		l.timestamps = append(l.timestamps, now)
		return 0, true
	}

	wait := l.timestamps[0].Sub(cutoff)
	if wait <= 0 {
		wait = time.Millisecond
	}
	return wait, false
}

// Recorded returns the number of unexpired call timestamps. Intended for
// logging and tests.
func (l *Limiter) Recorded() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	cutoff := now.Add(-l.window)
	count := 0
	for _, ts := range l.timestamps {
		if ts.After(cutoff) {
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
