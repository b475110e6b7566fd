package ratelimit

import (
	"context"
	"math/rand"
	"sort"
	"sync"
	"testing"
	"time"
)

// fakeClock drives the limiter deterministically: sleeping advances time.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
	return nil
}

func newTestLimiter(t *testing.T, calls int, window time.Duration) (*Limiter, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Unix(1000, 0)}
	limiter, err := New(calls, window, WithClock(clock.Now, clock.Sleep))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return limiter, clock
}

func TestAcquireUnderLimitDoesNotBlock(t *testing.T) {
	limiter, clock := newTestLimiter(t, 3, time.Minute)
	start := clock.Now()
	for i := 0; i < 3; i++ {
		if err := limiter.Acquire(t.Context()); err != nil {
			t.Fatalf("Acquire %d: %v", i, err)
		}
	}
	if !clock.Now().Equal(start) {
		t.Fatal("acquisitions under the limit should not sleep")
	}
	if got := limiter.Recorded(); got != 3 {
		t.Fatalf("recorded = %d, want 3", got)
	}
}

func TestAcquireBlocksUntilWindowExpires(t *testing.T) {
	limiter, clock := newTestLimiter(t, 2, time.Minute)
	start := clock.Now()
	for i := 0; i < 2; i++ {
		if err := limiter.Acquire(t.Context()); err != nil {
			t.Fatal(err)
		}
	}
	if err := limiter.Acquire(t.Context()); err != nil {
		t.Fatal(err)
	}
	if elapsed := clock.Now().Sub(start); elapsed < time.Minute {
		t.Fatalf("third acquire waited only %v, want >= 1m", elapsed)
	}
}

func TestAcquireRespectsCancellation(t *testing.T) {
	limiter, _ := newTestLimiter(t, 1, time.Minute)
	if err := limiter.Acquire(t.Context()); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	if err := limiter.Acquire(ctx); err == nil {
		t.Fatal("expected context error while waiting")
	}
}

func TestWindowNeverExceededUnderRandomTiming(t *testing.T) {
	const (
		maxCalls = 10
		total    = 120
	)
	window := time.Minute
	limiter, clock := newTestLimiter(t, maxCalls, window)
	rng := rand.New(rand.NewSource(42))

	var acquired []time.Time
	for i := 0; i < total; i++ {
		// Random jitter between acquisition requests.
		_ = clock.Sleep(t.Context(), time.Duration(rng.Intn(7000))*time.Millisecond)
		if err := limiter.Acquire(t.Context()); err != nil {
			t.Fatal(err)
		}
		acquired = append(acquired, clock.Now())
	}

	sort.Slice(acquired, func(i, j int) bool { return acquired[i].Before(acquired[j]) })
	for i := range acquired {
		j := i
		for j < len(acquired) && acquired[j].Sub(acquired[i]) < window {
			j++
		}
		if j-i > maxCalls {
			t.Fatalf("%d acquisitions within one window starting at %v", j-i, acquired[i])
		}
	}
}

func TestConcurrentAcquire(t *testing.T) {
	limiter, err := New(50, 10*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := limiter.Acquire(context.Background()); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()
}

func TestNewValidation(t *testing.T) {
	if _, err := New(0, time.Minute); err == nil {
		t.Fatal("expected error for zero calls")
	}
	if _, err := New(1, 0); err == nil {
		t.Fatal("expected error for zero window")
	}
}
