package utils

import (
	"runtime"
	"testing"
	"time"
)

// LeakOption configures VerifyNoGoroutineLeaks
type LeakOption func(*leakCheck)

type leakCheck struct {
	allowedGrowth int
	grace         time.Duration
	poll          time.Duration
}

// WithAllowedGrowth tolerates n goroutines beyond the baseline
func WithAllowedGrowth(n int) LeakOption {
	return func(c *leakCheck) { c.allowedGrowth = n }
}

// WithGracePeriod sets how long goroutines get to finish after the test
func WithGracePeriod(d time.Duration) LeakOption {
	return func(c *leakCheck) { c.grace = d }
}

// VerifyNoGoroutineLeaks records the current goroutine count and, when t
// finishes, fails it if the count has not returned to that baseline within
// the grace period. Call it first so it runs after every other cleanup.
func VerifyNoGoroutineLeaks(t testing.TB, opts ...LeakOption) {
	t.Helper()
	c := &leakCheck{grace: 2 * time.Second, poll: 10 * time.Millisecond}
	for _, opt := range opts {
		opt(c)
	}

	baseline := runtime.NumGoroutine()
	t.Cleanup(func() {
		if leaked := c.wait(baseline); leaked > 0 {
			buf := make([]byte, 1<<20)
			n := runtime.Stack(buf, true)
			t.Errorf("goroutine leak: %d goroutines above baseline %d (allowed %d)\n%s",
				leaked, baseline, c.allowedGrowth, buf[:n])
		}
	})
}

// wait polls until the goroutine count is within bounds and returns the
// excess that remains when the grace period expires
func (c *leakCheck) wait(baseline int) int {
	deadline := time.Now().Add(c.grace)
	for {
		excess := runtime.NumGoroutine() - baseline - c.allowedGrowth
		if excess <= 0 || time.Now().After(deadline) {
			return max(excess, 0)
		}
		time.Sleep(c.poll)
	}
}
