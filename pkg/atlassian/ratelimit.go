package atlassian

import (
	"context"
	"sync"
	"time"
)

// RateLimitConfig bounds outbound requests per site. A non-positive
// RequestsPerMinute disables limiting.
type RateLimitConfig struct {
	RequestsPerMinute int
	BurstSize         int
}

// RateLimiter keeps one token bucket per site. It is shared by every client
// built for that site.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*tokenBucket
	config  RateLimitConfig
	now     func() time.Time
}

type tokenBucket struct {
	tokens     float64
	lastRefill time.Time
}

// NewRateLimiter creates a limiter. BurstSize defaults to 10.
func NewRateLimiter(config RateLimitConfig) *RateLimiter {
	if config.BurstSize <= 0 {
		config.BurstSize = 10
	}
	return &RateLimiter{
		buckets: make(map[string]*tokenBucket),
		config:  config,
		now:     time.Now,
	}
}

func (l *RateLimiter) enabled() bool {
	return l != nil && l.config.RequestsPerMinute > 0
}

// take consumes a token for key, or reports how long until one is available
func (l *RateLimiter) take(key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	bucket, ok := l.buckets[key]
	if !ok {
		bucket = &tokenBucket{tokens: float64(l.config.BurstSize), lastRefill: now}
		l.buckets[key] = bucket
	}

	perSecond := float64(l.config.RequestsPerMinute) / 60.0
	bucket.tokens = min(bucket.tokens+now.Sub(bucket.lastRefill).Seconds()*perSecond, float64(l.config.BurstSize))
	bucket.lastRefill = now

	if bucket.tokens >= 1.0 {
		bucket.tokens--
		return true, 0
	}
	return false, time.Duration((1.0 - bucket.tokens) / perSecond * float64(time.Second))
}

// Allow consumes a token for key without waiting
func (l *RateLimiter) Allow(key string) bool {
	if !l.enabled() {
		return true
	}
	ok, _ := l.take(key)
	return ok
}

// Wait blocks until a token for key is available or ctx is done
func (l *RateLimiter) Wait(ctx context.Context, key string) error {
	if !l.enabled() {
		return nil
	}
	for {
		ok, delay := l.take(key)
		if ok {
			return nil
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Remaining returns the tokens left for key
func (l *RateLimiter) Remaining(key string) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	if bucket, ok := l.buckets[key]; ok {
		return bucket.tokens
	}
	return float64(l.config.BurstSize)
}

// Reset forgets the bucket of key
func (l *RateLimiter) Reset(key string) {
	l.mu.Lock()
	delete(l.buckets, key)
	l.mu.Unlock()
}
