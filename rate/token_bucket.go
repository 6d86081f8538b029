package rate

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// TokenBucket admits up to Capacity events per second.
//
// Tokens refill continuously at Capacity per second and never exceed
// Capacity. Each admitted event consumes one token.
//
// The bucket starts full. The first timestamp passed to Admit becomes the
// refill reference, so the first call can never refill past Capacity no
// matter how far it is from the zero time. A rejected call leaves the refill
// reference untouched, so accrued refill is never lost.
//
// Timestamps may arrive out of order when several goroutines append at
// once. A timestamp older than the latest one seen is treated as the latest:
// it refills nothing and never moves the refill reference backwards, so the
// same elapsed time is never credited twice.
type TokenBucket struct {
	capacity int
	bucket   *rate.Limiter

	mu     sync.Mutex
	latest time.Time
}

var _ Limiter = &TokenBucket{}

// NewTokenBucket returns a Limiter admitting capacity events per second.
// capacity <= 0 disables limiting and returns a NoopLimiter.
func NewTokenBucket(capacity int) Limiter {
	if capacity <= 0 {
		return &NoopLimiter{}
	}
	return &TokenBucket{
		capacity: capacity,
		bucket:   rate.NewLimiter(rate.Limit(capacity), capacity),
	}
}

// Capacity returns the number of events admitted per second.
func (b *TokenBucket) Capacity() int {
	return b.capacity
}

// Admit refills the bucket up to now and consumes one token if available.
// Refill and consume happen under the bucket's lock as a single step.
func (b *TokenBucket) Admit(now time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bucket.AllowN(b.observe(now), 1)
}

// Tokens returns the number of tokens available at now without consuming any.
func (b *TokenBucket) Tokens(now time.Time) float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bucket.TokensAt(b.observe(now))
}

// observe returns max(now, latest) and records it. b.mu must be held.
func (b *TokenBucket) observe(now time.Time) time.Time {
	if now.Before(b.latest) {
		return b.latest
	}
	b.latest = now
	return now
}
