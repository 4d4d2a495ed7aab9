package http

import (
	"sync"
	"time"
)

const (
	bucketIdleEviction = 1 * time.Hour
	cleanupInterval    = 30 * time.Minute
)

type callerBucket struct {
	tokens     int
	lastRefill time.Time
}

// RateLimiter is a per-caller token bucket. Buckets refill wholesale once
// per window; idle callers are evicted by a background sweep.
type RateLimiter struct {
	mu          sync.Mutex
	capacity    int
	refillDur   time.Duration
	callers     map[string]*callerBucket
	stopCleanup chan struct{}
}

func NewRateLimiter(capacity int, refillDur time.Duration) *RateLimiter {
	rl := &RateLimiter{
		capacity:    capacity,
		refillDur:   refillDur,
		callers:     make(map[string]*callerBucket),
		stopCleanup: make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

func (r *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.cleanup()
		case <-r.stopCleanup:
			return
		}
	}
}

func (r *RateLimiter) cleanup() {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for ip, bucket := range r.callers {
		if now.Sub(bucket.lastRefill) > bucketIdleEviction {
			delete(r.callers, ip)
		}
	}
}

func (r *RateLimiter) Stop() {
	close(r.stopCleanup)
}

func (r *RateLimiter) Allow(ip string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	bucket, exists := r.callers[ip]

	if !exists {
		r.callers[ip] = &callerBucket{
			tokens:     r.capacity - 1,
			lastRefill: now,
		}
		return true
	}

	if now.Sub(bucket.lastRefill) >= r.refillDur {
		bucket.tokens = r.capacity
		bucket.lastRefill = now
	}

	if bucket.tokens <= 0 {
		return false
	}

	bucket.tokens--
	return true
}
