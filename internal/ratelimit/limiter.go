package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// Request classes. Trading calls and queries draw from separate buckets so a
// burst of book polling cannot starve order placement.
const (
	ClassTrade = "trade"
	ClassQuery = "query"
)

// Limiter combines a global token bucket with per-class buckets.
// A call passes only when both the global bucket and its class bucket grant a token.
type Limiter struct {
	global *rate.Limiter

	mu       sync.RWMutex
	buckets  map[string]*rate.Limiter
	fallback rate.Limit
	burst    int

	waits  atomic.Int64
	denied atomic.Int64
}

// New creates a Limiter allowing requests per period globally. Classes without
// an explicit limit inherit the same rate.
func New(requests int, period time.Duration) *Limiter {
	limit := perSecond(requests, period)
	return &Limiter{
		global:   rate.NewLimiter(limit, requests),
		buckets:  make(map[string]*rate.Limiter),
		fallback: limit,
		burst:    requests,
	}
}

func perSecond(requests int, period time.Duration) rate.Limit {
	if requests <= 0 || period <= 0 {
		return rate.Inf
	}
	return rate.Limit(float64(requests) / period.Seconds())
}

// SetBucket configures a class bucket. rps <= 0 leaves the class unlimited.
func (l *Limiter) SetBucket(class string, rps, burst int) {
	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
	}
	if burst <= 0 {
		burst = max(rps, 1)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if b, ok := l.buckets[class]; ok {
		b.SetLimit(limit)
		b.SetBurst(burst)
		return
	}
	l.buckets[class] = rate.NewLimiter(limit, burst)
}

func (l *Limiter) bucket(class string) *rate.Limiter {
	l.mu.RLock()
	b, ok := l.buckets[class]
	l.mu.RUnlock()
	if ok {
		return b
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if b, ok := l.buckets[class]; ok {
		return b
	}
	b = rate.NewLimiter(l.fallback, l.burst)
	l.buckets[class] = b
	return b
}

// Wait blocks until class may send a request or ctx is done.
func (l *Limiter) Wait(ctx context.Context, class string) error {
	l.waits.Add(1)
	if err := l.global.Wait(ctx); err != nil {
		l.denied.Add(1)
		return fmt.Errorf("global rate limit: %w", err)
	}
	if err := l.bucket(class).Wait(ctx); err != nil {
		l.denied.Add(1)
		return fmt.Errorf("%s rate limit: %w", class, err)
	}
	return nil
}

// Allow reports whether class may send a request right now, consuming a token if so.
func (l *Limiter) Allow(class string) bool {
	now := time.Now()
	if !l.global.AllowN(now, 1) {
		l.denied.Add(1)
		return false
	}
	if !l.bucket(class).AllowN(now, 1) {
		l.denied.Add(1)
		return false
	}
	return true
}

// Stats is a point-in-time capture of limiter usage.
type Stats struct {
	Waits   int64
	Denied  int64
	Buckets int
}

// Stats returns the current usage counters.
func (l *Limiter) Stats() Stats {
	l.mu.RLock()
	n := len(l.buckets)
	l.mu.RUnlock()
	return Stats{
		Waits:   l.waits.Load(),
		Denied:  l.denied.Load(),
		Buckets: n,
	}
}
