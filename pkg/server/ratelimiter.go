package server

import (
	"sync"
	"time"
)

const rateWindow = time.Minute

// RateLimiter implements per-IP rate limiting with a sliding window
type RateLimiter struct {
	limits          map[string][]time.Time
	maxPerWindow    int
	mu              sync.Mutex
	cleanupInterval time.Duration
	stopCleanup     chan struct{}
	stopOnce        sync.Once
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(maxRequestsPerMinute int) *RateLimiter {
	rl := &RateLimiter{
		limits:          make(map[string][]time.Time),
		maxPerWindow:    maxRequestsPerMinute,
		cleanupInterval: 5 * time.Minute,
		stopCleanup:     make(chan struct{}),
	}

	go rl.runCleanup()

	return rl
}

// CheckLimit reports whether a request from the given IP is allowed
// and records it if so.
func (rl *RateLimiter) CheckLimit(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	recent := pruneOlderThan(rl.limits[ip], now.Add(-rateWindow))

	if len(recent) >= rl.maxPerWindow {
		rl.limits[ip] = recent
		return false
	}

	rl.limits[ip] = append(recent, now)
	return true
}

// GetRetryAfter returns the number of seconds until the oldest
// recorded request leaves the window.
func (rl *RateLimiter) GetRetryAfter(ip string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	requests := rl.limits[ip]
	if len(requests) == 0 {
		return 0
	}

	remaining := rateWindow - time.Since(requests[0])
	if remaining < 0 {
		return 0
	}

	// round up to whole seconds
	return int((remaining + time.Second - 1) / time.Second)
}

// Stop stops the cleanup goroutine
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() {
		close(rl.stopCleanup)
	})
}

// runCleanup periodically drops IPs with no recent requests
func (rl *RateLimiter) runCleanup() {
	ticker := time.NewTicker(rl.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCleanup:
			return
		}
	}
}

func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-rateWindow)
	for ip, requests := range rl.limits {
		recent := pruneOlderThan(requests, cutoff)
		if len(recent) == 0 {
			delete(rl.limits, ip)
		} else {
			rl.limits[ip] = recent
		}
	}
}

func pruneOlderThan(requests []time.Time, cutoff time.Time) []time.Time {
	recent := requests[:0]
	for _, t := range requests {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}
	return recent
}
