// internal/ratelimit/limiter.go

// Package ratelimit throttles outbound asset fetches per origin host using
// token buckets, so inlining a media-heavy component does not hammer a CDN.
package ratelimit

import (
	"context"
	"net/url"
	"sync"

	"golang.org/x/time/rate"
)

// DomainLimiter keeps one token bucket per host.
type DomainLimiter struct {
	mu       sync.RWMutex
	limiters map[string]*rate.Limiter
	perHost  rate.Limit
	burst    int
}

// NewDomainLimiter creates a limiter allowing requestsPerSecond per host with
// the given burst capacity.
func NewDomainLimiter(requestsPerSecond float64, burst int) *DomainLimiter {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 10.0
	}
	if burst <= 0 {
		burst = 5
	}
	return &DomainLimiter{
		limiters: make(map[string]*rate.Limiter),
		perHost:  rate.Limit(requestsPerSecond),
		burst:    burst,
	}
}

// Wait blocks until a request to urlStr may proceed. Unparseable URLs pass
// through; they fail at fetch time with a better error.
func (dl *DomainLimiter) Wait(ctx context.Context, urlStr string) error {
	host := hostOf(urlStr)
	if host == "" {
		return nil
	}
	return dl.limiter(host).Wait(ctx)
}

// Allow reports whether a request to urlStr may proceed without blocking.
func (dl *DomainLimiter) Allow(urlStr string) bool {
	host := hostOf(urlStr)
	if host == "" {
		return true
	}
	return dl.limiter(host).Allow()
}

func (dl *DomainLimiter) limiter(host string) *rate.Limiter {
	dl.mu.RLock()
	l, ok := dl.limiters[host]
	dl.mu.RUnlock()
	if ok {
		return l
	}

	dl.mu.Lock()
	defer dl.mu.Unlock()
	if l, ok := dl.limiters[host]; ok {
		return l
	}
	l = rate.NewLimiter(dl.perHost, dl.burst)
	dl.limiters[host] = l
	return l
}

func hostOf(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil {
		return ""
	}
	return u.Host
}
