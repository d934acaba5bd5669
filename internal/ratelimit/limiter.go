package ratelimit

import (
	"context"
	"net/url"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter rate-limits outbound requests per host with a token bucket each.
// Hosts without an explicit limit use the default rps and burst.
type Limiter struct {
	mu       sync.RWMutex
	limiters map[string]*rate.Limiter
	rps      float64
	burst    int
}

// New creates a limiter whose default bucket allows rps requests per second with the given burst.
func New(rps float64, burst int) *Limiter {
	return &Limiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rps,
		burst:    burst,
	}
}

func (l *Limiter) get(host string) *rate.Limiter {
	l.mu.RLock()
	lim, ok := l.limiters[host]
	l.mu.RUnlock()
	if ok {
		return lim
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if lim, ok := l.limiters[host]; ok {
		return lim
	}
	lim = rate.NewLimiter(rate.Limit(l.rps), l.burst)
	l.limiters[host] = lim
	return lim
}

// SetLimit overrides the bucket for one host.
func (l *Limiter) SetLimit(host string, rps float64, burst int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if lim, ok := l.limiters[host]; ok {
		lim.SetLimit(rate.Limit(rps))
		lim.SetBurst(burst)
		return
	}
	l.limiters[host] = rate.NewLimiter(rate.Limit(rps), burst)
}

// Allow reports whether a request to host may proceed now, consuming a token if so.
func (l *Limiter) Allow(host string) bool {
	return l.get(host).Allow()
}

// Wait blocks until a request to host may proceed or ctx is done.
func (l *Limiter) Wait(ctx context.Context, host string) error {
	return l.get(host).Wait(ctx)
}

// HostOf returns the host part of baseURL, the key used for per-host buckets.
// Values that do not parse as a URL with a host are returned unchanged.
func HostOf(baseURL string) string {
	if u, err := url.Parse(baseURL); err == nil && u.Host != "" {
		return u.Host
	}
	return baseURL
}
