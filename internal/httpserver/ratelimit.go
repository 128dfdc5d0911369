package httpserver

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const limiterIdleTTL = 10 * time.Minute

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// clientLimiter hands out one token bucket per client key.
type clientLimiter struct {
	limit    rate.Limit
	burst    int
	mu       sync.Mutex
	visitors map[string]*limiterEntry
	clockNow func() time.Time
}

func newClientLimiter(limit rate.Limit, burst int) *clientLimiter {
	if limit <= 0 {
		limit = rate.Inf
	}
	if burst <= 0 {
		burst = 1
	}
	return &clientLimiter{
		limit:    limit,
		burst:    burst,
		visitors: make(map[string]*limiterEntry),
		clockNow: time.Now,
	}
}

func (l *clientLimiter) obtain(id string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.clockNow()
	for key, entry := range l.visitors {
		if now.Sub(entry.lastSeen) > limiterIdleTTL {
			delete(l.visitors, key)
		}
	}
	entry, ok := l.visitors[id]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[id] = entry
	}
	entry.lastSeen = now
	return entry.limiter
}

func (l *clientLimiter) Allow(id string) bool {
	return l.obtain(id).AllowN(l.clockNow(), 1)
}
