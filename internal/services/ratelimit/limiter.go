// -----------------------------------------------------------------------
// Keyed rate limiter - an explicitly constructed, injected component with
// its own keyed store and expiry sweep
// -----------------------------------------------------------------------

package ratelimit

import (
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/formforge/internal/common"
	"golang.org/x/time/rate"
)

// entry pairs a token bucket with its last-touched time for expiry.
type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter enforces a per-key request rate. Keys are typically client IPs.
// Idle entries expire after the configured TTL and are reclaimed by Sweep.
type Limiter struct {
	mu      sync.Mutex
	entries map[string]*entry
	rps     rate.Limit
	burst   int
	ttl     time.Duration
	logger  arbor.ILogger
	now     func() time.Time
}

// NewLimiter creates a keyed limiter from configuration. A malformed TTL
// falls back to ten minutes.
func NewLimiter(config *common.RateLimitConfig, logger arbor.ILogger) *Limiter {
	ttl, err := time.ParseDuration(config.EntryTTL)
	if err != nil || ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Limiter{
		entries: make(map[string]*entry),
		rps:     rate.Limit(config.RequestsPerSecond),
		burst:   config.Burst,
		ttl:     ttl,
		logger:  logger,
		now:     time.Now,
	}
}

// Allow reports whether the request identified by key may proceed.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, found := l.entries[key]
	if !found {
		e = &entry{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.entries[key] = e
	}
	e.lastSeen = l.now()

	return e.limiter.Allow()
}

// Sweep removes entries idle for longer than the TTL. Intended to run on a
// schedule; safe to call concurrently with Allow.
func (l *Limiter) Sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.ttl)
	removed := 0
	for key, e := range l.entries {
		if e.lastSeen.Before(cutoff) {
			delete(l.entries, key)
			removed++
		}
	}

	if removed > 0 {
		l.logger.Debug().Int("removed", removed).Int("remaining", len(l.entries)).Msg("Rate limiter sweep completed")
	}
}

// Size returns the number of tracked keys.
func (l *Limiter) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
