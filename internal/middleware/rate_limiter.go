package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/digitalhubmedia1-spec/proiect-chianti-sub001/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ── Fixed-window rate limiter ─────────────────────────────────────────────────
// One counter per client IP. Each RateLimiter call owns its own table, so a
// strict limit on imports does not share budget with report reads.

const purgeEvery = 5 * time.Minute

type rateEntry struct {
	count     int
	windowEnd time.Time
}

type rateTable struct {
	mu        sync.Mutex
	entries   map[string]*rateEntry
	lastPurge time.Time
}

// allow counts one hit for key and reports whether it is within limit.
func (t *rateTable) allow(key string, limit int, window time.Duration, now time.Time) (bool, time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if now.Sub(t.lastPurge) >= purgeEvery {
		t.purge(now)
	}

	e, ok := t.entries[key]
	if !ok {
		e = &rateEntry{}
		t.entries[key] = e
	}
	if now.After(e.windowEnd) {
		e.count = 0
		e.windowEnd = now.Add(window)
	}
	e.count++
	return e.count <= limit, e.windowEnd
}

// must hold mu
func (t *rateTable) purge(now time.Time) {
	purged := 0
	for k, e := range t.entries {
		if now.After(e.windowEnd) {
			delete(t.entries, k)
			purged++
		}
	}
	t.lastPurge = now
	if purged > 0 {
		log.Debug().Int("purged", purged).Int("remaining", len(t.entries)).Msg("rate limiter table purged")
	}
}

// RateLimiter allows limit requests per window per client IP.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	table := &rateTable{entries: make(map[string]*rateEntry)}
	return func(c *gin.Context) {
		ok, resetAt := table.allow(c.ClientIP(), limit, window, time.Now())
		if !ok {
			c.Header("Retry-After", resetAt.UTC().Format(http.TimeFormat))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("too many requests, try again shortly").WithRequest(GetRequestID(c)))
			return
		}
		c.Next()
	}
}
