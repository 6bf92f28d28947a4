package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const limiterErrorBody = `{"title":"Too Many Requests","status":429,"detail":"rate limit exceeded"}`

// limiterTable holds one token bucket per key and evicts buckets that have
// been idle for 30 minutes. The cleanup goroutine stops with ctx.
type limiterTable[K comparable] struct {
	mu       sync.Mutex
	buckets  map[K]*rate.Limiter
	lastSeen map[K]time.Time
	rps      rate.Limit
	burst    int
}

func newLimiterTable[K comparable](ctx context.Context, requestsPerSecond float64, burst int) *limiterTable[K] {
	t := &limiterTable[K]{
		buckets:  make(map[K]*rate.Limiter),
		lastSeen: make(map[K]time.Time),
		rps:      rate.Limit(requestsPerSecond),
		burst:    burst,
	}
	go t.cleanup(ctx)
	return t
}

func (t *limiterTable[K]) allow(key K) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	lim, ok := t.buckets[key]
	if !ok {
		lim = rate.NewLimiter(t.rps, t.burst)
		t.buckets[key] = lim
	}
	t.lastSeen[key] = time.Now()
	return lim.Allow()
}

func (t *limiterTable[K]) cleanup(ctx context.Context) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			cutoff := time.Now().Add(-30 * time.Minute)
			t.mu.Lock()
			for key, seen := range t.lastSeen {
				if seen.Before(cutoff) {
					delete(t.buckets, key)
					delete(t.lastSeen, key)
				}
			}
			t.mu.Unlock()
		case <-ctx.Done():
			return
		}
	}
}

// RateLimitByIP applies per-IP rate limiting for unauthenticated endpoints
// (e.g. auth routes). Relies on chi's RealIP middleware having rewritten
// r.RemoteAddr.
func RateLimitByIP(ctx context.Context, requestsPerSecond float64, burst int) func(http.Handler) http.Handler {
	table := newLimiterTable[string](ctx, requestsPerSecond, burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !table.allow(r.RemoteAddr) {
				http.Error(w, limiterErrorBody, http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RateLimit applies per-user rate limiting. Requests without a user in
// context pass through untouched; the unauthenticated surface has its own
// per-IP limiter.
func RateLimit(ctx context.Context, requestsPerSecond float64, burst int) func(http.Handler) http.Handler {
	table := newLimiterTable[uuid.UUID](ctx, requestsPerSecond, burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := UserIDFromContext(r.Context())
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			if !table.allow(userID) {
				http.Error(w, limiterErrorBody, http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
