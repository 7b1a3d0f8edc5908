package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/turtacn/patent-normalizer/pkg/errors"
	"github.com/turtacn/patent-normalizer/pkg/types/common"
)

// RateLimiter decides whether a request identified by key may proceed.
type RateLimiter interface {
	Allow(key string) (bool, RateLimitInfo)
}

// RateLimitInfo is the limiter state reported in X-RateLimit-* headers.
type RateLimitInfo struct {
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RateLimitConfig configures RateLimit.
type RateLimitConfig struct {
	// KeyFunc extracts the limiter key; the client IP when nil.
	KeyFunc   func(r *http.Request) string
	SkipPaths []string
}

// DefaultRateLimitConfig keys by client IP and never limits the probes.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		KeyFunc:   ClientIP,
		SkipPaths: []string{"/healthz", "/readyz", "/metrics"},
	}
}

// ClientIP returns the host part of RemoteAddr.  Behind chi's RealIP
// middleware that is the forwarded client address.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

type tokenBucket struct {
	mu         sync.Mutex
	tokens     float64
	lastRefill time.Time
}

// TokenBucketLimiter keeps one token bucket per key.  Idle buckets are
// evicted on Allow once cleanupInterval has elapsed since the last sweep.
type TokenBucketLimiter struct {
	rate            float64
	burst           int
	cleanupInterval time.Duration
	now             func() time.Time

	mu        sync.Mutex
	buckets   map[string]*tokenBucket
	lastSweep time.Time
}

// NewTokenBucketLimiter refills rate tokens per second up to burst.
func NewTokenBucketLimiter(rate float64, burst int, cleanupInterval time.Duration) *TokenBucketLimiter {
	if burst < 1 {
		burst = 1
	}
	return &TokenBucketLimiter{
		rate:            rate,
		burst:           burst,
		cleanupInterval: cleanupInterval,
		now:             time.Now,
		buckets:         make(map[string]*tokenBucket),
	}
}

// Allow takes one token from key's bucket if one is available.
func (l *TokenBucketLimiter) Allow(key string) (bool, RateLimitInfo) {
	now := l.now()

	l.mu.Lock()
	l.sweep(now)
	bucket, ok := l.buckets[key]
	if !ok {
		bucket = &tokenBucket{tokens: float64(l.burst), lastRefill: now}
		l.buckets[key] = bucket
	}
	l.mu.Unlock()

	bucket.mu.Lock()
	defer bucket.mu.Unlock()

	bucket.tokens += now.Sub(bucket.lastRefill).Seconds() * l.rate
	if bucket.tokens > float64(l.burst) {
		bucket.tokens = float64(l.burst)
	}
	bucket.lastRefill = now

	info := RateLimitInfo{Limit: l.burst, ResetAt: now.Add(l.untilNextToken(bucket.tokens))}
	if bucket.tokens < 1 {
		return false, info
	}
	bucket.tokens--
	info.Remaining = int(bucket.tokens)
	return true, info
}

func (l *TokenBucketLimiter) untilNextToken(tokens float64) time.Duration {
	if l.rate <= 0 {
		return time.Hour
	}
	missing := 1 - tokens
	if missing <= 0 {
		return 0
	}
	return time.Duration(missing / l.rate * float64(time.Second))
}

// sweep drops buckets that have refilled completely.  Caller holds l.mu.
func (l *TokenBucketLimiter) sweep(now time.Time) {
	if l.cleanupInterval <= 0 || now.Sub(l.lastSweep) < l.cleanupInterval {
		return
	}
	l.lastSweep = now
	for key, b := range l.buckets {
		b.mu.Lock()
		full := b.tokens+now.Sub(b.lastRefill).Seconds()*l.rate >= float64(l.burst)
		b.mu.Unlock()
		if full {
			delete(l.buckets, key)
		}
	}
}

// BucketCount reports the number of tracked keys.
func (l *TokenBucketLimiter) BucketCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// RateLimit rejects requests over the limiter's budget with 429 and the
// error envelope.  A nil limiter disables it.
func RateLimit(limiter RateLimiter, config RateLimitConfig) func(http.Handler) http.Handler {
	if limiter == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	skip := make(map[string]bool, len(config.SkipPaths))
	for _, p := range config.SkipPaths {
		skip[p] = true
	}
	keyFunc := config.KeyFunc
	if keyFunc == nil {
		keyFunc = ClientIP
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skip[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			allowed, info := limiter.Allow(keyFunc(r))
			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetAt.Unix(), 10))
			if allowed {
				next.ServeHTTP(w, r)
				return
			}

			retryAfter := int(time.Until(info.ResetAt).Seconds() + 0.999)
			if retryAfter < 1 {
				retryAfter = 1
			}
			h.Set("Retry-After", strconv.Itoa(retryAfter))
			h.Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(http.StatusTooManyRequests)

			code := errors.ErrCodeRateLimited
			resp := common.NewErrorResponse(code.String(), errors.DefaultMessageForCode(code), "")
			resp.RequestID = chimw.GetReqID(r.Context())
			_ = json.NewEncoder(w).Encode(resp)
		})
	}
}

//Personal.AI order the ending
