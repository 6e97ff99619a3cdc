package middleware

import (
	"fmt"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/error/code"
	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/error/response"
)

// TokenBucket is a simple per-key token bucket.
type TokenBucket struct {
	rate       float64
	capacity   int
	tokens     float64
	lastRefill time.Time
	mu         sync.Mutex
}

// NewTokenBucket creates a bucket that refills at rate tokens/second up to
// capacity.
func NewTokenBucket(rate float64, capacity int) *TokenBucket {
	return &TokenBucket{
		rate:       rate,
		capacity:   capacity,
		tokens:     float64(capacity),
		lastRefill: time.Now(),
	}
}

// Allow takes one token if available.
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(tb.lastRefill).Seconds()
	tb.lastRefill = now

	tb.tokens += elapsed * tb.rate
	if tb.tokens > float64(tb.capacity) {
		tb.tokens = float64(tb.capacity)
	}

	if tb.tokens >= 1 {
		tb.tokens--
		return true
	}
	return false
}

var (
	keyLimiters   = make(map[string]*TokenBucket)
	keyLimitersMu sync.RWMutex
)

func getLimiter(key string, rate float64, burst int) *TokenBucket {
	keyLimitersMu.RLock()
	limiter, exists := keyLimiters[key]
	keyLimitersMu.RUnlock()

	if !exists {
		limiter = NewTokenBucket(rate, burst)
		keyLimitersMu.Lock()
		keyLimiters[key] = limiter
		keyLimitersMu.Unlock()
	}
	return limiter
}

// IPRateLimiter limits each client IP to rate requests/second with the given
// burst. Used on the public auth endpoints to slow credential guessing.
// The bucket key carries the limiter parameters so route groups with
// different configs never share a bucket for the same IP.
func IPRateLimiter(rate float64, burst int) gin.HandlerFunc {
	suffix := fmt.Sprintf("|%g/%d", rate, burst)
	return func(c *gin.Context) {
		limiter := getLimiter(c.ClientIP()+suffix, rate, burst)
		if !limiter.Allow() {
			response.AbortFail(c, code.New(code.RateLimited))
			return
		}
		c.Next()
	}
}

func init() {
	// Buckets for idle IPs are dropped hourly; active clients just get a
	// fresh full bucket on their next request.
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		for range ticker.C {
			keyLimitersMu.Lock()
			keyLimiters = make(map[string]*TokenBucket)
			keyLimitersMu.Unlock()
		}
	}()
}
