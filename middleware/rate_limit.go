package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// IPRateLimiter keeps one token bucket per client IP. Buckets of clients idle
// for longer than the TTL are evicted by the cache janitor.
type IPRateLimiter struct {
	mu       sync.Mutex
	visitors *cache.Cache
	limit    rate.Limit
	burst    int
}

// NewIPRateLimiter allows reqPerMin requests per minute per IP with the given burst.
func NewIPRateLimiter(reqPerMin, burst int, ttl time.Duration) *IPRateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &IPRateLimiter{
		visitors: cache.New(ttl, time.Minute),
		limit:    rate.Limit(float64(reqPerMin) / 60.0),
		burst:    burst,
	}
}

func (rl *IPRateLimiter) getLimiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if v, ok := rl.visitors.Get(ip); ok {
		limiter := v.(*rate.Limiter)
		// Refresh the expiry on every hit.
		rl.visitors.SetDefault(ip, limiter)
		return limiter
	}

	limiter := rate.NewLimiter(rl.limit, rl.burst)
	rl.visitors.SetDefault(ip, limiter)
	return limiter
}

func (rl *IPRateLimiter) Allow(ip string) bool {
	return rl.getLimiter(ip).Allow()
}

// RateLimitByIP rejects requests over the limit with 429.
func RateLimitByIP(rl *IPRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Allow(c.ClientIP()) {
			c.Header("Retry-After", "60")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"message": "Too Many Requests"})
			return
		}
		c.Next()
	}
}
