package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"

	"github.com/ra-risk-server/internal/domain"
)

// maxTrackedClients bounds limiter memory; idle clients fall out after
// clientIdleTTL and start again with a full bucket.
const (
	maxTrackedClients = 10000
	clientIdleTTL     = 10 * time.Minute
)

// ClientRateLimiter keeps a token bucket per client IP.
type ClientRateLimiter struct {
	mu       sync.Mutex
	limiters *expirable.LRU[string, *rate.Limiter]
	rps      rate.Limit
	burst    int
}

// NewClientRateLimiter creates a limiter allowing rps requests per second
// with the given burst for every client.
func NewClientRateLimiter(rps float64, burst int) *ClientRateLimiter {
	return &ClientRateLimiter{
		limiters: expirable.NewLRU[string, *rate.Limiter](maxTrackedClients, nil, clientIdleTTL),
		rps:      rate.Limit(rps),
		burst:    burst,
	}
}

// Allow consumes a token for key.
func (l *ClientRateLimiter) Allow(key string) bool {
	l.mu.Lock()
	limiter, ok := l.limiters.Get(key)
	if !ok {
		limiter = rate.NewLimiter(l.rps, l.burst)
		l.limiters.Add(key, limiter)
	}
	l.mu.Unlock()

	return limiter.Allow()
}

// Middleware rejects over-limit clients with 429.
func (l *ClientRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow(c.ClientIP()) {
			c.Header("Retry-After", "1")
			abortWithAPIError(c, http.StatusTooManyRequests, domain.ErrRateLimit, "Too many requests. Try again later.")
			return
		}
		c.Next()
	}
}
