package ratelimit

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// IPLimiter keeps one token bucket per client IP.
type IPLimiter struct {
	limiters sync.Map
	rps      rate.Limit
	burst    int
}

func NewIPLimiter(rps float64, burst int) *IPLimiter {
	if burst <= 0 {
		burst = 5
	}
	return &IPLimiter{rps: rate.Limit(rps), burst: burst}
}

func (l *IPLimiter) get(key string) *rate.Limiter {
	if v, ok := l.limiters.Load(key); ok {
		return v.(*rate.Limiter)
	}
	lim := rate.NewLimiter(l.rps, l.burst)
	actual, _ := l.limiters.LoadOrStore(key, lim)
	return actual.(*rate.Limiter)
}

// Middleware rejects requests over the per-IP rate with 429.
// A non-positive rate disables it.
func (l *IPLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if l.rps <= 0 {
			c.Next()
			return
		}
		ip := c.ClientIP()
		if !l.get(ip).Allow() {
			zerolog.Ctx(c.Request.Context()).Warn().Str("ip", ip).Msg("rate limit exceeded")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded, try again later"})
			return
		}
		c.Next()
	}
}
