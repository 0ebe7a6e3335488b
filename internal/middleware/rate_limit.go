// internal/middleware/rate_limit.go
package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/javajoker/toolhatch-backend/internal/utils"
)

const visitorTTL = 3 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type RateLimiter struct {
	visitors map[string]*visitor
	mtx      sync.Mutex
	rate     rate.Limit
	burst    int
	now      func() time.Time
}

func NewRateLimiter(r rate.Limit, b int) *RateLimiter {
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		rate:     r,
		burst:    b,
		now:      time.Now,
	}
}

// Run evicts idle visitors every minute until stop is closed.
func (rl *RateLimiter) Run(stop <-chan struct{}) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			rl.cleanupVisitors()
		}
	}
}

func (rl *RateLimiter) cleanupVisitors() {
	rl.mtx.Lock()
	defer rl.mtx.Unlock()
	for ip, v := range rl.visitors {
		if rl.now().Sub(v.lastSeen) > visitorTTL {
			delete(rl.visitors, ip)
		}
	}
}

func (rl *RateLimiter) getVisitor(ip string) *rate.Limiter {
	rl.mtx.Lock()
	defer rl.mtx.Unlock()

	v, exists := rl.visitors[ip]
	if !exists {
		limiter := rate.NewLimiter(rl.rate, rl.burst)
		rl.visitors[ip] = &visitor{limiter, rl.now()}
		return limiter
	}

	v.lastSeen = rl.now()
	return v.limiter
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.getVisitor(c.ClientIP()).Allow() {
			utils.ErrorResponse(c, http.StatusTooManyRequests, "RATE_LIMITED", "Rate limit exceeded. Please try again later.", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}
