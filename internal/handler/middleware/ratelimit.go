package middleware

import (
	"net/http"
	"sync"
	"time"

	"rentpay/internal/domain/actor"
	"rentpay/internal/pkg/config"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimiter keeps one token bucket per caller identity. Authenticated
// callers are keyed by user id, anonymous ones by client IP.
type RateLimiter struct {
	cfg     config.RateLimitConfig
	mu      sync.Mutex
	buckets map[string]*rate.Limiter
}

func NewRateLimiter(cfg config.RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		cfg:     cfg,
		buckets: make(map[string]*rate.Limiter),
	}
}

// Strict guards endpoints that hit the payment gateway.
func (rl *RateLimiter) Strict() gin.HandlerFunc {
	return rl.limit("strict", rl.cfg.StrictPerMinute)
}

// Moderate guards the remaining mutating endpoints.
func (rl *RateLimiter) Moderate() gin.HandlerFunc {
	return rl.limit("moderate", rl.cfg.ModeratePerMinute)
}

func (rl *RateLimiter) limit(preset string, perMinute int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if perMinute <= 0 {
			c.Next()
			return
		}
		if rl.cfg.AdminBypass {
			if role, ok := GetUserRole(c); ok && role.AtLeast(actor.RoleAdmin) {
				c.Next()
				return
			}
			if IsInternalService(c) {
				c.Next()
				return
			}
		}

		if !rl.bucketFor(preset, callerKey(c), perMinute).Allow() {
			c.Header("Retry-After", "60")
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many requests",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

func (rl *RateLimiter) bucketFor(preset, key string, perMinute int) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	bucketKey := preset + ":" + key
	limiter, ok := rl.buckets[bucketKey]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)
		rl.buckets[bucketKey] = limiter
	}
	return limiter
}

func callerKey(c *gin.Context) string {
	if id, ok := GetUserID(c); ok {
		return id.String()
	}
	return c.ClientIP()
}
