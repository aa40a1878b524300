package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type clientInfo struct {
	last  time.Time
	count int
}

// memoryLimiter is a fixed-window counter used when Redis is not configured
type memoryLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientInfo
}

func newMemoryLimiter() *memoryLimiter {
	return &memoryLimiter{clients: make(map[string]*clientInfo)}
}

// allow counts one hit for key and returns the count in the current window
func (l *memoryLimiter) allow(key string, window time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	ci, ok := l.clients[key]
	if !ok || now.Sub(ci.last) > window {
		l.clients[key] = &clientInfo{last: now, count: 1}
		return 1
	}
	ci.count++
	return ci.count
}

// SimpleRateLimit blocks clients that send more than maxRequests per window
func SimpleRateLimit(maxRequests int, window time.Duration) gin.HandlerFunc {
	limiter := newMemoryLimiter()
	return func(c *gin.Context) {
		if limiter.allow(c.ClientIP(), window) > maxRequests {
			RLBlocked.WithLabelValues(c.FullPath()).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		RLRequests.WithLabelValues(c.FullPath()).Inc()
		c.Next()
	}
}
