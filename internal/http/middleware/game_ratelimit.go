package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// GameRateLimit limits game actions per player (not per IP). Uses Redis when
// available, in-process counters otherwise. Requires JWT middleware to run before this.
func GameRateLimit(maxActions int, window time.Duration) gin.HandlerFunc {
	local := newMemoryLimiter()
	return func(c *gin.Context) {
		playerID := c.GetString(PlayerIDKey)
		if playerID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		key := "game_rl:" + playerID + ":" + strconv.FormatInt(int64(window.Seconds()), 10)

		var val int64
		if redisClient != nil {
			n, ok := incrWindow(c.Request.Context(), key, window)
			if !ok {
				c.Header("X-GameRateLimit-Error", "redis-error")
				c.Next()
				return
			}
			val = n
		} else {
			val = int64(local.allow(key, window))
		}

		c.Header("X-GameRateLimit-Limit", strconv.Itoa(maxActions))
		c.Header("X-GameRateLimit-Remaining", strconv.FormatInt(max(0, int64(maxActions)-val), 10))

		if val > int64(maxActions) {
			RLBlocked.WithLabelValues("game:" + c.FullPath()).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "game rate limit exceeded",
				"retry_after": int(window.Seconds()),
			})
			return
		}

		RLRequests.WithLabelValues("game:" + c.FullPath()).Inc()
		c.Next()
	}
}
