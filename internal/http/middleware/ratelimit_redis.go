package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"shell_game/internal/logger"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
)

var redisClient *redis.Client

// InitRedisRateLimiter initializes a shared Redis client used by the middleware.
// If addr is empty or ping fails, redisClient stays nil and the limiters fall
// back to in-process counters.
func InitRedisRateLimiter(addr, password string, db int) {
	if addr == "" {
		logger.Warn("REDIS_ADDR not set, using in-memory rate limiting")
		return
	}
	redisClient = redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unavailable, using in-memory rate limiting", "addr", addr, "error", err)
		redisClient = nil
		return
	}
	logger.Info("redis rate limiter connected", "addr", addr)
}

// RedisClient returns the shared client, nil when Redis is not in use
func RedisClient() *redis.Client {
	return redisClient
}

// CloseRedis closes the shared client
func CloseRedis() {
	if redisClient != nil {
		_ = redisClient.Close()
	}
}

// incrWindow bumps key in a fixed window. Returns the count and false when
// Redis could not be reached.
func incrWindow(ctx context.Context, key string, window time.Duration) (int64, bool) {
	val, err := redisClient.Incr(ctx, key).Result()
	if err != nil {
		return 0, false
	}
	if val == 1 {
		redisClient.Expire(ctx, key, window)
	}
	return val, true
}

// RedisRateLimit implements a simple fixed-window rate limiter using Redis INCR/EXPIRE.
// key format: rl:<window_seconds>:<identifier>
func RedisRateLimit(maxRequests int, window time.Duration) gin.HandlerFunc {
	fallback := SimpleRateLimit(maxRequests, window)
	return func(c *gin.Context) {
		if redisClient == nil {
			fallback(c)
			return
		}

		key := "rl:" + strconv.FormatInt(int64(window.Seconds()), 10) + ":" + c.ClientIP()
		val, ok := incrWindow(c.Request.Context(), key, window)
		if !ok {
			// fail-open
			c.Header("X-RateLimit-Error", "redis-error")
			c.Next()
			return
		}

		if val > int64(maxRequests) {
			RLBlocked.WithLabelValues(c.FullPath()).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}

		RLRequests.WithLabelValues(c.FullPath()).Inc()
		c.Next()
	}
}
