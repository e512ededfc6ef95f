package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go-interview-scheduler/internal/delivery/http/response"
	"go-interview-scheduler/internal/domain"
	"go-interview-scheduler/pkg/logger"
	"go-interview-scheduler/pkg/redis"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
)

// WindowCounter counts hits on key inside a fixed window that starts with the
// first hit. It returns the count including this hit and the time left.
type WindowCounter interface {
	Hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

// RateLimitConfig describes one fixed-window limit.
type RateLimitConfig struct {
	Limit  int
	Window time.Duration
	Prefix string
	Key    func(*gin.Context) string
	// Counter defaults to the shared Redis client. With no counter the
	// limit is not enforced, since per-process counts would not hold
	// across replicas.
	Counter WindowCounter
}

// fixedWindow increments KEYS[1], arms its expiry on the first hit and
// returns {count, ttl}.
var fixedWindow = goredis.NewScript(`
local n = redis.call('INCR', KEYS[1])
if n == 1 then
	redis.call('EXPIRE', KEYS[1], ARGV[1])
end
return {n, redis.call('TTL', KEYS[1])}
`)

type redisCounter struct {
	client goredis.Scripter
}

// NewRedisCounter counts in Redis so every replica shares one window.
func NewRedisCounter(client goredis.Scripter) WindowCounter {
	return redisCounter{client: client}
}

func (r redisCounter) Hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	secs := int64(window / time.Second)
	if secs < 1 {
		secs = 1
	}
	res, err := fixedWindow.Run(ctx, r.client, []string{key}, secs).Int64Slice()
	if err != nil {
		return 0, 0, err
	}
	if len(res) != 2 {
		return 0, 0, fmt.Errorf("rate limit: unexpected reply %v", res)
	}
	return res[0], time.Duration(res[1]) * time.Second, nil
}

// GlobalRateLimitConfig limits every route per client IP.
func GlobalRateLimitConfig(limit int, window time.Duration) RateLimitConfig {
	return RateLimitConfig{
		Limit:  limit,
		Window: window,
		Prefix: "rl:ip:",
		Key:    func(c *gin.Context) string { return c.ClientIP() },
	}
}

// BookingRateLimitConfig limits slot-claiming requests per authenticated user.
// Must run after AuthMiddleware.
func BookingRateLimitConfig(limit int, window time.Duration) RateLimitConfig {
	return RateLimitConfig{
		Limit:  limit,
		Window: window,
		Prefix: "rl:booking:",
		Key: func(c *gin.Context) string {
			if userID := c.GetString(string(domain.KeyUserID)); userID != "" {
				return userID
			}
			return c.ClientIP()
		},
	}
}

// RateLimitMiddleware rejects a key's requests beyond cfg.Limit per window
// with 429. It fails open when the counter is missing or erroring.
func RateLimitMiddleware(cfg RateLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		counter := cfg.Counter
		if counter == nil {
			client := redis.Client()
			if client == nil {
				c.Next()
				return
			}
			counter = NewRedisCounter(client)
		}

		count, ttl, err := counter.Hit(c.Request.Context(), cfg.Prefix+cfg.Key(c), cfg.Window)
		if err != nil {
			logger.Log.Error("rate limiter unavailable",
				"request_id", c.GetString("RequestID"),
				"prefix", cfg.Prefix,
				"error", err,
			)
			c.Next()
			return
		}

		remaining := int64(cfg.Limit) - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.Limit))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		c.Header("X-RateLimit-Reset", time.Now().Add(ttl).UTC().Format(time.RFC3339))

		if count > int64(cfg.Limit) {
			retry := int(ttl / time.Second)
			if retry < 1 {
				retry = 1
			}
			c.Header("Retry-After", strconv.Itoa(retry))
			logger.Log.Warn("rate limit triggered",
				"request_id", c.GetString("RequestID"),
				"ip", c.ClientIP(),
				"user_id", c.GetString(string(domain.KeyUserID)),
				"path", c.FullPath(),
			)
			response.Error(c, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}
