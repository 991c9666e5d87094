package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// fixedWindow counts a hit and starts the window on the first one.
var fixedWindow = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {current, redis.call("PTTL", KEYS[1])}
`)

// RateLimitConfig bounds requests per client IP and route.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
	Prefix   string
}

// RateLimit allows cfg.Requests per cfg.Window for each client IP and route.
// With a nil client it is a no-op; redis errors let the request through.
func RateLimit(rdb *redis.Client, cfg RateLimitConfig, logger *logrus.Logger) fiber.Handler {
	if rdb == nil {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "rl"
	}

	return func(c *fiber.Ctx) error {
		key := cfg.Prefix + ":" + c.Route().Path + ":" + c.IP()
		res, err := fixedWindow.Run(c.UserContext(), rdb, []string{key}, cfg.Window.Milliseconds()).Int64Slice()
		if err != nil || len(res) != 2 {
			logger.WithError(err).WithField("key", key).Warn("Rate limiter unavailable, allowing request")
			return c.Next()
		}

		count, ttlMs := res[0], res[1]
		remaining := int64(cfg.Requests) - count
		if remaining < 0 {
			remaining = 0
		}
		c.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Requests))
		c.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if count > int64(cfg.Requests) {
			retry := (ttlMs + 999) / 1000
			if retry < 1 {
				retry = 1
			}
			c.Set(fiber.HeaderRetryAfter, strconv.FormatInt(retry, 10))
			logger.WithField("key", key).Info("Rate limit exceeded")
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success": false,
				"message": "Too many requests, please try again later",
			})
		}
		return c.Next()
	}
}
