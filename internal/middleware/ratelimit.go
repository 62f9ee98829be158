package middleware

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// RateLimitConfig configures a fixed-window limiter for one named endpoint.
type RateLimitConfig struct {
	Name   string
	Limit  int
	Window time.Duration
	// Disabled lets every request through without touching Redis.
	Disabled bool
	// FailClosed answers 503 when Redis cannot be reached instead of allowing the request.
	FailClosed bool
}

var errNoRedis = errors.New("rate limit: no redis client")

// allowRequest counts one hit on key and reports whether it is within limit.
// The counter expires window after the first hit.
func allowRequest(ctx context.Context, rdb *redis.Client, key string, limit int, window time.Duration) (bool, error) {
	if rdb == nil {
		return false, errNoRedis
	}
	hits, err := rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if hits == 1 {
		if err := rdb.Expire(ctx, key, window).Err(); err != nil {
			return false, err
		}
	}
	return hits <= int64(limit), nil
}

// rateLimitKey identifies the caller: the authenticated user when known, else the client IP.
func rateLimitKey(c *fiber.Ctx, name string) string {
	if uid, ok := c.Locals("userID").(uint); ok {
		return "rl:" + name + ":user:" + strconv.FormatUint(uint64(uid), 10)
	}
	return "rl:" + name + ":ip:" + c.IP()
}

// RateLimit returns a Fiber middleware enforcing cfg against Redis.
func RateLimit(rdb *redis.Client, cfg RateLimitConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if cfg.Disabled {
			return c.Next()
		}

		ok, err := allowRequest(c.UserContext(), rdb, rateLimitKey(c, cfg.Name), cfg.Limit, cfg.Window)
		switch {
		case err != nil && cfg.FailClosed:
			Logger.WarnContext(c.UserContext(), "rate limiter unavailable",
				slog.String("limiter", cfg.Name), slog.String("error", err.Error()))
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "rate limit unavailable"})
		case err != nil:
			return c.Next()
		case !ok:
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(cfg.Window.Seconds())))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded"})
		}
		return c.Next()
	}
}
