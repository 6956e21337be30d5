// Package ratelimit throttles requests per client IP with a fixed window
// counter in Redis.
package ratelimit

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/Skotchmaster/storefront/internal/logging"
)

// Counter is the subset of *redis.Client the limiter needs.
type Counter interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

type Limiter struct {
	Store  Counter
	Limit  int
	Window time.Duration
	Prefix string
}

func New(store Counter, limit int, window time.Duration) *Limiter {
	return &Limiter{Store: store, Limit: limit, Window: window, Prefix: "ratelimit:auth:"}
}

// Allow counts one hit for key. Redis failures let the request through.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	k := l.Prefix + key
	n, err := l.Store.Incr(ctx, k).Result()
	if err != nil {
		return true, err
	}
	if n == 1 {
		if err := l.Store.Expire(ctx, k, l.Window).Err(); err != nil {
			return true, err
		}
	}
	return n <= int64(l.Limit), nil
}

func (l *Limiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			ok, err := l.Allow(ctx, c.RealIP())
			if err != nil {
				logging.FromContext(ctx).Warn("rate_limit_unavailable", "error", err)
			}
			if !ok {
				c.Response().Header().Set("Retry-After", strconv.Itoa(int(l.Window.Seconds())))
				return echo.NewHTTPError(http.StatusTooManyRequests, "Too many requests, please try again later")
			}
			return next(c)
		}
	}
}
