package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCounter struct {
	counts  map[string]int64
	expires map[string]time.Duration
	err     error
}

func newFakeCounter() *fakeCounter {
	return &fakeCounter{counts: map[string]int64{}, expires: map[string]time.Duration{}}
}

func (f *fakeCounter) Incr(_ context.Context, key string) *redis.IntCmd {
	if f.err != nil {
		return redis.NewIntResult(0, f.err)
	}
	f.counts[key]++
	return redis.NewIntResult(f.counts[key], nil)
}

func (f *fakeCounter) Expire(_ context.Context, key string, ttl time.Duration) *redis.BoolCmd {
	f.expires[key] = ttl
	return redis.NewBoolResult(true, nil)
}

func hit(e *echo.Echo, ip string) int {
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	req.RemoteAddr = ip + ":1234"
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec.Code
}

func TestLimiter_BlocksAfterLimitPerIP(t *testing.T) {
	store := newFakeCounter()
	l := New(store, 2, time.Minute)

	e := echo.New()
	e.POST("/api/auth/login", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, l.Middleware())

	assert.Equal(t, http.StatusOK, hit(e, "10.0.0.1"))
	assert.Equal(t, http.StatusOK, hit(e, "10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, hit(e, "10.0.0.1"))
	assert.Equal(t, http.StatusOK, hit(e, "10.0.0.2"))

	assert.Equal(t, time.Minute, store.expires["ratelimit:auth:10.0.0.1"])
}

func TestLimiter_FailsOpen(t *testing.T) {
	store := newFakeCounter()
	store.err = errors.New("redis down")
	l := New(store, 1, time.Minute)

	ok, err := l.Allow(context.Background(), "10.0.0.1")
	require.Error(t, err)
	assert.True(t, ok)
}
