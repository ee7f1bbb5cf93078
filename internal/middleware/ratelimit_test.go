package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/user-account-service/internal/config"
)

func limiterConfig(capacity int) config.RateLimitConfig {
	return config.RateLimitConfig{
		Enabled:        true,
		Capacity:       capacity,
		RefillTokens:   1,
		RefillInterval: time.Minute,
		TTL:            10 * time.Minute,
		KeyStrategy:    "ip_route",
		Prefix:         "rl",
	}
}

func doRequest(e *echo.Echo, mw echo.MiddlewareFunc) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/auth/login")
	handler := mw(func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	_ = handler(c)
	return rec
}

func TestTokenBucket_BlocksAfterCapacity(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	e := echo.New()
	mw := NewTokenBucket(limiterConfig(2), rdb)

	first := doRequest(e, mw)
	second := doRequest(e, mw)
	third := doRequest(e, mw)

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusOK, second.Code)
	require.Equal(t, http.StatusTooManyRequests, third.Code)
	assert.NotEmpty(t, third.Header().Get("Retry-After"))
	assert.Equal(t, "0", third.Header().Get("X-RateLimit-Remaining"))
	assert.Contains(t, third.Body.String(), "too_many_requests")
}

func TestTokenBucket_SeparateBucketsPerIP(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	e := echo.New()
	mw := NewTokenBucket(limiterConfig(1), rdb)

	send := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/v1/auth/signup", nil)
		req.RemoteAddr = ip + ":1234"
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetPath("/v1/auth/signup")
		handler := mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
		_ = handler(c)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1"))
	// A different caller has its own bucket.
	assert.Equal(t, http.StatusOK, send("10.0.0.2"))
}

func TestTokenBucket_DegradesOpenWithoutRedis(t *testing.T) {
	e := echo.New()

	// Nil client: the middleware must be a no-op.
	mw := NewTokenBucket(limiterConfig(1), nil)
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, doRequest(e, mw).Code)
	}

	// Disabled config behaves the same even with a live client.
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	cfg := limiterConfig(1)
	cfg.Enabled = false
	mw = NewTokenBucket(cfg, rdb)
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, doRequest(e, mw).Code)
	}
}

func TestWithBudget_DerivesPerRouteBucket(t *testing.T) {
	base := limiterConfig(60)
	derived := base.WithBudget(3, 5*time.Minute)

	assert.Equal(t, 3, derived.Capacity)
	assert.Equal(t, 1, derived.RefillTokens)
	assert.Equal(t, 5*time.Minute, derived.RefillInterval)
	assert.GreaterOrEqual(t, derived.TTL, 5*derived.RefillInterval)
	// The base config is untouched.
	assert.Equal(t, 60, base.Capacity)
}
