package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smarthostel/backend/internal/config"
	"github.com/smarthostel/backend/internal/middleware"
)

func limiterConfig() config.RateLimitConfig {
	return config.RateLimitConfig{
		Enabled:        true,
		Capacity:       2,
		RefillTokens:   1,
		RefillInterval: 2 * time.Second,
		TTL:            10 * time.Minute,
		KeyStrategy:    "ip_route",
		Prefix:         "rl",
	}
}

func runLimited(t *testing.T, mw echo.MiddlewareFunc) (*httptest.ResponseRecorder, bool, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	reached := false
	err := mw(func(c echo.Context) error {
		reached = true
		return c.NoContent(http.StatusOK)
	})(c)
	return rec, reached, err
}

func TestTokenBucketPassThroughWithoutRedis(t *testing.T) {
	mw := middleware.NewTokenBucket(limiterConfig(), nil)

	// Far more requests than the bucket holds all go through untouched.
	for i := 0; i < 10; i++ {
		rec, reached, err := runLimited(t, mw)
		require.NoError(t, err)
		assert.True(t, reached)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
		assert.Empty(t, rec.Header().Get("Retry-After"))
	}
}

func TestTokenBucketPassThroughWhenDisabled(t *testing.T) {
	// The client is never dialed because the disabled check wins first.
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	cfg := limiterConfig()
	cfg.Enabled = false

	rec, reached, err := runLimited(t, middleware.NewTokenBucket(cfg, rdb))
	require.NoError(t, err)
	assert.True(t, reached)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
}

func TestTokenBucketFailsOpenOnRedisError(t *testing.T) {
	// Nothing listens on port 1, so the script run fails and the request
	// proceeds; Redis trouble must not lock users out of login.
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})

	_, reached, err := runLimited(t, middleware.NewTokenBucket(limiterConfig(), rdb))
	require.NoError(t, err)
	assert.True(t, reached)
}
