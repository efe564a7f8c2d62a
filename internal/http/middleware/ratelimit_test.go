package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	echo "github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func invokeRateLimit(t *testing.T, cfg RateLimitConfig, owner string) bool {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/sentinels", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if owner != "" {
		c.Set("owner_id", owner)
	}

	var called bool
	next := func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	}
	require.NoError(t, RateLimitMiddleware(cfg)(next)(c))
	return called
}

func TestRateLimitMiddlewareAllowsWhenRedisMissing(t *testing.T) {
	called := invokeRateLimit(t, RateLimitConfig{Redis: nil, DefaultRPS: 10}, "acme")
	assert.True(t, called, "dev setups without redis must not be limited")
}

func TestRateLimitMiddlewareSkipsAnonymous(t *testing.T) {
	called := invokeRateLimit(t, RateLimitConfig{Redis: nil, DefaultRPS: 10}, "")
	assert.True(t, called, "requests without an owner pass through to auth")
}

func TestRateLimitMiddlewareSkipsWhenUnlimited(t *testing.T) {
	called := invokeRateLimit(t, RateLimitConfig{Redis: nil, DefaultRPS: 0}, "acme")
	assert.True(t, called)
}
