package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	echo "github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func invokeCronAuth(t *testing.T, secret, authHeader string) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/cron/dispatch", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var nextCalled bool
	next := func(c echo.Context) error {
		nextCalled = true
		return c.NoContent(http.StatusOK)
	}

	require.NoError(t, CronAuthMiddleware(secret)(next)(c))
	return rec, nextCalled
}

func TestCronAuthMiddleware(t *testing.T) {
	rec, called := invokeCronAuth(t, "hunter2", "Bearer hunter2")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, called)
}

func TestCronAuthMiddlewareDisabledWhenNoSecret(t *testing.T) {
	rec, called := invokeCronAuth(t, "", "Bearer anything")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)
	assert.Contains(t, rec.Body.String(), "disabled")
}

func TestCronAuthMiddlewareMissingBearer(t *testing.T) {
	rec, called := invokeCronAuth(t, "hunter2", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)

	rec, called = invokeCronAuth(t, "hunter2", "Basic aHVudGVyMg==")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)
}

func TestCronAuthMiddlewareWrongToken(t *testing.T) {
	rec, called := invokeCronAuth(t, "hunter2", "Bearer hunter3")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)
}
