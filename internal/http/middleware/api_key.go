package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	echo "github.com/labstack/echo/v4"
)

// OwnerFromCtx extracts the authenticated owner set by APIKeyMiddleware.
func OwnerFromCtx(c echo.Context) (string, bool) {
	v := c.Get("owner_id")
	owner, ok := v.(string)
	return owner, ok && owner != ""
}

// APIKeyMiddleware authenticates requests using the X-API-Key header against
// a single shared key and stores the caller-declared X-Owner-ID in context.
func APIKeyMiddleware(apiKey string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := strings.TrimSpace(c.Request().Header.Get("X-API-Key"))
			if key == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing api key"})
			}
			if apiKey == "" || subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) != 1 {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid api key"})
			}
			owner := strings.TrimSpace(c.Request().Header.Get("X-Owner-ID"))
			if owner == "" {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": "missing owner id"})
			}
			c.Set("owner_id", owner)
			return next(c)
		}
	}
}
