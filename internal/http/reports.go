package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/kbtale/lease-sentinel/internal/http/middleware"
	"github.com/kbtale/lease-sentinel/internal/model"
	"github.com/kbtale/lease-sentinel/internal/repository"
	echo "github.com/labstack/echo/v4"
)

func listDispatchesHandler(chRepo repository.CHDispatchesRepository) echo.HandlerFunc {
	return func(c echo.Context) error {
		owner, ok := middleware.OwnerFromCtx(c)
		if !ok {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		}

		limit := 50
		offset := 0
		if v := c.QueryParam("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 1000 {
				limit = n
			}
		}
		if v := c.QueryParam("offset"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n >= 0 {
				offset = n
			}
		}

		var outcome model.DispatchOutcome
		if raw := strings.TrimSpace(c.QueryParam("outcome")); raw != "" {
			tmp := model.DispatchOutcome(raw)
			if tmp.Valid() {
				outcome = tmp
			}
		}

		rows, err := chRepo.ListByOwner(
			c.Request().Context(),
			owner,
			outcome,
			limit,
			offset,
		)
		if err != nil {
			c.Logger().Errorf("clickhouse list failed: %v", err)

			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "query failed"})
		}

		return c.JSON(http.StatusOK, map[string]any{
			"limit":   limit,
			"offset":  offset,
			"count":   len(rows),
			"results": rows,
		})
	}
}
