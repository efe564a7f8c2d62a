package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/kbtale/lease-sentinel/internal/http/middleware"
	"github.com/kbtale/lease-sentinel/internal/model"
	"github.com/kbtale/lease-sentinel/internal/service/sentinel"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

// SentinelService is the surface the sentinel handlers need.
type SentinelService interface {
	Create(ctx context.Context, in sentinel.CreateInput) (*model.SentinelRecord, error)
	List(ctx context.Context, owner string, status model.SentinelStatus, limit, offset int) ([]model.SentinelRecord, error)
	Upcoming(ctx context.Context, owner string, windowDays int) ([]model.SentinelRecord, error)
	AuditTrail(ctx context.Context, owner, id string) ([]model.DispatchLogEntry, error)
}

type createReq struct {
	EventName          string `json:"event_name"`
	TriggerDate        string `json:"trigger_date"` // YYYY-MM-DD
	OriginalText       string `json:"original_text"`
	NotificationMethod string `json:"notification_method"` // "webhook" | "email" | "sms"
	NotificationTarget string `json:"notification_target"`
}

func createSentinelHandler(svc SentinelService) echo.HandlerFunc {
	return func(c echo.Context) error {
		owner, ok := middleware.OwnerFromCtx(c)
		if !ok {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		}

		var req createReq
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "bad request"})
		}

		rec, err := svc.Create(c.Request().Context(), sentinel.CreateInput{
			Owner:              owner,
			EventName:          req.EventName,
			TriggerDate:        req.TriggerDate,
			OriginalText:       req.OriginalText,
			NotificationMethod: req.NotificationMethod,
			NotificationTarget: req.NotificationTarget,
		})
		if err != nil {
			if errors.Is(err, sentinel.ErrValidation) {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
			}

			log.Errorf("create sentinel failed: %v", err)

			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
		}

		return c.JSON(http.StatusCreated, rec)
	}
}

func listSentinelsHandler(svc SentinelService) echo.HandlerFunc {
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

		var st model.SentinelStatus
		if raw := strings.TrimSpace(c.QueryParam("status")); raw != "" {
			tmp := model.SentinelStatus(raw)
			if tmp.Valid() {
				st = tmp
			}
		}

		recs, err := svc.List(c.Request().Context(), owner, st, limit, offset)
		if err != nil {
			log.Errorf("list sentinels failed: %v", err)

			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "query failed"})
		}

		return c.JSON(http.StatusOK, map[string]any{
			"limit":   limit,
			"offset":  offset,
			"count":   len(recs),
			"results": recs,
		})
	}
}

func upcomingSentinelsHandler(svc SentinelService) echo.HandlerFunc {
	return func(c echo.Context) error {
		owner, ok := middleware.OwnerFromCtx(c)
		if !ok {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		}

		windowDays := 0
		if v := c.QueryParam("window"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid window"})
			}
			windowDays = n
		}

		recs, err := svc.Upcoming(c.Request().Context(), owner, windowDays)
		if err != nil {
			log.Errorf("upcoming sentinels failed: %v", err)

			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "query failed"})
		}

		return c.JSON(http.StatusOK, map[string]any{
			"count":   len(recs),
			"results": recs,
		})
	}
}

func sentinelLogHandler(svc SentinelService) echo.HandlerFunc {
	return func(c echo.Context) error {
		owner, ok := middleware.OwnerFromCtx(c)
		if !ok {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		}

		id := strings.TrimSpace(c.Param("id"))
		if id == "" {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "missing id"})
		}

		entries, err := svc.AuditTrail(c.Request().Context(), owner, id)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return c.JSON(http.StatusNotFound, map[string]string{"error": "not found"})
			}

			log.Errorf("audit trail failed: %v", err)

			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "query failed"})
		}

		return c.JSON(http.StatusOK, map[string]any{
			"count":   len(entries),
			"results": entries,
		})
	}
}
