package http

import (
	"context"
	"net/http"

	"github.com/kbtale/lease-sentinel/internal/sweep"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

// SweepRunner runs one dispatch sweep and reports what it did.
type SweepRunner interface {
	Run(ctx context.Context) (sweep.Report, error)
}

// SweepLocker guards against overlapping sweeps. TryLock returns a release
// func and true when the lock was taken.
type SweepLocker interface {
	TryLock(ctx context.Context) (func(), bool)
}

func dispatchHandler(runner SweepRunner, locker SweepLocker) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		release, ok := locker.TryLock(ctx)
		if !ok {
			return c.JSON(http.StatusConflict, map[string]string{"error": "sweep already running"})
		}
		defer release()

		rep, err := runner.Run(ctx)
		if err != nil {
			log.Errorf("sweep failed: %v", err)

			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "sweep failed"})
		}

		return c.JSON(http.StatusOK, map[string]int{"processed": rep.Processed})
	}
}
