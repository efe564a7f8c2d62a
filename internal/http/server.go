package http

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/kbtale/lease-sentinel/internal/config"
	"github.com/kbtale/lease-sentinel/internal/http/middleware"
	"github.com/kbtale/lease-sentinel/internal/kafka"
	"github.com/kbtale/lease-sentinel/internal/lock"
	"github.com/kbtale/lease-sentinel/internal/metrics"
	"github.com/kbtale/lease-sentinel/internal/notify"
	"github.com/kbtale/lease-sentinel/internal/repository"
	"github.com/kbtale/lease-sentinel/internal/service/sentinel"
	"github.com/kbtale/lease-sentinel/internal/sweep"
	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	echoMid "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

type Server struct{ e *echo.Echo }

func NewServer(cfg config.Config, mysqlDB, clickhouseDB *sqlx.DB, rds *redis.Client, pub *kafka.Publisher) *Server {
	// repos (MySQL)
	sentinelsRepo := repository.NewSentinelsRepository(mysqlDB)
	logRepo := repository.NewDispatchLogRepository(mysqlDB)

	// repos (ClickHouse)
	chDispatchesRepo := repository.NewCHDispatchesRepository(clickhouseDB)

	// services
	sentinelSvc := sentinel.New(sentinelsRepo, logRepo, cfg.Notice.WindowDays)

	notifier := notify.NewWebhookNotifier(notify.DefaultTimeout)
	sweeper := sweep.New(repository.NewSweepStore(sentinelsRepo, logRepo), notifier).
		WithMaxInFlight(cfg.Sweep.MaxInFlight)
	if pub != nil {
		sweeper = sweeper.WithEvents(pub)
	}

	sweepLock := lock.NewSweepLock(rds, "", cfg.Sweep.LockTTL)

	// echo
	e := echo.New()
	e.HideBanner = true
	e.Use(echoMid.Recover(), echoMid.Logger())

	metrics.MustRegister(prometheus.DefaultRegisterer)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// health
	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	// middlewares
	authMW := middleware.APIKeyMiddleware(cfg.Auth.APIKey)
	rlMW := middleware.RateLimitMiddleware(middleware.RateLimitConfig{
		Redis:          rds,
		DefaultRPS:     cfg.RateLimit.RPS,
		KeyPrefix:      "rl:owner:",
		Window:         time.Second,
		RetryAfterHint: true,
	})

	// routes
	v1 := e.Group("/v1", authMW, rlMW)
	v1.POST("/sentinels", createSentinelHandler(sentinelSvc))
	v1.GET("/sentinels", listSentinelsHandler(sentinelSvc))
	v1.GET("/sentinels/upcoming", upcomingSentinelsHandler(sentinelSvc))
	v1.GET("/sentinels/:id/log", sentinelLogHandler(sentinelSvc))
	v1.GET("/reports/dispatches", listDispatchesHandler(chDispatchesRepo))

	// scheduler callback: bearer secret instead of api key
	cron := e.Group("/v1/cron", middleware.CronAuthMiddleware(cfg.Auth.CronSecret))
	cron.POST("/dispatch", dispatchHandler(sweeper, sweepLock))

	return &Server{e: e}
}

func (s *Server) Start(addr string) error {
	log.Printf("http: listening on %s", addr)
	return s.e.Start(addr)
}
func (s *Server) Shutdown(ctx context.Context) error { return s.e.Shutdown(ctx) }
