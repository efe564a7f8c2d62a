package worker

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/kbtale/lease-sentinel/internal/config"
	"github.com/kbtale/lease-sentinel/internal/db"
	"github.com/kbtale/lease-sentinel/internal/kafka"
	"github.com/kbtale/lease-sentinel/internal/lock"
	"github.com/kbtale/lease-sentinel/internal/logger"
	"github.com/kbtale/lease-sentinel/internal/metrics"
	"github.com/kbtale/lease-sentinel/internal/notify"
	"github.com/kbtale/lease-sentinel/internal/repository"
	"github.com/kbtale/lease-sentinel/internal/sweep"
	"github.com/kbtale/lease-sentinel/internal/worker"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var sweepOnce bool

var sweeperCmd = &cobra.Command{
	Use:   "sweeper",
	Short: "Run the daily dispatch sweeper",
	RunE:  runSweeper,
}

func init() {
	sweeperCmd.Flags().BoolVar(&sweepOnce, "once", false, "run a single sweep and exit")
}

func runSweeper(cmd *cobra.Command, args []string) error {
	// 1) load config
	cfgPath, _ := cmd.Root().PersistentFlags().GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger.Init(cfg.Log.Level)
	defer logger.Sync()

	metrics.MustRegister(prometheus.DefaultRegisterer)

	// 2) DB connection (MySQL)
	dbx, err := db.NewMySQLConnection(cfg.MySQL.DSN, db.MySQLOpts{
		MaxOpenConns:    cfg.MySQL.MaxOpenConns,
		MaxIdleConns:    cfg.MySQL.MaxIdleConns,
		ConnMaxLifetime: cfg.MySQL.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.MySQL.ConnMaxIdleTime,
		PingTimeout:     cfg.MySQL.PingTimeout,
	})
	if err != nil {
		return fmt.Errorf("mysql connect: %w", err)
	}
	defer dbx.Close()

	// 3) repositories -> sweep store
	sentinelsRepo := repository.NewSentinelsRepository(dbx)
	logRepo := repository.NewDispatchLogRepository(dbx)
	store := repository.NewSweepStore(sentinelsRepo, logRepo)

	// 4) sweeper
	sw := sweep.New(store, notify.NewWebhookNotifier(notify.DefaultTimeout)).
		WithMaxInFlight(cfg.Sweep.MaxInFlight)
	if cfg.Sweep.LookbackDays > 0 {
		sw = sw.WithSelector(sweep.Lookback{Days: cfg.Sweep.LookbackDays})
	}
	if len(cfg.Kafka.Brokers) > 0 {
		pub := kafka.NewPublisher(kafka.PublisherConfig{
			Brokers:      cfg.Kafka.Brokers,
			Topic:        cfg.Kafka.Topic,
			WriteTimeout: cfg.Kafka.WriteTimeout,
		})
		defer func() { _ = pub.Close() }()
		sw = sw.WithEvents(pub)
	}

	// 5) redis lock; a sweeper without redis still sweeps, just unguarded
	var swLock *lock.SweepLock
	redisClient, err := db.NewRedisClient(db.RedisOpts{
		Addr:        cfg.Redis.Addr,
		Password:    cfg.Redis.Password,
		DB:          cfg.Redis.DB,
		DialTimeout: cfg.Redis.DialTimeout,
	})
	if err != nil {
		log.Printf(">> redis unavailable, sweeping without lock: %v", err)
	} else {
		defer func() { _ = redisClient.Close() }()
		swLock = lock.NewSweepLock(redisClient, "", cfg.Sweep.LockTTL)
	}

	w := worker.NewSweeper(sw, swLock, cfg.Sweep.Schedule)

	// 6) graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if sweepOnce {
		log.Printf(">> sweeper running once")
		return w.RunOnce(ctx)
	}

	log.Printf(">> sweeper started schedule=%q lookback=%d maxInFlight=%d",
		cfg.Sweep.Schedule, cfg.Sweep.LookbackDays, cfg.Sweep.MaxInFlight)

	return w.Run(ctx)
}
