package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/kbtale/lease-sentinel/internal/config"
	"github.com/kbtale/lease-sentinel/internal/db"
	"github.com/kbtale/lease-sentinel/internal/model"
	"github.com/kbtale/lease-sentinel/internal/window"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with demo sentinels",
	RunE: func(cmd *cobra.Command, args []string) error {
		// 1) load config
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		// 2) connect MySQL
		sqlDB, err := db.NewMySQLConnection(cfg.MySQL.DSN, db.MySQLOpts{
			MaxOpenConns:    cfg.MySQL.MaxOpenConns,
			MaxIdleConns:    cfg.MySQL.MaxIdleConns,
			ConnMaxLifetime: cfg.MySQL.ConnMaxLifetime,
			ConnMaxIdleTime: cfg.MySQL.ConnMaxIdleTime,
			PingTimeout:     cfg.MySQL.PingTimeout,
		})
		if err != nil {
			return fmt.Errorf("mysql connect: %w", err)
		}
		defer sqlDB.Close()

		log.Println(">> Seeding demo sentinels...")

		if err := seedSentinels(sqlDB); err != nil {
			return err
		}

		log.Println(">> Seed completed ✅")
		return nil
	},
}

// seedSentinels inserts deterministic demo sentinels (idempotent). IDs are
// fixed ULID-shaped strings so reruns upsert instead of piling up rows.
func seedSentinels(dbx *sqlx.DB) error {
	today := window.Today()

	sentinels := []model.SentinelRecord{
		{
			ID:                 "01SEED0000000000000000TDAY",
			Owner:              "acme",
			EventName:          "Office lease expires",
			TriggerDate:        today,
			OriginalText:       "Reminder: the office lease for suite 400 expires today and must be renegotiated.",
			NotificationMethod: model.MethodWebhook,
			NotificationTarget: "https://hooks.example.com/acme/leases",
			Status:             model.StatusPending,
		},
		{
			ID:                 "01SEED0000000000000000WK01",
			Owner:              "acme",
			EventName:          "SSL certificate renewal",
			TriggerDate:        today.AddDays(7),
			OriginalText:       "The wildcard certificate for *.acme.example is due for renewal next week.",
			NotificationMethod: model.MethodWebhook,
			NotificationTarget: "https://hooks.example.com/acme/certs",
			Status:             model.StatusPending,
		},
		{
			ID:                 "01SEED0000000000000000MN01",
			Owner:              "globex",
			EventName:          "Vendor contract review",
			TriggerDate:        today.AddDays(30),
			OriginalText:       "Annual review of the Initech support contract, thirty days out.",
			NotificationMethod: model.MethodWebhook,
			NotificationTarget: "https://hooks.example.com/globex/contracts",
			Status:             model.StatusPending,
		},
		{
			ID:                 "01SEED0000000000000000PAST",
			Owner:              "globex",
			EventName:          "Domain registration",
			TriggerDate:        today.AddDays(-14),
			OriginalText:       "globex.example registration ran out two weeks ago; already handled.",
			NotificationMethod: model.MethodWebhook,
			NotificationTarget: "https://hooks.example.com/globex/domains",
			Status:             model.StatusFired,
		},
		{
			ID:                 "01SEED0000000000000000BAD0",
			Owner:              "acme",
			EventName:          "Broken webhook demo",
			TriggerDate:        today,
			OriginalText:       "Points at an unreachable endpoint to demo failure handling.",
			NotificationMethod: model.MethodWebhook,
			NotificationTarget: "http://127.0.0.1:1/hook",
			Status:             model.StatusPending,
		},
	}

	// idempotent upsert based on id (PK)
	const q = `
INSERT INTO sentinels
    (id, owner, event_name, trigger_date, original_text, notification_method, notification_target, status, created_at, updated_at)
VALUES
    (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
    event_name          = VALUES(event_name),
    trigger_date        = VALUES(trigger_date),
    original_text       = VALUES(original_text),
    notification_method = VALUES(notification_method),
    notification_target = VALUES(notification_target),
    status              = VALUES(status),
    updated_at          = VALUES(updated_at)
`
	tx, err := dbx.Beginx()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := time.Now()
	for _, s := range sentinels {
		if _, err := tx.Exec(q,
			s.ID, s.Owner, s.EventName, s.TriggerDate, s.OriginalText,
			s.NotificationMethod, s.NotificationTarget, s.Status, now, now,
		); err != nil {
			return fmt.Errorf("insert sentinel %q: %w", s.EventName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit sentinels: %w", err)
	}
	return nil
}
