package model

import (
	"strings"
	"time"

	"github.com/kbtale/lease-sentinel/internal/window"
)

type SentinelStatus string

const (
	StatusPending SentinelStatus = "pending"
	StatusFired   SentinelStatus = "fired"
)

func (s SentinelStatus) String() string {
	return string(s)
}

func (s SentinelStatus) Valid() bool {
	return s == StatusPending || s == StatusFired
}

type NotificationMethod string

const (
	MethodWebhook NotificationMethod = "webhook"
	MethodEmail   NotificationMethod = "email"
	MethodSMS     NotificationMethod = "sms"
)

func (m NotificationMethod) String() string { return string(m) }

// ParseNotificationMethod normalizes input; empty => webhook.
// Returns (value, true) if valid; otherwise (webhook, false).
func ParseNotificationMethod(s string) (NotificationMethod, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "webhook":
		return MethodWebhook, true
	case "email":
		return MethodEmail, true
	case "sms":
		return MethodSMS, true
	default:
		return MethodWebhook, false
	}
}

func (m NotificationMethod) Valid() bool {
	return m == MethodWebhook || m == MethodEmail || m == MethodSMS
}

// SentinelRecord is the DB entity persisted in the sentinels table.
// The method/target pair is carried through to dispatch untouched; the
// sweep never interprets the target beyond handing it to the notifier.
type SentinelRecord struct {
	ID                 string             `db:"id" json:"id"`
	Owner              string             `db:"owner" json:"owner"`
	EventName          string             `db:"event_name" json:"event_name"`
	TriggerDate        window.Date        `db:"trigger_date" json:"trigger_date"`
	OriginalText       string             `db:"original_text" json:"original_text"`
	NotificationMethod NotificationMethod `db:"notification_method" json:"notification_method"`
	NotificationTarget string             `db:"notification_target" json:"notification_target"`
	Status             SentinelStatus     `db:"status" json:"status"`
	CreatedAt          time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time          `db:"updated_at" json:"updated_at"`
}
