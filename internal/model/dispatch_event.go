package model

import "time"

// DispatchEvent is the payload published to Kafka after each dispatch
// attempt. Downstream consumers (the ClickHouse report pipeline, alerting)
// treat it as best-effort; the dispatch_log table is the durable record.
type DispatchEvent struct {
	SweepID     string    `json:"sweep_id"`
	SentinelID  string    `json:"sentinel_id"`
	Owner       string    `json:"owner"`
	EventName   string    `json:"event_name"`
	TriggerDate string    `json:"trigger_date"`
	Outcome     string    `json:"outcome"`
	FiredAt     time.Time `json:"fired_at"`
}
