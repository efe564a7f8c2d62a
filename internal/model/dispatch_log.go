package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kbtale/lease-sentinel/internal/window"
)

type DispatchOutcome string

const (
	OutcomeSuccess DispatchOutcome = "success"
	OutcomeFailed  DispatchOutcome = "failed"
)

func (o DispatchOutcome) String() string {
	return string(o)
}

func (o DispatchOutcome) Valid() bool {
	return o == OutcomeSuccess || o == OutcomeFailed
}

// Payload is the structured data sent to the notification target, stored
// verbatim in a JSON column alongside the attempt outcome.
type Payload map[string]any

func (p Payload) Value() (driver.Value, error) {
	if p == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(p)
}

func (p *Payload) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*p = nil
		return nil
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	}
	return fmt.Errorf("payload: cannot scan %T", src)
}

// DispatchLogEntry is one append-only audit row in the dispatch_log table.
// Exactly one row is written per dispatch attempt per sweep; rows are never
// updated or deleted. SentinelID is a weak back-reference (lookup only).
type DispatchLogEntry struct {
	ID         string          `db:"id" json:"id"`
	SentinelID string          `db:"sentinel_id" json:"sentinel_id"`
	SweepID    string          `db:"sweep_id" json:"sweep_id"`
	FiredAt    time.Time       `db:"fired_at" json:"fired_at"`
	Outcome    DispatchOutcome `db:"outcome" json:"outcome"`
	Payload    Payload         `db:"payload" json:"payload"`
	ErrorNote  string          `db:"error_note" json:"error_note,omitempty"`
}

// DispatchReportRow is the denormalized dispatch view replicated into
// ClickHouse (fed from the dispatch event stream) for reporting queries.
type DispatchReportRow struct {
	SentinelID  string          `db:"sentinel_id" json:"sentinel_id"`
	SweepID     string          `db:"sweep_id" json:"sweep_id"`
	Owner       string          `db:"owner" json:"owner"`
	EventName   string          `db:"event_name" json:"event_name"`
	TriggerDate window.Date     `db:"trigger_date" json:"trigger_date"`
	Outcome     DispatchOutcome `db:"outcome" json:"outcome"`
	FiredAt     time.Time       `db:"fired_at" json:"fired_at"`
}
