// Package sweep runs the dispatch pipeline over due sentinels: select the
// pending records for the day, fan out one delivery attempt per record, move
// delivered records to fired, and append one audit log row per attempt.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/kbtale/lease-sentinel/internal/logger"
	"github.com/kbtale/lease-sentinel/internal/metrics"
	"github.com/kbtale/lease-sentinel/internal/model"
	"github.com/kbtale/lease-sentinel/internal/notify"
	"github.com/kbtale/lease-sentinel/internal/util"
	"github.com/kbtale/lease-sentinel/internal/window"
	"go.uber.org/zap"
)

// ErrStatusConflict is returned by Store.UpdateStatus when the row is no
// longer in a state the transition is allowed from. Fired sentinels never
// regress to pending.
var ErrStatusConflict = errors.New("status conflict: sentinel already in terminal state")

// FailedNote is the fixed annotation written on failed dispatch log entries.
const FailedNote = "dispatch failed"

// Store is the minimal surface the sweeper requires of the record store.
// UpdateStatus must be atomic per row and reject terminal-state regressions
// with ErrStatusConflict.
type Store interface {
	FindDue(ctx context.Context, date window.Date, status model.SentinelStatus) ([]model.SentinelRecord, error)
	UpdateStatus(ctx context.Context, id string, status model.SentinelStatus) error
	AppendLog(ctx context.Context, entry model.DispatchLogEntry) error
}

// EventSink receives one fire-and-forget event per dispatch attempt.
type EventSink interface {
	Record(ctx context.Context, ev model.DispatchEvent)
}

// Report aggregates one sweep. Processed counts the records matched by the
// selection, not the successes.
type Report struct {
	SweepID   string
	Date      window.Date
	Processed int
	Fired     int
	Failed    int
	Duration  time.Duration
}

// Sweeper orchestrates one sweep at a time. Sweeps are stateless; nothing is
// shared across runs except what lives in the store.
type Sweeper struct {
	store       Store
	notifier    notify.Notifier
	selector    Selector
	events      EventSink // optional, nil = disabled
	maxInFlight int
	now         func() time.Time
}

// New builds a sweeper with the exact-date selector and defaults.
func New(store Store, notifier notify.Notifier) *Sweeper {
	return &Sweeper{
		store:       store,
		notifier:    notifier,
		selector:    ExactDate{},
		maxInFlight: 16,
		now:         time.Now,
	}
}

// WithSelector replaces the selection strategy.
func (s *Sweeper) WithSelector(sel Selector) *Sweeper {
	if sel != nil {
		s.selector = sel
	}
	return s
}

// WithEvents attaches a dispatch event sink.
func (s *Sweeper) WithEvents(sink EventSink) *Sweeper {
	s.events = sink
	return s
}

// WithMaxInFlight bounds concurrent dispatch units.
func (s *Sweeper) WithMaxInFlight(n int) *Sweeper {
	if n > 0 {
		s.maxInFlight = n
	}
	return s
}

// WithClock injects the time source deciding which day the sweep covers.
func (s *Sweeper) WithClock(now func() time.Time) *Sweeper {
	if now != nil {
		s.now = now
	}
	return s
}

// Run executes one sweep. A selection failure is fatal and nothing is
// processed; every selected record gets exactly one isolated dispatch unit,
// and Run returns only after all units have settled. Per-record store
// failures are logged anomalies, never sweep errors.
func (s *Sweeper) Run(ctx context.Context) (Report, error) {
	start := time.Now()
	sweepID := uuid.NewString()
	today := window.FromTime(s.now())

	records, err := s.selector.SelectDue(ctx, s.store, today)
	if err != nil {
		metrics.SweepsTotal.WithLabelValues("error").Inc()
		return Report{}, fmt.Errorf("select due sentinels: %w", err)
	}

	var fired, failed atomic.Int64

	var g errgroup.Group
	g.SetLimit(s.maxInFlight)

	for _, rec := range records {
		rec := rec
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					failed.Add(1)
					logger.Log.Error("sweep unit panic",
						zap.String("sweep_id", sweepID),
						zap.String("sentinel_id", rec.ID),
						zap.Any("panic", r),
					)
				}
			}()
			if s.dispatchOne(ctx, sweepID, rec) {
				fired.Add(1)
			} else {
				failed.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	rep := Report{
		SweepID:   sweepID,
		Date:      today,
		Processed: len(records),
		Fired:     int(fired.Load()),
		Failed:    int(failed.Load()),
		Duration:  time.Since(start),
	}

	metrics.SweepsTotal.WithLabelValues("ok").Inc()
	metrics.SweepDurationSeconds.Observe(rep.Duration.Seconds())
	logger.Log.Info("sweep complete",
		zap.String("sweep_id", sweepID),
		zap.String("date", today.String()),
		zap.Int("processed", rep.Processed),
		zap.Int("fired", rep.Fired),
		zap.Int("failed", rep.Failed),
		zap.Duration("took", rep.Duration),
	)
	return rep, nil
}

// dispatchOne runs one record's unit strictly in order: dispatch, then the
// conditional status update, then the log append. The log row must reflect
// the dispatch that actually happened.
func (s *Sweeper) dispatchOne(ctx context.Context, sweepID string, rec model.SentinelRecord) bool {
	payload := model.Payload{
		"sentinel_id":         rec.ID,
		"owner":               rec.Owner,
		"event_name":          rec.EventName,
		"trigger_date":        rec.TriggerDate.String(),
		"original_text":       rec.OriginalText,
		"notification_target": rec.NotificationTarget,
	}

	res := s.notifier.Notify(ctx, rec.NotificationTarget, payload)
	firedAt := s.now()

	entry := model.DispatchLogEntry{
		ID:         util.NewID(),
		SentinelID: rec.ID,
		SweepID:    sweepID,
		FiredAt:    firedAt,
		Payload:    payload,
	}

	if res.Delivered {
		metrics.DispatchesTotal.WithLabelValues("success").Inc()
		entry.Outcome = model.OutcomeSuccess
		if err := s.store.UpdateStatus(ctx, rec.ID, model.StatusFired); err != nil {
			logger.Log.Error("status update failed after delivery",
				zap.String("sweep_id", sweepID),
				zap.String("sentinel_id", rec.ID),
				zap.Error(err),
			)
		}
	} else {
		metrics.DispatchesTotal.WithLabelValues("failed").Inc()
		metrics.DispatchFailuresTotal.WithLabelValues(res.FailureClass).Inc()
		entry.Outcome = model.OutcomeFailed
		entry.ErrorNote = FailedNote
		logger.Log.Warn("dispatch failed, sentinel stays pending",
			zap.String("sweep_id", sweepID),
			zap.String("sentinel_id", rec.ID),
			zap.String("class", res.FailureClass),
			zap.Int("status", res.StatusCode),
			zap.Duration("took", res.Duration),
		)
	}

	if err := s.store.AppendLog(ctx, entry); err != nil {
		logger.Log.Error("dispatch log append failed",
			zap.String("sweep_id", sweepID),
			zap.String("sentinel_id", rec.ID),
			zap.Error(err),
		)
	}

	if s.events != nil {
		s.events.Record(ctx, model.DispatchEvent{
			SweepID:     sweepID,
			SentinelID:  rec.ID,
			Owner:       rec.Owner,
			EventName:   rec.EventName,
			TriggerDate: rec.TriggerDate.String(),
			Outcome:     entry.Outcome.String(),
			FiredAt:     firedAt,
		})
	}

	return res.Delivered
}
