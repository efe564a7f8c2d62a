package sweep

import (
	"context"

	"github.com/kbtale/lease-sentinel/internal/model"
	"github.com/kbtale/lease-sentinel/internal/window"
)

// Selector picks the records one sweep will process. It is the replaceable
// piece of the pipeline: everything after selection is selection-agnostic.
type Selector interface {
	SelectDue(ctx context.Context, store Store, today window.Date) ([]model.SentinelRecord, error)
}

// ExactDate selects pending records whose trigger date is today. A record
// that stayed pending past its trigger date is not reselected on later days.
type ExactDate struct{}

func (ExactDate) SelectDue(ctx context.Context, store Store, today window.Date) ([]model.SentinelRecord, error) {
	return store.FindDue(ctx, today, model.StatusPending)
}

// Lookback selects pending records due today or up to Days before it, so a
// record whose dispatch failed keeps being retried while overdue.
type Lookback struct {
	Days int
}

func (l Lookback) SelectDue(ctx context.Context, store Store, today window.Date) ([]model.SentinelRecord, error) {
	days := l.Days
	if days < 0 {
		days = 0
	}

	var out []model.SentinelRecord
	for i := 0; i <= days; i++ {
		recs, err := store.FindDue(ctx, today.AddDays(-i), model.StatusPending)
		if err != nil {
			return nil, err
		}
		out = append(out, recs...)
	}
	return out, nil
}
