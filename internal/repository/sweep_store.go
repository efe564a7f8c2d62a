package repository

import (
	"context"

	"github.com/kbtale/lease-sentinel/internal/model"
	"github.com/kbtale/lease-sentinel/internal/sweep"
	"github.com/kbtale/lease-sentinel/internal/window"
)

// SweepStore adapts the sentinel and dispatch log repositories to the
// minimal store surface the sweeper requires.
type SweepStore struct {
	sentinels SentinelsRepository
	log       DispatchLogRepository
}

func NewSweepStore(sentinels SentinelsRepository, log DispatchLogRepository) *SweepStore {
	return &SweepStore{sentinels: sentinels, log: log}
}

var _ sweep.Store = (*SweepStore)(nil)

func (s *SweepStore) FindDue(ctx context.Context, date window.Date, status model.SentinelStatus) ([]model.SentinelRecord, error) {
	return s.sentinels.FindDue(ctx, date, status)
}

func (s *SweepStore) UpdateStatus(ctx context.Context, id string, status model.SentinelStatus) error {
	return s.sentinels.UpdateStatus(ctx, id, status)
}

func (s *SweepStore) AppendLog(ctx context.Context, entry model.DispatchLogEntry) error {
	return s.log.Append(ctx, nil, entry)
}
