package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/kbtale/lease-sentinel/internal/model"
)

// CHDispatchesRepository lists dispatch attempts from ClickHouse (the
// denormalized view fed by the dispatch event stream).
type CHDispatchesRepository interface {
	ListByOwner(ctx context.Context, owner string, outcome model.DispatchOutcome, limit, offset int) ([]model.DispatchReportRow, error)
}

type chDispatchesRepository struct {
	ch *sqlx.DB // ClickHouse connection
}

func NewCHDispatchesRepository(ch *sqlx.DB) CHDispatchesRepository {
	return &chDispatchesRepository{ch: ch}
}

func (r *chDispatchesRepository) ListByOwner(ctx context.Context, owner string, outcome model.DispatchOutcome, limit, offset int) ([]model.DispatchReportRow, error) {
	if limit <= 0 || limit > 1000 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	q := `
		SELECT sentinel_id, sweep_id, owner, event_name, trigger_date, outcome, fired_at
		FROM sentinel.dispatches_latest
		WHERE owner = ?
	`
	args := []any{owner}

	if outcome != "" {
		q += " AND outcome = ?"
		args = append(args, outcome.String())
	}

	q += " ORDER BY fired_at DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	var rows []model.DispatchReportRow
	if err := r.ch.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, err
	}
	return rows, nil
}
