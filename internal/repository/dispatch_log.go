package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/kbtale/lease-sentinel/internal/model"
)

// DispatchLogRepository defines persistence for the append-only dispatch_log
// table. Rows are inserted once per attempt and never updated or deleted.
type DispatchLogRepository interface {
	// Append writes a single log row. If tx is nil, it opens and commits an
	// internal transaction; otherwise it uses the given tx.
	Append(ctx context.Context, tx *sqlx.Tx, entry model.DispatchLogEntry) error
	ListBySentinel(ctx context.Context, sentinelID string, limit int) ([]model.DispatchLogEntry, error)
}

// DispatchLogRepositoryImpl is a sqlx-backed implementation.
type DispatchLogRepositoryImpl struct {
	db *sqlx.DB
}

func NewDispatchLogRepository(db *sqlx.DB) *DispatchLogRepositoryImpl {
	return &DispatchLogRepositoryImpl{db: db}
}

var _ DispatchLogRepository = (*DispatchLogRepositoryImpl)(nil)

// withTx runs fn in the provided tx, or starts a new transaction when tx is nil.
func (r *DispatchLogRepositoryImpl) withTx(ctx context.Context, tx *sqlx.Tx, fn func(*sqlx.Tx) error) error {
	if tx != nil {
		return fn(tx)
	}

	t, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() { _ = t.Rollback() }()
	if err := fn(t); err != nil {
		return err
	}

	return t.Commit()
}

func (r *DispatchLogRepositoryImpl) Append(ctx context.Context, tx *sqlx.Tx, entry model.DispatchLogEntry) error {
	const q = `
		INSERT INTO dispatch_log (id, sentinel_id, sweep_id, fired_at, outcome, payload, error_note)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	return r.withTx(ctx, tx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, q,
			entry.ID, entry.SentinelID, entry.SweepID, entry.FiredAt,
			entry.Outcome.String(), entry.Payload, entry.ErrorNote,
		)
		return err
	})
}

func (r *DispatchLogRepositoryImpl) ListBySentinel(ctx context.Context, sentinelID string, limit int) ([]model.DispatchLogEntry, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}

	var rows []model.DispatchLogEntry
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, sentinel_id, sweep_id, fired_at, outcome, payload, error_note
		  FROM dispatch_log
		 WHERE sentinel_id = ?
		 ORDER BY fired_at DESC
		 LIMIT ?
	`, sentinelID, limit)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
