package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/kbtale/lease-sentinel/internal/model"
	"github.com/kbtale/lease-sentinel/internal/sweep"
	"github.com/kbtale/lease-sentinel/internal/window"
)

// SentinelsRepository defines persistence for the sentinels table.
type SentinelsRepository interface {
	Insert(ctx context.Context, tx *sqlx.Tx, rec model.SentinelRecord) error
	GetByID(ctx context.Context, id string) (*model.SentinelRecord, error)
	FindDue(ctx context.Context, date window.Date, status model.SentinelStatus) ([]model.SentinelRecord, error)
	// UpdateStatus sets the sentinel status. The update is guarded in SQL:
	// fired is terminal, so rows not in pending state are rejected with
	// sweep.ErrStatusConflict. This keeps replayed sweeps idempotent.
	UpdateStatus(ctx context.Context, id string, status model.SentinelStatus) error
	ListByOwner(ctx context.Context, owner string, status model.SentinelStatus, limit, offset int) ([]model.SentinelRecord, error)
}

type SentinelsRepositoryImpl struct {
	db *sqlx.DB
}

func NewSentinelsRepository(db *sqlx.DB) *SentinelsRepositoryImpl {
	return &SentinelsRepositoryImpl{db: db}
}

var _ SentinelsRepository = (*SentinelsRepositoryImpl)(nil)

func (r *SentinelsRepositoryImpl) withTx(ctx context.Context, tx *sqlx.Tx, fn func(*sqlx.Tx) error) error {
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

// Insert writes a new sentinel row. Timestamps come from the caller so the
// returned record matches what was stored.
func (r *SentinelsRepositoryImpl) Insert(ctx context.Context, tx *sqlx.Tx, rec model.SentinelRecord) error {
	const q = `
		INSERT INTO sentinels
		    (id, owner, event_name, trigger_date, original_text, notification_method, notification_target, status, created_at, updated_at)
		VALUES
		    (?,  ?,     ?,          ?,            ?,             ?,                   ?,                   ?,      ?,          ?)
	`
	return r.withTx(ctx, tx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, q,
			rec.ID, rec.Owner, rec.EventName, rec.TriggerDate, rec.OriginalText,
			rec.NotificationMethod.String(), rec.NotificationTarget, rec.Status.String(),
			rec.CreatedAt, rec.UpdatedAt,
		)
		return err
	})
}

func (r *SentinelsRepositoryImpl) GetByID(ctx context.Context, id string) (*model.SentinelRecord, error) {
	var rec model.SentinelRecord
	err := r.db.GetContext(ctx, &rec, `
		SELECT id, owner, event_name, trigger_date, original_text, notification_method, notification_target, status, created_at, updated_at
		  FROM sentinels
		 WHERE id = ? LIMIT 1
	`, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// FindDue returns all records with the exact trigger date and status. The
// sweep calls this once per selected day.
func (r *SentinelsRepositoryImpl) FindDue(ctx context.Context, date window.Date, status model.SentinelStatus) ([]model.SentinelRecord, error) {
	var rows []model.SentinelRecord
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, owner, event_name, trigger_date, original_text, notification_method, notification_target, status, created_at, updated_at
		  FROM sentinels
		 WHERE trigger_date = ? AND status = ?
	`, date, status.String())
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *SentinelsRepositoryImpl) UpdateStatus(ctx context.Context, id string, status model.SentinelStatus) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE sentinels
		   SET status = ?, updated_at = NOW()
		 WHERE id = ? AND status = ?
	`, status.String(), id, model.StatusPending.String())
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sweep.ErrStatusConflict
	}
	return nil
}

func (r *SentinelsRepositoryImpl) ListByOwner(ctx context.Context, owner string, status model.SentinelStatus, limit, offset int) ([]model.SentinelRecord, error) {
	if limit <= 0 || limit > 1000 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	q := `
		SELECT id, owner, event_name, trigger_date, original_text, notification_method, notification_target, status, created_at, updated_at
		  FROM sentinels
		 WHERE owner = ?
	`
	args := []any{owner}

	if status != "" {
		q += " AND status = ?"
		args = append(args, status.String())
	}

	q += " ORDER BY trigger_date ASC, id ASC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	var rows []model.SentinelRecord
	if err := r.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, err
	}
	return rows, nil
}
