package sentinel

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/kbtale/lease-sentinel/internal/metrics"
	"github.com/kbtale/lease-sentinel/internal/model"
	"github.com/kbtale/lease-sentinel/internal/repository"
	"github.com/kbtale/lease-sentinel/internal/util"
	"github.com/kbtale/lease-sentinel/internal/window"
)

var (
	ErrValidation = errors.New("invalid sentinel")
	ErrNotFound   = errors.New("sentinel not found")
)

const (
	maxEventNameLen    = 200
	maxOriginalTextLen = 2000
	maxTargetLen       = 2048
	maxNoticeWindow    = 365
)

// Service owns the sentinel lifecycle on the API side: creation in pending
// state plus the read paths (list, approaching deadlines, audit trail). The
// sweep is the only writer of status transitions.
type Service struct {
	sentinels  repository.SentinelsRepository
	log        repository.DispatchLogRepository
	noticeDays int
	now        func() time.Time
}

func New(sentinels repository.SentinelsRepository, log repository.DispatchLogRepository, noticeDays int) *Service {
	if noticeDays <= 0 {
		noticeDays = 30
	}
	return &Service{
		sentinels:  sentinels,
		log:        log,
		noticeDays: noticeDays,
		now:        time.Now,
	}
}

// WithClock injects the time source; tests pin it.
func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

type CreateInput struct {
	Owner              string
	EventName          string
	TriggerDate        string
	OriginalText       string
	NotificationMethod string
	NotificationTarget string
}

// Create validates the input, assigns a ULID and pending status, and
// persists the record. The trigger date must parse as YYYY-MM-DD; past
// dates are accepted (the sweep simply never selects them under exact-date
// selection).
func (s *Service) Create(ctx context.Context, in CreateInput) (*model.SentinelRecord, error) {
	owner := strings.TrimSpace(in.Owner)
	eventName := strings.TrimSpace(in.EventName)
	originalText := strings.TrimSpace(in.OriginalText)
	target := strings.TrimSpace(in.NotificationTarget)

	if owner == "" {
		return nil, fmt.Errorf("%w: owner required", ErrValidation)
	}
	if eventName == "" {
		return nil, fmt.Errorf("%w: event name required", ErrValidation)
	}
	if utf8.RuneCountInString(eventName) > maxEventNameLen {
		return nil, fmt.Errorf("%w: event name too long", ErrValidation)
	}
	if utf8.RuneCountInString(originalText) > maxOriginalTextLen {
		return nil, fmt.Errorf("%w: original text too long", ErrValidation)
	}
	if target == "" {
		return nil, fmt.Errorf("%w: notification target required", ErrValidation)
	}
	if len(target) > maxTargetLen {
		return nil, fmt.Errorf("%w: notification target too long", ErrValidation)
	}

	method, ok := model.ParseNotificationMethod(in.NotificationMethod)
	if !ok {
		return nil, fmt.Errorf("%w: unknown notification method %q", ErrValidation, in.NotificationMethod)
	}

	triggerDate, err := window.Parse(strings.TrimSpace(in.TriggerDate))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	now := s.now().UTC().Truncate(time.Second)
	rec := model.SentinelRecord{
		ID:                 util.NewID(),
		Owner:              owner,
		EventName:          eventName,
		TriggerDate:        triggerDate,
		OriginalText:       originalText,
		NotificationMethod: method,
		NotificationTarget: target,
		Status:             model.StatusPending,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.sentinels.Insert(ctx, nil, rec); err != nil {
		return nil, fmt.Errorf("insert sentinel: %w", err)
	}
	metrics.SentinelsCreatedTotal.Inc()

	return &rec, nil
}

func (s *Service) List(ctx context.Context, owner string, status model.SentinelStatus, limit, offset int) ([]model.SentinelRecord, error) {
	return s.sentinels.ListByOwner(ctx, owner, status, limit, offset)
}

// Upcoming returns the owner's pending sentinels whose trigger date falls
// within the notice window from today, inclusive on both ends.
func (s *Service) Upcoming(ctx context.Context, owner string, windowDays int) ([]model.SentinelRecord, error) {
	if windowDays <= 0 {
		windowDays = s.noticeDays
	}
	if windowDays > maxNoticeWindow {
		windowDays = maxNoticeWindow
	}

	recs, err := s.sentinels.ListByOwner(ctx, owner, model.StatusPending, 1000, 0)
	if err != nil {
		return nil, fmt.Errorf("list pending sentinels: %w", err)
	}

	today := window.FromTime(s.now())
	out := make([]model.SentinelRecord, 0, len(recs))
	for _, rec := range recs {
		if window.WithinWindow(rec.TriggerDate, today, windowDays) {
			out = append(out, rec)
		}
	}
	return out, nil
}

// AuditTrail returns the dispatch attempts for one sentinel. Records owned
// by someone else resolve to ErrNotFound rather than a distinct error.
func (s *Service) AuditTrail(ctx context.Context, owner, id string) ([]model.DispatchLogEntry, error) {
	rec, err := s.sentinels.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get sentinel: %w", err)
	}
	if rec == nil || rec.Owner != owner {
		return nil, ErrNotFound
	}
	return s.log.ListBySentinel(ctx, id, 100)
}
