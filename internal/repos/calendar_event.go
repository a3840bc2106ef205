package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shimms/shimms-backend/internal/logger"
	pkgerr "github.com/shimms/shimms-backend/internal/pkg/errors"
	"github.com/shimms/shimms-backend/internal/types"
)

type CalendarEventRepo interface {
	Create(ctx context.Context, tx *gorm.DB, event *types.CalendarEvent) error
	ListByUserBetween(ctx context.Context, tx *gorm.DB, userID uuid.UUID, from, to time.Time, visibleOnly bool) ([]*types.CalendarEvent, error)
	// Delete only touches rows owned by userID; a foreign id is ErrNotFound.
	Delete(ctx context.Context, tx *gorm.DB, userID, id uuid.UUID) error
}

type calendarEventRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCalendarEventRepo(db *gorm.DB, baseLog *logger.Logger) CalendarEventRepo {
	repoLog := baseLog.With("repo", "CalendarEventRepo")
	return &calendarEventRepo{db: db, log: repoLog}
}

func (r *calendarEventRepo) Create(ctx context.Context, tx *gorm.DB, event *types.CalendarEvent) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(event).Error
}

func (r *calendarEventRepo) ListByUserBetween(ctx context.Context, tx *gorm.DB, userID uuid.UUID, from, to time.Time, visibleOnly bool) ([]*types.CalendarEvent, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(ctx).
		Where("user_id = ? AND starts_at >= ? AND starts_at < ?", userID, from, to)
	if visibleOnly {
		q = q.Where("visible_to_client = ?", true)
	}
	var results []*types.CalendarEvent
	if err := q.Order("starts_at ASC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *calendarEventRepo) Delete(ctx context.Context, tx *gorm.DB, userID, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&types.CalendarEvent{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerr.ErrNotFound
	}
	return nil
}
