package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shimms/shimms-backend/internal/logger"
	pkgerr "github.com/shimms/shimms-backend/internal/pkg/errors"
	"github.com/shimms/shimms-backend/internal/types"
)

type PathEntryRepo interface {
	Create(ctx context.Context, tx *gorm.DB, entries []*types.PathEntry) ([]*types.PathEntry, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, visibleOnly bool) ([]*types.PathEntry, error)
	CountByTypeAndStatus(ctx context.Context, tx *gorm.DB, userID uuid.UUID, entryType, status string) (int64, error)
	CountByType(ctx context.Context, tx *gorm.DB, userID uuid.UUID, entryType string) (int64, error)
	// UpdateStatus only touches rows owned by userID; a foreign id is
	// ErrNotFound.
	UpdateStatus(ctx context.Context, tx *gorm.DB, userID, id uuid.UUID, status string) error
}

type pathEntryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPathEntryRepo(db *gorm.DB, baseLog *logger.Logger) PathEntryRepo {
	repoLog := baseLog.With("repo", "PathEntryRepo")
	return &pathEntryRepo{db: db, log: repoLog}
}

func (r *pathEntryRepo) Create(ctx context.Context, tx *gorm.DB, entries []*types.PathEntry) ([]*types.PathEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(entries) == 0 {
		return []*types.PathEntry{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *pathEntryRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, visibleOnly bool) ([]*types.PathEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(ctx).Where("user_id = ?", userID)
	if visibleOnly {
		q = q.Where("visible_to_client = ?", true)
	}
	var results []*types.PathEntry
	if err := q.Order("timestamp DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *pathEntryRepo) CountByTypeAndStatus(ctx context.Context, tx *gorm.DB, userID uuid.UUID, entryType, status string) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.PathEntry{}).
		Where("user_id = ? AND type = ? AND status = ?", userID, entryType, status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *pathEntryRepo) CountByType(ctx context.Context, tx *gorm.DB, userID uuid.UUID, entryType string) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.PathEntry{}).
		Where("user_id = ? AND type = ?", userID, entryType).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *pathEntryRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, userID, id uuid.UUID, status string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(ctx).
		Model(&types.PathEntry{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerr.ErrNotFound
	}
	return nil
}
