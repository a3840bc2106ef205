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

// TaskCounts feeds the journey progress calculation.
type TaskCounts struct {
	Total     int64
	Completed int64
}

type TaskRepo interface {
	Create(ctx context.Context, tx *gorm.DB, tasks []*types.Task) ([]*types.Task, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Task, error)
	// Complete only touches rows owned by userID; a foreign or already
	// completed id is ErrNotFound.
	Complete(ctx context.Context, tx *gorm.DB, userID, id uuid.UUID) error
	CountsByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (TaskCounts, error)
}

type taskRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTaskRepo(db *gorm.DB, baseLog *logger.Logger) TaskRepo {
	repoLog := baseLog.With("repo", "TaskRepo")
	return &taskRepo{db: db, log: repoLog}
}

func (r *taskRepo) Create(ctx context.Context, tx *gorm.DB, tasks []*types.Task) ([]*types.Task, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(tasks) == 0 {
		return []*types.Task{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *taskRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Task, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Task
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *taskRepo) Complete(ctx context.Context, tx *gorm.DB, userID, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	now := time.Now()
	res := transaction.WithContext(ctx).
		Model(&types.Task{}).
		Where("id = ? AND user_id = ? AND status <> ?", id, userID, types.TaskCompleted).
		Updates(map[string]interface{}{
			"status":       types.TaskCompleted,
			"completed_at": now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerr.ErrNotFound
	}
	return nil
}

func (r *taskRepo) CountsByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (TaskCounts, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var counts TaskCounts
	if err := transaction.WithContext(ctx).
		Model(&types.Task{}).
		Where("user_id = ?", userID).
		Count(&counts.Total).Error; err != nil {
		return TaskCounts{}, err
	}
	if err := transaction.WithContext(ctx).
		Model(&types.Task{}).
		Where("user_id = ? AND status = ?", userID, types.TaskCompleted).
		Count(&counts.Completed).Error; err != nil {
		return TaskCounts{}, err
	}
	return counts, nil
}
