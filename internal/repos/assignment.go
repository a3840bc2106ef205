package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shimms/shimms-backend/internal/logger"
	pkgerr "github.com/shimms/shimms-backend/internal/pkg/errors"
	"github.com/shimms/shimms-backend/internal/types"
)

type AssignmentRepo interface {
	Create(ctx context.Context, tx *gorm.DB, assignment *types.CoachClientAssignment) error
	// HasActive reports whether an active coach->client assignment row exists.
	HasActive(ctx context.Context, tx *gorm.DB, coachID, clientID uuid.UUID) (bool, error)
	SetActive(ctx context.Context, tx *gorm.DB, coachID, clientID uuid.UUID, active bool) error
	ListClientsByCoach(ctx context.Context, tx *gorm.DB, coachID uuid.UUID) ([]*types.CoachClientAssignment, error)
}

type assignmentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAssignmentRepo(db *gorm.DB, baseLog *logger.Logger) AssignmentRepo {
	repoLog := baseLog.With("repo", "AssignmentRepo")
	return &assignmentRepo{db: db, log: repoLog}
}

func (r *assignmentRepo) Create(ctx context.Context, tx *gorm.DB, assignment *types.CoachClientAssignment) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(assignment).Error
}

func (r *assignmentRepo) HasActive(ctx context.Context, tx *gorm.DB, coachID, clientID uuid.UUID) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.CoachClientAssignment{}).
		Where("coach_id = ? AND client_id = ? AND is_active = ?", coachID, clientID, true).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *assignmentRepo) SetActive(ctx context.Context, tx *gorm.DB, coachID, clientID uuid.UUID, active bool) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(ctx).
		Model(&types.CoachClientAssignment{}).
		Where("coach_id = ? AND client_id = ?", coachID, clientID).
		Update("is_active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerr.ErrNotFound
	}
	return nil
}

func (r *assignmentRepo) ListClientsByCoach(ctx context.Context, tx *gorm.DB, coachID uuid.UUID) ([]*types.CoachClientAssignment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.CoachClientAssignment
	if err := transaction.WithContext(ctx).
		Where("coach_id = ? AND is_active = ?", coachID, true).
		Find(&results).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return results, nil
}
