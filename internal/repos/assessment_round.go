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

type AssessmentRoundRepo interface {
	Create(ctx context.Context, tx *gorm.DB, round *types.AssessmentRound) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.AssessmentRound, error)
	GetLatestByUserAndKind(ctx context.Context, tx *gorm.DB, userID uuid.UUID, kind string) (*types.AssessmentRound, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.AssessmentRound, error)
	// ListMissingAnalysis feeds the operator-triggered consolidation pass.
	ListMissingAnalysis(ctx context.Context, tx *gorm.DB, limit int) ([]*types.AssessmentRound, error)
	// AttachAnalysis sets ai_analysis only when it is still null; the round is
	// immutable once analysis is attached.
	AttachAnalysis(ctx context.Context, tx *gorm.DB, id uuid.UUID, analysis string) error
	CountDistinctKindsByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, exclude ...string) (int64, error)
}

type assessmentRoundRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAssessmentRoundRepo(db *gorm.DB, baseLog *logger.Logger) AssessmentRoundRepo {
	repoLog := baseLog.With("repo", "AssessmentRoundRepo")
	return &assessmentRoundRepo{db: db, log: repoLog}
}

func (r *assessmentRoundRepo) Create(ctx context.Context, tx *gorm.DB, round *types.AssessmentRound) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(round).Error
}

func (r *assessmentRoundRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.AssessmentRound, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var result types.AssessmentRound
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerr.ErrNotFound
		}
		return nil, err
	}
	return &result, nil
}

func (r *assessmentRoundRepo) GetLatestByUserAndKind(ctx context.Context, tx *gorm.DB, userID uuid.UUID, kind string) (*types.AssessmentRound, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var result types.AssessmentRound
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND pillar_type = ?", userID, kind).
		Order("created_at DESC").
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerr.ErrNotFound
		}
		return nil, err
	}
	return &result, nil
}

func (r *assessmentRoundRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.AssessmentRound, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.AssessmentRound
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *assessmentRoundRepo) ListMissingAnalysis(ctx context.Context, tx *gorm.DB, limit int) ([]*types.AssessmentRound, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.AssessmentRound
	if err := transaction.WithContext(ctx).
		Where("ai_analysis IS NULL").
		Order("created_at ASC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *assessmentRoundRepo) AttachAnalysis(ctx context.Context, tx *gorm.DB, id uuid.UUID, analysis string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(ctx).
		Model(&types.AssessmentRound{}).
		Where("id = ? AND ai_analysis IS NULL", id).
		Update("ai_analysis", analysis)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerr.ErrConflict
	}
	return nil
}

func (r *assessmentRoundRepo) CountDistinctKindsByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, exclude ...string) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(ctx).
		Model(&types.AssessmentRound{}).
		Where("user_id = ?", userID)
	if len(exclude) > 0 {
		q = q.Where("pillar_type NOT IN ?", exclude)
	}
	var count int64
	if err := q.Distinct("pillar_type").Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
