package repos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shimms/shimms-backend/internal/logger"
	pkgerr "github.com/shimms/shimms-backend/internal/pkg/errors"
	"github.com/shimms/shimms-backend/internal/types"
)

type AssessmentDraftRepo interface {
	// Upsert creates the draft row on first save and overwrites form data and
	// last_saved_at on every later save.
	Upsert(ctx context.Context, tx *gorm.DB, userID uuid.UUID, kind string, formData datatypes.JSON) (*types.AssessmentDraft, error)
	GetByUserAndKind(ctx context.Context, tx *gorm.DB, userID uuid.UUID, kind string) (*types.AssessmentDraft, error)
	// Delete is idempotent: deleting a missing draft is not an error.
	Delete(ctx context.Context, tx *gorm.DB, userID uuid.UUID, kind string) error
}

type assessmentDraftRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAssessmentDraftRepo(db *gorm.DB, baseLog *logger.Logger) AssessmentDraftRepo {
	repoLog := baseLog.With("repo", "AssessmentDraftRepo")
	return &assessmentDraftRepo{db: db, log: repoLog}
}

func (r *assessmentDraftRepo) Upsert(ctx context.Context, tx *gorm.DB, userID uuid.UUID, kind string, formData datatypes.JSON) (*types.AssessmentDraft, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	now := time.Now()
	draft := types.AssessmentDraft{
		ID:          uuid.New(),
		UserID:      userID,
		Kind:        kind,
		FormData:    formData,
		LastSavedAt: now,
	}
	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "assessment_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"form_data", "last_saved_at", "updated_at"}),
		}).
		Create(&draft).Error; err != nil {
		return nil, err
	}
	return &draft, nil
}

func (r *assessmentDraftRepo) GetByUserAndKind(ctx context.Context, tx *gorm.DB, userID uuid.UUID, kind string) (*types.AssessmentDraft, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var result types.AssessmentDraft
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND assessment_key = ?", userID, kind).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerr.ErrNotFound
		}
		return nil, err
	}
	return &result, nil
}

func (r *assessmentDraftRepo) Delete(ctx context.Context, tx *gorm.DB, userID uuid.UUID, kind string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Where("user_id = ? AND assessment_key = ?", userID, kind).
		Delete(&types.AssessmentDraft{}).Error
}
