package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shimms/shimms-backend/internal/logger"
	pkgerr "github.com/shimms/shimms-backend/internal/pkg/errors"
	"github.com/shimms/shimms-backend/internal/types"
)

type JourneyStateRepo interface {
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.JourneyState, error)
	// Upsert overwrites the single per-user row; last write wins.
	Upsert(ctx context.Context, tx *gorm.DB, state *types.JourneyState) error
}

type journeyStateRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewJourneyStateRepo(db *gorm.DB, baseLog *logger.Logger) JourneyStateRepo {
	repoLog := baseLog.With("repo", "JourneyStateRepo")
	return &journeyStateRepo{db: db, log: repoLog}
}

func (r *journeyStateRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.JourneyState, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var result types.JourneyState
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerr.ErrNotFound
		}
		return nil, err
	}
	return &result, nil
}

func (r *journeyStateRepo) Upsert(ctx context.Context, tx *gorm.DB, state *types.JourneyState) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	// Conflict resolution keys on user_id; a loaded row keeps its id so the
	// caller sees the stored identifier, a fresh state gets a new one.
	if state.ID == uuid.Nil {
		state.ID = uuid.New()
	}
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"current_phase",
				"journey_progress",
				"completed_assessments",
				"next_recommended_assessment",
				"metadata",
				"last_activity_at",
				"updated_at",
			}),
		}).
		Create(state).Error
}
