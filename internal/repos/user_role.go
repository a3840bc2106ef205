package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shimms/shimms-backend/internal/logger"
	"github.com/shimms/shimms-backend/internal/types"
)

type UserRoleRepo interface {
	// Assign is a no-op when the (user, role) row already exists.
	Assign(ctx context.Context, tx *gorm.DB, userID uuid.UUID, role string) error
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]string, error)
	Remove(ctx context.Context, tx *gorm.DB, userID uuid.UUID, role string) error
}

type userRoleRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRoleRepo(db *gorm.DB, baseLog *logger.Logger) UserRoleRepo {
	repoLog := baseLog.With("repo", "UserRoleRepo")
	return &userRoleRepo{db: db, log: repoLog}
}

func (r *userRoleRepo) Assign(ctx context.Context, tx *gorm.DB, userID uuid.UUID, role string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	row := types.UserRole{ID: uuid.New(), UserID: userID, Role: role}
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "role"}},
			DoNothing: true,
		}).
		Create(&row).Error
}

func (r *userRoleRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]string, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var roles []string
	if err := transaction.WithContext(ctx).
		Model(&types.UserRole{}).
		Where("user_id = ?", userID).
		Pluck("role", &roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

func (r *userRoleRepo) Remove(ctx context.Context, tx *gorm.DB, userID uuid.UUID, role string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Where("user_id = ? AND role = ?", userID, role).
		Delete(&types.UserRole{}).Error
}
