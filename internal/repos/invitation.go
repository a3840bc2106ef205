package repos

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/google/uuid"

	"github.com/shimms/shimms-backend/internal/logger"
	pkgerr "github.com/shimms/shimms-backend/internal/pkg/errors"
	"github.com/shimms/shimms-backend/internal/types"
)

type InvitationRepo interface {
	Create(ctx context.Context, tx *gorm.DB, inv *types.Invitation) error
	GetByToken(ctx context.Context, tx *gorm.DB, token string) (*types.Invitation, error)
	// MarkAccepted flips pending -> accepted exactly once; a second call for
	// the same row returns ErrConflict.
	MarkAccepted(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	ListByInviter(ctx context.Context, tx *gorm.DB, invitedBy uuid.UUID) ([]*types.Invitation, error)
}

type invitationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewInvitationRepo(db *gorm.DB, baseLog *logger.Logger) InvitationRepo {
	repoLog := baseLog.With("repo", "InvitationRepo")
	return &invitationRepo{db: db, log: repoLog}
}

func (r *invitationRepo) Create(ctx context.Context, tx *gorm.DB, inv *types.Invitation) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(inv).Error
}

func (r *invitationRepo) GetByToken(ctx context.Context, tx *gorm.DB, token string) (*types.Invitation, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var result types.Invitation
	if err := transaction.WithContext(ctx).
		Where("token = ?", token).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerr.ErrNotFound
		}
		return nil, err
	}
	return &result, nil
}

func (r *invitationRepo) MarkAccepted(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	now := time.Now()
	res := transaction.WithContext(ctx).
		Model(&types.Invitation{}).
		Where("id = ? AND status = ?", id, types.InvitationPending).
		Updates(map[string]interface{}{
			"status":      types.InvitationAccepted,
			"accepted_at": now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerr.ErrConflict
	}
	return nil
}

func (r *invitationRepo) ListByInviter(ctx context.Context, tx *gorm.DB, invitedBy uuid.UUID) ([]*types.Invitation, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Invitation
	if err := transaction.WithContext(ctx).
		Where("invited_by = ?", invitedBy).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
