package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shimms/shimms-backend/internal/logger"
	pkgerr "github.com/shimms/shimms-backend/internal/pkg/errors"
	"github.com/shimms/shimms-backend/internal/repos"
	"github.com/shimms/shimms-backend/internal/types"
)

// RoleSet is the explicit role value object every access decision consumes.
type RoleSet map[string]bool

func NewRoleSet(roles []string) RoleSet {
	rs := make(RoleSet, len(roles))
	for _, r := range roles {
		rs[r] = true
	}
	return rs
}

func (rs RoleSet) Has(role string) bool { return rs[role] }

// Decide is the single authorization predicate for reading or writing a
// target user's sub-resources. Precedence, first match wins:
// superadmin, admin, self, coach with an active assignment, deny.
func Decide(actorID uuid.UUID, roles RoleSet, targetID uuid.UUID, hasActiveAssignment bool) bool {
	switch {
	case roles.Has(types.RoleSuperadmin):
		return true
	case roles.Has(types.RoleAdmin):
		return true
	case actorID == targetID:
		return true
	case roles.Has(types.RoleCoach) && hasActiveAssignment:
		return true
	}
	return false
}

// AccessService gates every client-scoped accessor. Denials surface as
// ErrForbidden so the caller can tell "no data" from "not allowed".
type AccessService interface {
	Authorize(ctx context.Context, actorID, targetID uuid.UUID) error
	RolesOf(ctx context.Context, userID uuid.UUID) (RoleSet, error)
}

type accessService struct {
	db             *gorm.DB
	log            *logger.Logger
	userRoleRepo   repos.UserRoleRepo
	assignmentRepo repos.AssignmentRepo
}

func NewAccessService(db *gorm.DB, log *logger.Logger, userRoleRepo repos.UserRoleRepo, assignmentRepo repos.AssignmentRepo) AccessService {
	serviceLog := log.With("service", "AccessService")
	return &accessService{
		db:             db,
		log:            serviceLog,
		userRoleRepo:   userRoleRepo,
		assignmentRepo: assignmentRepo,
	}
}

func (s *accessService) RolesOf(ctx context.Context, userID uuid.UUID) (RoleSet, error) {
	roles, err := s.userRoleRepo.GetByUserID(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("load roles for %s: %w", userID, err)
	}
	return NewRoleSet(roles), nil
}

func (s *accessService) Authorize(ctx context.Context, actorID, targetID uuid.UUID) error {
	roles, err := s.RolesOf(ctx, actorID)
	if err != nil {
		return err
	}

	// Only hit the assignment table when the coach branch can matter.
	hasActive := false
	if roles.Has(types.RoleCoach) && actorID != targetID &&
		!roles.Has(types.RoleAdmin) && !roles.Has(types.RoleSuperadmin) {
		hasActive, err = s.assignmentRepo.HasActive(ctx, nil, actorID, targetID)
		if err != nil {
			return fmt.Errorf("check coach assignment: %w", err)
		}
	}

	if !Decide(actorID, roles, targetID, hasActive) {
		s.log.Debug("Access denied", "actor_id", actorID, "target_id", targetID)
		return fmt.Errorf("%w: no access to user %s", pkgerr.ErrForbidden, targetID)
	}
	return nil
}
