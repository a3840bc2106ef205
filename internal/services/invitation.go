package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/shimms/shimms-backend/internal/logger"
	"github.com/shimms/shimms-backend/internal/normalization"
	pkgerr "github.com/shimms/shimms-backend/internal/pkg/errors"
	"github.com/shimms/shimms-backend/internal/repos"
	"github.com/shimms/shimms-backend/internal/types"
	"github.com/shimms/shimms-backend/internal/utils"
)

// RedeemRequest carries everything needed to turn a pending invitation into a
// logged-in account.
type RedeemRequest struct {
	Token     string `json:"token" validate:"required"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Password  string `json:"password" validate:"required"`
}

type InvitationService interface {
	// Invite creates a pending invitation and emails the redemption link.
	// Coaches may invite clients only; admins may invite any role below their own.
	Invite(ctx context.Context, inviterID uuid.UUID, email, role string) (*types.Invitation, error)
	// Redeem is one-shot: the pending -> accepted transition happens at most
	// once per token. A second redemption fails with ErrConflict and creates
	// no duplicate user or role rows.
	Redeem(ctx context.Context, req RedeemRequest) (*types.User, error)
	ListByInviter(ctx context.Context, inviterID uuid.UUID) ([]*types.Invitation, error)
}

type invitationService struct {
	db             *gorm.DB
	log            *logger.Logger
	invitationRepo repos.InvitationRepo
	userRepo       repos.UserRepo
	userRoleRepo   repos.UserRoleRepo
	assignmentRepo repos.AssignmentRepo
	access         AccessService
	journey        JourneyService
	mailer         MailerService
	invitationTTL  time.Duration
	appBaseURL     string
}

func NewInvitationService(
	db *gorm.DB,
	log *logger.Logger,
	invitationRepo repos.InvitationRepo,
	userRepo repos.UserRepo,
	userRoleRepo repos.UserRoleRepo,
	assignmentRepo repos.AssignmentRepo,
	access AccessService,
	journey JourneyService,
	mailer MailerService,
	invitationTTL time.Duration,
	appBaseURL string,
) InvitationService {
	serviceLog := log.With("service", "InvitationService")
	return &invitationService{
		db:             db,
		log:            serviceLog,
		invitationRepo: invitationRepo,
		userRepo:       userRepo,
		userRoleRepo:   userRoleRepo,
		assignmentRepo: assignmentRepo,
		access:         access,
		journey:        journey,
		mailer:         mailer,
		invitationTTL:  invitationTTL,
		appBaseURL:     appBaseURL,
	}
}

func (s *invitationService) Invite(ctx context.Context, inviterID uuid.UUID, email, role string) (*types.Invitation, error) {
	email = normalization.ParseInputString(email)
	if err := utils.ValidateEmail(email); err != nil {
		return nil, err
	}
	if role == "" {
		role = types.RoleClient
	}
	if !types.ValidRole(role) {
		return nil, fmt.Errorf("%w: unknown role %q", pkgerr.ErrInvalidArgument, role)
	}

	roles, err := s.access.RolesOf(ctx, inviterID)
	if err != nil {
		return nil, err
	}
	switch {
	case roles.Has(types.RoleSuperadmin):
	case roles.Has(types.RoleAdmin):
		if role == types.RoleSuperadmin {
			return nil, fmt.Errorf("%w: cannot invite a superadmin", pkgerr.ErrForbidden)
		}
	case roles.Has(types.RoleCoach):
		if role != types.RoleClient {
			return nil, fmt.Errorf("%w: coaches may only invite clients", pkgerr.ErrForbidden)
		}
	default:
		return nil, fmt.Errorf("%w: cannot send invitations", pkgerr.ErrForbidden)
	}

	exists, err := s.userRepo.EmailExists(ctx, nil, email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("%w: email already registered", pkgerr.ErrConflict)
	}

	inv := &types.Invitation{
		ID:        uuid.New(),
		Email:     email,
		Token:     uuid.New().String(),
		Role:      role,
		InvitedBy: inviterID,
		Status:    types.InvitationPending,
		ExpiresAt: time.Now().Add(s.invitationTTL),
	}
	if err := s.invitationRepo.Create(ctx, nil, inv); err != nil {
		return nil, fmt.Errorf("create invitation: %w", err)
	}

	inviteURL := fmt.Sprintf("%s/invitations/redeem?token=%s", s.appBaseURL, inv.Token)
	s.mailer.SendInvitation(ctx, email, inviteURL, role)
	s.log.Info("Invitation sent", "email", email, "role", role, "invited_by", inviterID)
	return inv, nil
}

func (s *invitationService) Redeem(ctx context.Context, req RedeemRequest) (*types.User, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}
	if err := utils.ValidatePassword(req.Password); err != nil {
		return nil, err
	}

	inv, err := s.invitationRepo.GetByToken(ctx, nil, req.Token)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown invitation token", pkgerr.ErrNotFound)
	}
	if err := validateRedeemable(inv, time.Now()); err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	var user *types.User
	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Accept first: the unique pending guard makes two concurrent
		// redemptions of the same token resolve to exactly one winner.
		if err := s.invitationRepo.MarkAccepted(ctx, tx, inv.ID); err != nil {
			return err
		}

		existing, err := s.userRepo.GetByEmail(ctx, tx, inv.Email)
		switch {
		case err == nil:
			user = existing
		case errors.Is(err, pkgerr.ErrNotFound):
			user = &types.User{
				ID:        uuid.New(),
				Email:     inv.Email,
				Password:  string(hashed),
				FirstName: req.FirstName,
				LastName:  req.LastName,
			}
			if _, err := s.userRepo.Create(ctx, tx, []*types.User{user}); err != nil {
				return fmt.Errorf("create user: %w", err)
			}
		default:
			return fmt.Errorf("lookup user: %w", err)
		}

		// Duplicate-safe: assigning an already-held role is a no-op.
		if err := s.userRoleRepo.Assign(ctx, tx, user.ID, inv.Role); err != nil {
			return fmt.Errorf("assign role: %w", err)
		}

		if inv.Role == types.RoleClient && inv.InvitedBy != uuid.Nil {
			inviterRoles, err := s.access.RolesOf(ctx, inv.InvitedBy)
			if err == nil && inviterRoles.Has(types.RoleCoach) {
				assignment := &types.CoachClientAssignment{
					ID:       uuid.New(),
					CoachID:  inv.InvitedBy,
					ClientID: user.ID,
					IsActive: true,
				}
				if err := s.assignmentRepo.Create(ctx, tx, assignment); err != nil {
					s.log.Warn("Failed to link inviting coach", "coach_id", inv.InvitedBy, "client_id", user.ID, "error", err)
				}
			}
		}
		return nil
	}); err != nil {
		return nil, err
	}

	if err := s.journey.ResetWelcome(ctx, user.ID); err != nil {
		s.log.Warn("Failed to seed journey state", "user_id", user.ID, "error", err)
	}
	s.mailer.SendWelcome(ctx, user.Email, user.FirstName)
	return user, nil
}

// validateRedeemable gates the pending -> accepted transition: a token that
// was already accepted or has expired is rejected with a conflict. The
// guarded update in the store enforces the same rule under concurrency.
func validateRedeemable(inv *types.Invitation, now time.Time) error {
	if inv.Status != types.InvitationPending {
		return fmt.Errorf("%w: invitation already redeemed", pkgerr.ErrConflict)
	}
	if inv.ExpiresAt.Before(now) {
		return fmt.Errorf("%w: invitation expired", pkgerr.ErrConflict)
	}
	return nil
}

func (s *invitationService) ListByInviter(ctx context.Context, inviterID uuid.UUID) ([]*types.Invitation, error) {
	return s.invitationRepo.ListByInviter(ctx, nil, inviterID)
}
