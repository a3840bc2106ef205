package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shimms/shimms-backend/internal/logger"
	"github.com/shimms/shimms-backend/internal/normalization"
	pkgerr "github.com/shimms/shimms-backend/internal/pkg/errors"
	"github.com/shimms/shimms-backend/internal/repos"
	"github.com/shimms/shimms-backend/internal/types"
)

// ClientAnalytics is the coach-facing summary for one client.
type ClientAnalytics struct {
	Journey        *types.JourneyState `json:"journey"`
	TasksTotal     int64               `json:"tasks_total"`
	TasksCompleted int64               `json:"tasks_completed"`
	RoundsByKind   map[string]float64  `json:"rounds_by_kind"`
}

type UserService interface {
	GetProfile(ctx context.Context, actorID, targetID uuid.UUID) (*types.User, error)
	// UpdateProfile lets a user edit their own name fields; admins may also
	// edit category and status.
	UpdateProfile(ctx context.Context, actorID uuid.UUID, update *types.User) (*types.User, error)
	ListUsers(ctx context.Context, actorID uuid.UUID, limit, offset int) ([]*types.User, error)
	ListClients(ctx context.Context, coachID uuid.UUID) ([]*types.User, error)
	AssignCoach(ctx context.Context, actorID, coachID, clientID uuid.UUID) error
	SetAssignmentActive(ctx context.Context, actorID, coachID, clientID uuid.UUID, active bool) error
	AssignRole(ctx context.Context, actorID, targetID uuid.UUID, role string) error
	GetClientJourney(ctx context.Context, actorID, targetID uuid.UUID) (*types.JourneyState, error)
	GetClientAnalytics(ctx context.Context, actorID, targetID uuid.UUID) (*ClientAnalytics, error)
}

type userService struct {
	db             *gorm.DB
	log            *logger.Logger
	userRepo       repos.UserRepo
	userRoleRepo   repos.UserRoleRepo
	assignmentRepo repos.AssignmentRepo
	roundRepo      repos.AssessmentRoundRepo
	taskRepo       repos.TaskRepo
	access         AccessService
	journey        JourneyService
}

func NewUserService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	userRoleRepo repos.UserRoleRepo,
	assignmentRepo repos.AssignmentRepo,
	roundRepo repos.AssessmentRoundRepo,
	taskRepo repos.TaskRepo,
	access AccessService,
	journey JourneyService,
) UserService {
	serviceLog := log.With("service", "UserService")
	return &userService{
		db:             db,
		log:            serviceLog,
		userRepo:       userRepo,
		userRoleRepo:   userRoleRepo,
		assignmentRepo: assignmentRepo,
		roundRepo:      roundRepo,
		taskRepo:       taskRepo,
		access:         access,
		journey:        journey,
	}
}

func (s *userService) GetProfile(ctx context.Context, actorID, targetID uuid.UUID) (*types.User, error) {
	if err := s.access.Authorize(ctx, actorID, targetID); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, nil, targetID)
}

func (s *userService) UpdateProfile(ctx context.Context, actorID uuid.UUID, update *types.User) (*types.User, error) {
	if err := s.access.Authorize(ctx, actorID, update.ID); err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(ctx, nil, update.ID)
	if err != nil {
		return nil, err
	}

	if update.FirstName != "" {
		user.FirstName = update.FirstName
	}
	if update.LastName != "" {
		user.LastName = update.LastName
	}

	roles, err := s.access.RolesOf(ctx, actorID)
	if err != nil {
		return nil, err
	}
	isAdmin := roles.Has(types.RoleAdmin) || roles.Has(types.RoleSuperadmin)
	if isAdmin {
		if update.ClientCategory != "" {
			user.ClientCategory = normalization.ParseInputString(update.ClientCategory)
		}
		if update.ClientStatus != "" {
			user.ClientStatus = normalization.ParseInputString(update.ClientStatus)
		}
	}

	if err := s.userRepo.Update(ctx, nil, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context, actorID uuid.UUID, limit, offset int) ([]*types.User, error) {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.userRepo.List(ctx, nil, limit, offset)
}

func (s *userService) ListClients(ctx context.Context, coachID uuid.UUID) ([]*types.User, error) {
	assignments, err := s.assignmentRepo.ListClientsByCoach(ctx, nil, coachID)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	clients := make([]*types.User, 0, len(assignments))
	for _, a := range assignments {
		user, err := s.userRepo.GetByID(ctx, nil, a.ClientID)
		if err != nil {
			s.log.Warn("Assignment points at missing client", "client_id", a.ClientID, "error", err)
			continue
		}
		clients = append(clients, user)
	}
	return clients, nil
}

func (s *userService) AssignCoach(ctx context.Context, actorID, coachID, clientID uuid.UUID) error {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return err
	}
	coachRoles, err := s.access.RolesOf(ctx, coachID)
	if err != nil {
		return err
	}
	if !coachRoles.Has(types.RoleCoach) {
		return fmt.Errorf("%w: user %s is not a coach", pkgerr.ErrInvalidArgument, coachID)
	}
	assignment := &types.CoachClientAssignment{
		ID:       uuid.New(),
		CoachID:  coachID,
		ClientID: clientID,
		IsActive: true,
	}
	if err := s.assignmentRepo.Create(ctx, nil, assignment); err != nil {
		return fmt.Errorf("create assignment: %w", err)
	}
	return nil
}

func (s *userService) SetAssignmentActive(ctx context.Context, actorID, coachID, clientID uuid.UUID, active bool) error {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return err
	}
	return s.assignmentRepo.SetActive(ctx, nil, coachID, clientID, active)
}

func (s *userService) AssignRole(ctx context.Context, actorID, targetID uuid.UUID, role string) error {
	if !types.ValidRole(role) {
		return fmt.Errorf("%w: unknown role %q", pkgerr.ErrInvalidArgument, role)
	}
	roles, err := s.access.RolesOf(ctx, actorID)
	if err != nil {
		return err
	}
	// Only superadmins may mint admins or other superadmins.
	if role == types.RoleAdmin || role == types.RoleSuperadmin {
		if !roles.Has(types.RoleSuperadmin) {
			return fmt.Errorf("%w: cannot grant role %q", pkgerr.ErrForbidden, role)
		}
	} else if !roles.Has(types.RoleAdmin) && !roles.Has(types.RoleSuperadmin) {
		return fmt.Errorf("%w: cannot grant roles", pkgerr.ErrForbidden)
	}
	return s.userRoleRepo.Assign(ctx, nil, targetID, role)
}

func (s *userService) GetClientJourney(ctx context.Context, actorID, targetID uuid.UUID) (*types.JourneyState, error) {
	if err := s.access.Authorize(ctx, actorID, targetID); err != nil {
		return nil, err
	}
	return s.journey.GetState(ctx, targetID)
}

func (s *userService) GetClientAnalytics(ctx context.Context, actorID, targetID uuid.UUID) (*ClientAnalytics, error) {
	if err := s.access.Authorize(ctx, actorID, targetID); err != nil {
		return nil, err
	}

	journey, err := s.journey.GetState(ctx, targetID)
	if err != nil {
		return nil, err
	}
	taskCounts, err := s.taskRepo.CountsByUser(ctx, nil, targetID)
	if err != nil {
		return nil, fmt.Errorf("count tasks: %w", err)
	}
	rounds, err := s.roundRepo.ListByUser(ctx, nil, targetID)
	if err != nil {
		return nil, fmt.Errorf("list rounds: %w", err)
	}

	byKind := make(map[string]float64)
	for _, round := range rounds {
		// Newest round first; keep the first score seen per kind.
		if _, seen := byKind[round.PillarType]; seen {
			continue
		}
		if score := overallScore(round.Scores); score != nil {
			byKind[round.PillarType] = *score
		}
	}

	return &ClientAnalytics{
		Journey:        journey,
		TasksTotal:     taskCounts.Total,
		TasksCompleted: taskCounts.Completed,
		RoundsByKind:   byKind,
	}, nil
}

func (s *userService) requireAdmin(ctx context.Context, actorID uuid.UUID) error {
	roles, err := s.access.RolesOf(ctx, actorID)
	if err != nil {
		return err
	}
	if !roles.Has(types.RoleAdmin) && !roles.Has(types.RoleSuperadmin) {
		return fmt.Errorf("%w: admin role required", pkgerr.ErrForbidden)
	}
	return nil
}
