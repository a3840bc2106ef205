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

type TaskService interface {
	ListClientTasks(ctx context.Context, actorID, targetID uuid.UUID) ([]*types.Task, error)
	CreateTask(ctx context.Context, actorID uuid.UUID, task *types.Task) (*types.Task, error)
	// CompleteTask marks the task done and recalculates journey progress,
	// since tasks carry the largest progress weight.
	CompleteTask(ctx context.Context, actorID, targetID, taskID uuid.UUID) error
}

type taskService struct {
	db       *gorm.DB
	log      *logger.Logger
	taskRepo repos.TaskRepo
	access   AccessService
	journey  JourneyService
}

func NewTaskService(db *gorm.DB, log *logger.Logger, taskRepo repos.TaskRepo, access AccessService, journey JourneyService) TaskService {
	serviceLog := log.With("service", "TaskService")
	return &taskService{
		db:       db,
		log:      serviceLog,
		taskRepo: taskRepo,
		access:   access,
		journey:  journey,
	}
}

func (s *taskService) ListClientTasks(ctx context.Context, actorID, targetID uuid.UUID) ([]*types.Task, error) {
	if err := s.access.Authorize(ctx, actorID, targetID); err != nil {
		return nil, err
	}
	return s.taskRepo.ListByUser(ctx, nil, targetID)
}

func (s *taskService) CreateTask(ctx context.Context, actorID uuid.UUID, task *types.Task) (*types.Task, error) {
	if err := s.access.Authorize(ctx, actorID, task.UserID); err != nil {
		return nil, err
	}
	if task.Title == "" {
		return nil, fmt.Errorf("%w: title is required", pkgerr.ErrInvalidArgument)
	}
	task.ID = uuid.New()
	task.Status = types.TaskPending
	task.CreatedBy = actorID
	if task.Priority == "" {
		task.Priority = "medium"
	}
	if _, err := s.taskRepo.Create(ctx, nil, []*types.Task{task}); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return task, nil
}

func (s *taskService) CompleteTask(ctx context.Context, actorID, targetID, taskID uuid.UUID) error {
	if err := s.access.Authorize(ctx, actorID, targetID); err != nil {
		return err
	}
	// Scope the update to the target's rows so an authorized actor cannot
	// reach a task owned by someone else via its id.
	if err := s.taskRepo.Complete(ctx, nil, targetID, taskID); err != nil {
		return err
	}
	if _, err := s.journey.Recalculate(ctx, targetID); err != nil {
		s.log.Warn("Failed to recalculate journey after task completion", "user_id", targetID, "error", err)
	}
	return nil
}
