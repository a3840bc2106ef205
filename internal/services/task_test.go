package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	pkgerr "github.com/shimms/shimms-backend/internal/pkg/errors"
)

func newTaskServiceForTest(t *testing.T, tasks *fakeTaskRepo, journey *fakeJourneyService) TaskService {
	t.Helper()
	access := NewAccessService(nil, testLogger(t), newFakeUserRoleRepo(), newFakeAssignmentRepo())
	return NewTaskService(nil, testLogger(t), tasks, access, journey)
}

func TestCompleteTaskScopedToTargetRows(t *testing.T) {
	actor := uuid.New()
	victim := uuid.New()
	victimTask := uuid.New()

	journey := &fakeJourneyService{}
	tasks := &fakeTaskRepo{
		completeFn: func(userID, id uuid.UUID) error {
			if id == victimTask && userID != victim {
				return pkgerr.ErrNotFound
			}
			return nil
		},
	}
	svc := newTaskServiceForTest(t, tasks, journey)

	// Self access always authorizes, but the update must stay confined to
	// the target's own rows even when the id belongs to someone else.
	err := svc.CompleteTask(context.Background(), actor, actor, victimTask)
	if !errors.Is(err, pkgerr.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
	if journey.recalcs != 0 {
		t.Fatalf("journey recalculations = %d, want 0 after a failed completion", journey.recalcs)
	}
}

func TestCompleteTaskRecalculatesJourney(t *testing.T) {
	owner := uuid.New()
	taskID := uuid.New()

	journey := &fakeJourneyService{}
	tasks := &fakeTaskRepo{
		completeFn: func(userID, id uuid.UUID) error {
			if userID != owner || id != taskID {
				return pkgerr.ErrNotFound
			}
			return nil
		},
	}
	svc := newTaskServiceForTest(t, tasks, journey)

	if err := svc.CompleteTask(context.Background(), owner, owner, taskID); err != nil {
		t.Fatalf("CompleteTask: %v", err)
	}
	if journey.recalcs != 1 {
		t.Fatalf("journey recalculations = %d, want 1", journey.recalcs)
	}
}
