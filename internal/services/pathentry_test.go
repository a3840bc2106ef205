package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	pkgerr "github.com/shimms/shimms-backend/internal/pkg/errors"
)

func newPathEntryServiceForTest(t *testing.T, entries *fakePathEntryRepo, journey *fakeJourneyService) PathEntryService {
	t.Helper()
	access := NewAccessService(nil, testLogger(t), newFakeUserRoleRepo(), newFakeAssignmentRepo())
	return NewPathEntryService(nil, testLogger(t), entries, access, journey, NopNotifier{})
}

func TestUpdateEntryStatusScopedToTargetRows(t *testing.T) {
	actor := uuid.New()
	victim := uuid.New()
	victimEntry := uuid.New()

	journey := &fakeJourneyService{}
	entries := &fakePathEntryRepo{
		updateStatusFn: func(userID, id uuid.UUID, status string) error {
			if id == victimEntry && userID != victim {
				return pkgerr.ErrNotFound
			}
			return nil
		},
	}
	svc := newPathEntryServiceForTest(t, entries, journey)

	err := svc.UpdateEntryStatus(context.Background(), actor, actor, victimEntry, "completed")
	if !errors.Is(err, pkgerr.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
	if journey.recalcs != 0 {
		t.Fatalf("journey recalculations = %d, want 0 after a failed update", journey.recalcs)
	}
}

func TestUpdateEntryStatusRejectsUnknownStatus(t *testing.T) {
	owner := uuid.New()
	svc := newPathEntryServiceForTest(t, &fakePathEntryRepo{}, &fakeJourneyService{})

	err := svc.UpdateEntryStatus(context.Background(), owner, owner, uuid.New(), "archived")
	if !errors.Is(err, pkgerr.ErrInvalidArgument) {
		t.Fatalf("error = %v, want ErrInvalidArgument", err)
	}
}

func TestUpdateEntryStatusRecalculatesOnCompletion(t *testing.T) {
	owner := uuid.New()
	journey := &fakeJourneyService{}
	svc := newPathEntryServiceForTest(t, &fakePathEntryRepo{}, journey)

	if err := svc.UpdateEntryStatus(context.Background(), owner, owner, uuid.New(), "dismissed"); err != nil {
		t.Fatalf("UpdateEntryStatus (dismissed): %v", err)
	}
	if journey.recalcs != 0 {
		t.Fatalf("dismissal must not recalculate, got %d", journey.recalcs)
	}

	if err := svc.UpdateEntryStatus(context.Background(), owner, owner, uuid.New(), "completed"); err != nil {
		t.Fatalf("UpdateEntryStatus (completed): %v", err)
	}
	if journey.recalcs != 1 {
		t.Fatalf("journey recalculations = %d, want 1", journey.recalcs)
	}
}
