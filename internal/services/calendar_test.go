package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	pkgerr "github.com/shimms/shimms-backend/internal/pkg/errors"
	"github.com/shimms/shimms-backend/internal/types"
)

func newCalendarServiceForTest(t *testing.T, events *fakeCalendarEventRepo) CalendarService {
	t.Helper()
	access := NewAccessService(nil, testLogger(t), newFakeUserRoleRepo(), newFakeAssignmentRepo())
	return NewCalendarService(nil, testLogger(t), events, access, time.Second)
}

func TestDeleteClientEventScopedToTargetRows(t *testing.T) {
	actor := uuid.New()
	victim := uuid.New()
	victimEvent := &types.CalendarEvent{
		ID:       uuid.New(),
		UserID:   victim,
		Title:    "Coaching session",
		StartsAt: time.Now().Add(24 * time.Hour),
	}
	events := newFakeCalendarEventRepo(victimEvent)
	svc := newCalendarServiceForTest(t, events)

	err := svc.DeleteClientEvent(context.Background(), actor, actor, victimEvent.ID)
	if !errors.Is(err, pkgerr.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
	if _, ok := events.events[victimEvent.ID]; !ok {
		t.Fatalf("foreign event must survive the delete attempt")
	}
}

func TestDeleteClientEventRemovesOwnEvent(t *testing.T) {
	owner := uuid.New()
	event := &types.CalendarEvent{
		ID:       uuid.New(),
		UserID:   owner,
		Title:    "Check-in",
		StartsAt: time.Now().Add(time.Hour),
	}
	events := newFakeCalendarEventRepo(event)
	svc := newCalendarServiceForTest(t, events)

	if err := svc.DeleteClientEvent(context.Background(), owner, owner, event.ID); err != nil {
		t.Fatalf("DeleteClientEvent: %v", err)
	}
	if _, ok := events.events[event.ID]; ok {
		t.Fatalf("event should be gone")
	}
}
