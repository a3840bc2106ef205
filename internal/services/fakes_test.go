package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/shimms/shimms-backend/internal/logger"
	"github.com/shimms/shimms-backend/internal/pillars"
	pkgerr "github.com/shimms/shimms-backend/internal/pkg/errors"
	"github.com/shimms/shimms-backend/internal/platform/stefanai"
	"github.com/shimms/shimms-backend/internal/repos"
	"github.com/shimms/shimms-backend/internal/types"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("production")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return log
}

type fakeRoundRepo struct {
	createFn        func(round *types.AssessmentRound) error
	getByIDFn       func(id uuid.UUID) (*types.AssessmentRound, error)
	getLatestFn     func(userID uuid.UUID, kind string) (*types.AssessmentRound, error)
	listByUserFn    func(userID uuid.UUID) ([]*types.AssessmentRound, error)
	listMissingFn   func(limit int) ([]*types.AssessmentRound, error)
	attachFn        func(id uuid.UUID, analysis string) error
	countDistinctFn func(userID uuid.UUID, exclude []string) (int64, error)
}

func (f *fakeRoundRepo) Create(_ context.Context, _ *gorm.DB, round *types.AssessmentRound) error {
	if f.createFn != nil {
		return f.createFn(round)
	}
	return nil
}

func (f *fakeRoundRepo) GetByID(_ context.Context, _ *gorm.DB, id uuid.UUID) (*types.AssessmentRound, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(id)
	}
	return nil, pkgerr.ErrNotFound
}

func (f *fakeRoundRepo) GetLatestByUserAndKind(_ context.Context, _ *gorm.DB, userID uuid.UUID, kind string) (*types.AssessmentRound, error) {
	if f.getLatestFn != nil {
		return f.getLatestFn(userID, kind)
	}
	return nil, pkgerr.ErrNotFound
}

func (f *fakeRoundRepo) ListByUser(_ context.Context, _ *gorm.DB, userID uuid.UUID) ([]*types.AssessmentRound, error) {
	if f.listByUserFn != nil {
		return f.listByUserFn(userID)
	}
	return nil, nil
}

func (f *fakeRoundRepo) ListMissingAnalysis(_ context.Context, _ *gorm.DB, limit int) ([]*types.AssessmentRound, error) {
	if f.listMissingFn != nil {
		return f.listMissingFn(limit)
	}
	return nil, nil
}

func (f *fakeRoundRepo) AttachAnalysis(_ context.Context, _ *gorm.DB, id uuid.UUID, analysis string) error {
	if f.attachFn != nil {
		return f.attachFn(id, analysis)
	}
	return nil
}

func (f *fakeRoundRepo) CountDistinctKindsByUser(_ context.Context, _ *gorm.DB, userID uuid.UUID, exclude ...string) (int64, error) {
	if f.countDistinctFn != nil {
		return f.countDistinctFn(userID, exclude)
	}
	return 0, nil
}

type fakeDraftRepo struct {
	upsertFn func(userID uuid.UUID, kind string, formData datatypes.JSON) (*types.AssessmentDraft, error)
	getFn    func(userID uuid.UUID, kind string) (*types.AssessmentDraft, error)
	deleteFn func(userID uuid.UUID, kind string) error
}

func (f *fakeDraftRepo) Upsert(_ context.Context, _ *gorm.DB, userID uuid.UUID, kind string, formData datatypes.JSON) (*types.AssessmentDraft, error) {
	if f.upsertFn != nil {
		return f.upsertFn(userID, kind, formData)
	}
	return &types.AssessmentDraft{UserID: userID, Kind: kind, FormData: formData, LastSavedAt: time.Now()}, nil
}

func (f *fakeDraftRepo) GetByUserAndKind(_ context.Context, _ *gorm.DB, userID uuid.UUID, kind string) (*types.AssessmentDraft, error) {
	if f.getFn != nil {
		return f.getFn(userID, kind)
	}
	return nil, pkgerr.ErrNotFound
}

func (f *fakeDraftRepo) Delete(_ context.Context, _ *gorm.DB, userID uuid.UUID, kind string) error {
	if f.deleteFn != nil {
		return f.deleteFn(userID, kind)
	}
	return nil
}

type fakeTaskRepo struct {
	countsFn   func(userID uuid.UUID) (repos.TaskCounts, error)
	completeFn func(userID, id uuid.UUID) error
}

func (f *fakeTaskRepo) Create(_ context.Context, _ *gorm.DB, tasks []*types.Task) ([]*types.Task, error) {
	return tasks, nil
}

func (f *fakeTaskRepo) ListByUser(_ context.Context, _ *gorm.DB, userID uuid.UUID) ([]*types.Task, error) {
	return nil, nil
}

func (f *fakeTaskRepo) Complete(_ context.Context, _ *gorm.DB, userID, id uuid.UUID) error {
	if f.completeFn != nil {
		return f.completeFn(userID, id)
	}
	return nil
}

func (f *fakeTaskRepo) CountsByUser(_ context.Context, _ *gorm.DB, userID uuid.UUID) (repos.TaskCounts, error) {
	if f.countsFn != nil {
		return f.countsFn(userID)
	}
	return repos.TaskCounts{}, nil
}

type fakePathEntryRepo struct {
	createFn            func(entries []*types.PathEntry) error
	countByTypeStatusFn func(userID uuid.UUID, entryType, status string) (int64, error)
	countByTypeFn       func(userID uuid.UUID, entryType string) (int64, error)
	updateStatusFn      func(userID, id uuid.UUID, status string) error
}

func (f *fakePathEntryRepo) Create(_ context.Context, _ *gorm.DB, entries []*types.PathEntry) ([]*types.PathEntry, error) {
	if f.createFn != nil {
		if err := f.createFn(entries); err != nil {
			return nil, err
		}
	}
	return entries, nil
}

func (f *fakePathEntryRepo) ListByUser(_ context.Context, _ *gorm.DB, userID uuid.UUID, visibleOnly bool) ([]*types.PathEntry, error) {
	return nil, nil
}

func (f *fakePathEntryRepo) CountByTypeAndStatus(_ context.Context, _ *gorm.DB, userID uuid.UUID, entryType, status string) (int64, error) {
	if f.countByTypeStatusFn != nil {
		return f.countByTypeStatusFn(userID, entryType, status)
	}
	return 0, nil
}

func (f *fakePathEntryRepo) CountByType(_ context.Context, _ *gorm.DB, userID uuid.UUID, entryType string) (int64, error) {
	if f.countByTypeFn != nil {
		return f.countByTypeFn(userID, entryType)
	}
	return 0, nil
}

func (f *fakePathEntryRepo) UpdateStatus(_ context.Context, _ *gorm.DB, userID, id uuid.UUID, status string) error {
	if f.updateStatusFn != nil {
		return f.updateStatusFn(userID, id, status)
	}
	return nil
}

type fakeCalendarEventRepo struct {
	events map[uuid.UUID]*types.CalendarEvent
}

func newFakeCalendarEventRepo(events ...*types.CalendarEvent) *fakeCalendarEventRepo {
	f := &fakeCalendarEventRepo{events: make(map[uuid.UUID]*types.CalendarEvent)}
	for _, ev := range events {
		f.events[ev.ID] = ev
	}
	return f
}

func (f *fakeCalendarEventRepo) Create(_ context.Context, _ *gorm.DB, event *types.CalendarEvent) error {
	f.events[event.ID] = event
	return nil
}

func (f *fakeCalendarEventRepo) ListByUserBetween(_ context.Context, _ *gorm.DB, userID uuid.UUID, from, to time.Time, visibleOnly bool) ([]*types.CalendarEvent, error) {
	var out []*types.CalendarEvent
	for _, ev := range f.events {
		if ev.UserID == userID {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (f *fakeCalendarEventRepo) Delete(_ context.Context, _ *gorm.DB, userID, id uuid.UUID) error {
	ev, ok := f.events[id]
	if !ok || ev.UserID != userID {
		return pkgerr.ErrNotFound
	}
	delete(f.events, id)
	return nil
}

type fakeJourneyStateRepo struct {
	states map[uuid.UUID]*types.JourneyState
}

func newFakeJourneyStateRepo() *fakeJourneyStateRepo {
	return &fakeJourneyStateRepo{states: make(map[uuid.UUID]*types.JourneyState)}
}

func (f *fakeJourneyStateRepo) GetByUserID(_ context.Context, _ *gorm.DB, userID uuid.UUID) (*types.JourneyState, error) {
	state, ok := f.states[userID]
	if !ok {
		return nil, pkgerr.ErrNotFound
	}
	copied := *state
	return &copied, nil
}

func (f *fakeJourneyStateRepo) Upsert(_ context.Context, _ *gorm.DB, state *types.JourneyState) error {
	if state.ID == uuid.Nil {
		state.ID = uuid.New()
	}
	copied := *state
	f.states[state.UserID] = &copied
	return nil
}

type fakeUserRepo struct {
	users map[uuid.UUID]*types.User
}

func newFakeUserRepo(users ...*types.User) *fakeUserRepo {
	f := &fakeUserRepo{users: make(map[uuid.UUID]*types.User)}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUserRepo) Create(_ context.Context, _ *gorm.DB, users []*types.User) ([]*types.User, error) {
	for _, u := range users {
		f.users[u.ID] = u
	}
	return users, nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, _ *gorm.DB, userID uuid.UUID) (*types.User, error) {
	u, ok := f.users[userID]
	if !ok {
		return nil, pkgerr.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, _ *gorm.DB, email string) (*types.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, pkgerr.ErrNotFound
}

func (f *fakeUserRepo) EmailExists(_ context.Context, _ *gorm.DB, email string) (bool, error) {
	_, err := f.GetByEmail(nil, nil, email)
	return err == nil, nil
}

func (f *fakeUserRepo) Update(_ context.Context, _ *gorm.DB, user *types.User) error {
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) List(_ context.Context, _ *gorm.DB, limit, offset int) ([]*types.User, error) {
	var out []*types.User
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, nil
}

type fakeUserRoleRepo struct {
	roles map[uuid.UUID][]string
	err   error
}

func newFakeUserRoleRepo() *fakeUserRoleRepo {
	return &fakeUserRoleRepo{roles: make(map[uuid.UUID][]string)}
}

func (f *fakeUserRoleRepo) Assign(_ context.Context, _ *gorm.DB, userID uuid.UUID, role string) error {
	for _, r := range f.roles[userID] {
		if r == role {
			return nil
		}
	}
	f.roles[userID] = append(f.roles[userID], role)
	return nil
}

func (f *fakeUserRoleRepo) GetByUserID(_ context.Context, _ *gorm.DB, userID uuid.UUID) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.roles[userID], nil
}

func (f *fakeUserRoleRepo) Remove(_ context.Context, _ *gorm.DB, userID uuid.UUID, role string) error {
	var kept []string
	for _, r := range f.roles[userID] {
		if r != role {
			kept = append(kept, r)
		}
	}
	f.roles[userID] = kept
	return nil
}

type fakeAssignmentRepo struct {
	active  map[[2]uuid.UUID]bool
	err     error
	queried int
}

func newFakeAssignmentRepo() *fakeAssignmentRepo {
	return &fakeAssignmentRepo{active: make(map[[2]uuid.UUID]bool)}
}

func (f *fakeAssignmentRepo) setActive(coachID, clientID uuid.UUID, active bool) {
	f.active[[2]uuid.UUID{coachID, clientID}] = active
}

func (f *fakeAssignmentRepo) Create(_ context.Context, _ *gorm.DB, assignment *types.CoachClientAssignment) error {
	f.setActive(assignment.CoachID, assignment.ClientID, assignment.IsActive)
	return nil
}

func (f *fakeAssignmentRepo) HasActive(_ context.Context, _ *gorm.DB, coachID, clientID uuid.UUID) (bool, error) {
	f.queried++
	if f.err != nil {
		return false, f.err
	}
	return f.active[[2]uuid.UUID{coachID, clientID}], nil
}

func (f *fakeAssignmentRepo) SetActive(_ context.Context, _ *gorm.DB, coachID, clientID uuid.UUID, active bool) error {
	f.setActive(coachID, clientID, active)
	return nil
}

func (f *fakeAssignmentRepo) ListClientsByCoach(_ context.Context, _ *gorm.DB, coachID uuid.UUID) ([]*types.CoachClientAssignment, error) {
	return nil, nil
}

type fakeInvitationRepo struct {
	byToken map[string]*types.Invitation
	created []*types.Invitation
}

func newFakeInvitationRepo() *fakeInvitationRepo {
	return &fakeInvitationRepo{byToken: make(map[string]*types.Invitation)}
}

func (f *fakeInvitationRepo) Create(_ context.Context, _ *gorm.DB, inv *types.Invitation) error {
	f.created = append(f.created, inv)
	f.byToken[inv.Token] = inv
	return nil
}

func (f *fakeInvitationRepo) GetByToken(_ context.Context, _ *gorm.DB, token string) (*types.Invitation, error) {
	inv, ok := f.byToken[token]
	if !ok {
		return nil, pkgerr.ErrNotFound
	}
	return inv, nil
}

func (f *fakeInvitationRepo) MarkAccepted(_ context.Context, _ *gorm.DB, id uuid.UUID) error {
	for _, inv := range f.byToken {
		if inv.ID == id {
			if inv.Status != types.InvitationPending {
				return pkgerr.ErrConflict
			}
			inv.Status = types.InvitationAccepted
			return nil
		}
	}
	return pkgerr.ErrConflict
}

func (f *fakeInvitationRepo) ListByInviter(_ context.Context, _ *gorm.DB, invitedBy uuid.UUID) ([]*types.Invitation, error) {
	var out []*types.Invitation
	for _, inv := range f.created {
		if inv.InvitedBy == invitedBy {
			out = append(out, inv)
		}
	}
	return out, nil
}

type fakeJourneyService struct {
	marked  []string
	recalcs int
}

func (f *fakeJourneyService) GetState(_ context.Context, userID uuid.UUID) (*types.JourneyState, error) {
	return &types.JourneyState{UserID: userID}, nil
}

func (f *fakeJourneyService) Recalculate(_ context.Context, userID uuid.UUID) (*types.JourneyState, error) {
	f.recalcs++
	return &types.JourneyState{UserID: userID}, nil
}

func (f *fakeJourneyService) MarkAssessmentCompleted(_ context.Context, userID uuid.UUID, kind pillars.Key) (*types.JourneyState, error) {
	f.marked = append(f.marked, kind.String())
	return &types.JourneyState{UserID: userID}, nil
}

func (f *fakeJourneyService) ResetWelcome(_ context.Context, userID uuid.UUID) error {
	return nil
}

type fakeAI struct {
	result *stefanai.AnalyzeResult
	err    error
	calls  int
}

func (f *fakeAI) Analyze(_ context.Context, req stefanai.AnalyzeRequest) (*stefanai.AnalyzeResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeMailer struct {
	reminders int
}

func (f *fakeMailer) SendWelcome(context.Context, string, string) {}

func (f *fakeMailer) SendAssessmentReminder(_ context.Context, _, _, _ string) { f.reminders++ }

func (f *fakeMailer) SendCoachMessage(context.Context, string, string, string) {}

func (f *fakeMailer) SendInvitation(context.Context, string, string, string) {}

func (f *fakeMailer) SendSystemAlert(context.Context, string, string, string) {}
