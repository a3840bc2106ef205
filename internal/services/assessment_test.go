package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/shimms/shimms-backend/internal/pillars"
	pkgerr "github.com/shimms/shimms-backend/internal/pkg/errors"
	"github.com/shimms/shimms-backend/internal/platform/stefanai"
	"github.com/shimms/shimms-backend/internal/types"
)

type assessmentFixture struct {
	user    *types.User
	admin   *types.User
	users   *fakeUserRepo
	drafts  *fakeDraftRepo
	rounds  *fakeRoundRepo
	entries *fakePathEntryRepo
	roles   *fakeUserRoleRepo
	journey *fakeJourneyService
	ai      *fakeAI
	mailer  *fakeMailer

	created        []*types.AssessmentRound
	createdEntries []*types.PathEntry
	draftDeletes   int
}

func newAssessmentFixture(t *testing.T) (*assessmentFixture, AssessmentService) {
	t.Helper()
	fx := &assessmentFixture{
		user:    &types.User{ID: uuid.New(), Email: "maya@example.com", FirstName: "Maya"},
		admin:   &types.User{ID: uuid.New(), Email: "ops@example.com", FirstName: "Ops"},
		roles:   newFakeUserRoleRepo(),
		journey: &fakeJourneyService{},
		ai: &fakeAI{result: &stefanai.AnalyzeResult{
			Analysis: "Your energy is the weak spot this round.",
			Recommendations: []stefanai.Recommendation{
				{Title: "Evening walks", Details: "Three times a week."},
				{Title: "Screen curfew", Details: "No screens after 22:00."},
			},
		}},
		mailer: &fakeMailer{},
	}
	fx.users = newFakeUserRepo(fx.user, fx.admin)
	fx.roles.roles[fx.admin.ID] = []string{types.RoleAdmin}
	fx.drafts = &fakeDraftRepo{
		deleteFn: func(uuid.UUID, string) error {
			fx.draftDeletes++
			return nil
		},
	}
	fx.rounds = &fakeRoundRepo{
		createFn: func(round *types.AssessmentRound) error {
			fx.created = append(fx.created, round)
			return nil
		},
	}
	fx.entries = &fakePathEntryRepo{
		createFn: func(entries []*types.PathEntry) error {
			fx.createdEntries = append(fx.createdEntries, entries...)
			return nil
		},
	}
	access := NewAccessService(nil, testLogger(t), fx.roles, newFakeAssignmentRepo())
	svc := NewAssessmentService(nil, testLogger(t), fx.users, fx.drafts, fx.rounds, fx.entries,
		access, fx.journey, NewPersonaService(), fx.ai, fx.mailer, NopNotifier{})
	return fx, svc
}

func TestCompleteHappyPath(t *testing.T) {
	fx, svc := newAssessmentFixture(t)

	result, err := svc.Complete(context.Background(), fx.user.ID, pillars.Welcome,
		map[string]float64{"life_satisfaction": 4, "change_readiness": 4})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}

	if !result.AnalysisAvailable {
		t.Fatalf("expected analysis to be available")
	}
	if len(result.Recommendations) != 2 {
		t.Fatalf("recommendations = %d, want 2", len(result.Recommendations))
	}
	if result.Round.AIAnalysis == nil {
		t.Fatalf("round should carry the attached analysis")
	}
	if len(fx.created) != 1 {
		t.Fatalf("rounds created = %d, want 1", len(fx.created))
	}
	if fx.draftDeletes != 1 {
		t.Fatalf("draft deletes = %d, want 1", fx.draftDeletes)
	}

	// One completion marker plus one entry per recommendation.
	if len(fx.createdEntries) != 3 {
		t.Fatalf("path entries = %d, want 3", len(fx.createdEntries))
	}
	if fx.createdEntries[0].Type != types.PathEntryAssessment || fx.createdEntries[0].Status != "completed" {
		t.Fatalf("first entry should be the completion marker: %+v", fx.createdEntries[0])
	}
	for _, e := range fx.createdEntries[1:] {
		if e.Type != types.PathEntryRecommendation || !e.AIGenerated {
			t.Fatalf("recommendation entry malformed: %+v", e)
		}
	}

	if len(fx.journey.marked) != 1 || fx.journey.marked[0] != "welcome" {
		t.Fatalf("journey marked = %v", fx.journey.marked)
	}
	// Welcome is followed by self_care, so a reminder goes out.
	if fx.mailer.reminders != 1 {
		t.Fatalf("reminders = %d, want 1", fx.mailer.reminders)
	}
	// Scores of 75 select the strategist voice.
	if !strings.Contains(result.Greeting, "Maya") {
		t.Fatalf("greeting %q does not address the user", result.Greeting)
	}
	if !strings.Contains(result.Greeting, "Nice work") {
		t.Fatalf("greeting %q is not the completion voice", result.Greeting)
	}
}

func TestCompleteLowScoresSelectMentor(t *testing.T) {
	fx, svc := newAssessmentFixture(t)

	result, err := svc.Complete(context.Background(), fx.user.ID, pillars.Welcome,
		map[string]float64{"life_satisfaction": 1})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if !strings.Contains(result.Greeting, "rough patches") {
		t.Fatalf("greeting %q is not the mentor voice", result.Greeting)
	}
}

func TestCompleteSurvivesAnalysisFailure(t *testing.T) {
	fx, svc := newAssessmentFixture(t)
	fx.ai.err = fmt.Errorf("model overloaded")

	result, err := svc.Complete(context.Background(), fx.user.ID, pillars.Welcome,
		map[string]float64{"life_satisfaction": 4})
	if err != nil {
		t.Fatalf("Complete must not fail when analysis is unavailable: %v", err)
	}
	if result.AnalysisAvailable {
		t.Fatalf("analysis must be marked unavailable")
	}
	if len(result.Recommendations) != 0 {
		t.Fatalf("no recommendations expected on analysis failure")
	}
	if len(fx.created) != 1 {
		t.Fatalf("round must be persisted even without analysis")
	}
	if fx.created[0].AIAnalysis != nil {
		t.Fatalf("round must stay without analysis for consolidation")
	}
	if len(fx.createdEntries) != 0 {
		t.Fatalf("no actionable entries expected on analysis failure")
	}
	if fx.draftDeletes != 1 {
		t.Fatalf("draft must still be cleared, got %d deletes", fx.draftDeletes)
	}
}

func TestCompleteRejectsEmptyAnswers(t *testing.T) {
	fx, svc := newAssessmentFixture(t)
	_, err := svc.Complete(context.Background(), fx.user.ID, pillars.Welcome, nil)
	if !errors.Is(err, pkgerr.ErrInvalidArgument) {
		t.Fatalf("error = %v, want ErrInvalidArgument", err)
	}
	if len(fx.created) != 0 {
		t.Fatalf("no round should be created")
	}
}

func TestCompleteLastKindSendsNoReminder(t *testing.T) {
	fx, svc := newAssessmentFixture(t)

	if _, err := svc.Complete(context.Background(), fx.user.ID, pillars.Economy,
		map[string]float64{"financial_control": 5}); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if fx.mailer.reminders != 0 {
		t.Fatalf("reminders = %d, want 0 after the final kind", fx.mailer.reminders)
	}
}

func TestGetRoundChecksOwnership(t *testing.T) {
	fx, svc := newAssessmentFixture(t)
	roundID := uuid.New()
	fx.rounds.getByIDFn = func(id uuid.UUID) (*types.AssessmentRound, error) {
		return &types.AssessmentRound{ID: id, UserID: uuid.New()}, nil
	}

	_, err := svc.GetRound(context.Background(), fx.user.ID, roundID)
	if !errors.Is(err, pkgerr.ErrForbidden) {
		t.Fatalf("error = %v, want ErrForbidden", err)
	}
}

func TestConsolidateRejectsNonAdminActor(t *testing.T) {
	fx, svc := newAssessmentFixture(t)
	fx.rounds.listMissingFn = func(int) ([]*types.AssessmentRound, error) {
		t.Fatalf("rounds must not be scanned for a non-admin actor")
		return nil, nil
	}

	_, err := svc.Consolidate(context.Background(), fx.user.ID, 10)
	if !errors.Is(err, pkgerr.ErrForbidden) {
		t.Fatalf("error = %v, want ErrForbidden", err)
	}
	if fx.ai.calls != 0 {
		t.Fatalf("ai calls = %d, want 0", fx.ai.calls)
	}

	fx.roles.roles[fx.user.ID] = []string{types.RoleCoach}
	if _, err := svc.Consolidate(context.Background(), fx.user.ID, 10); !errors.Is(err, pkgerr.ErrForbidden) {
		t.Fatalf("coach role must not open consolidation, got %v", err)
	}
}

func TestConsolidateCountsRepairsAndFailures(t *testing.T) {
	fx, svc := newAssessmentFixture(t)

	good := &types.AssessmentRound{
		ID:         uuid.New(),
		UserID:     fx.user.ID,
		PillarType: "welcome",
		Answers:    datatypes.JSON([]byte(`{"life_satisfaction":4}`)),
		Scores:     datatypes.JSON([]byte(`{"overall":75}`)),
	}
	bad := &types.AssessmentRound{
		ID:         uuid.New(),
		UserID:     fx.user.ID,
		PillarType: "not_a_kind",
		Answers:    datatypes.JSON([]byte(`{}`)),
	}
	fx.rounds.listMissingFn = func(int) ([]*types.AssessmentRound, error) {
		return []*types.AssessmentRound{good, bad}, nil
	}

	result, err := svc.Consolidate(context.Background(), fx.admin.ID, 10)
	if err != nil {
		t.Fatalf("Consolidate: %v", err)
	}
	if result.Scanned != 2 || result.Repaired != 1 || result.Failed != 1 {
		t.Fatalf("result = %+v, want scanned 2, repaired 1, failed 1", result)
	}
	if fx.ai.calls != 1 {
		t.Fatalf("ai calls = %d, want 1", fx.ai.calls)
	}
}

func TestConsolidateTreatsAttachConflictAsRepaired(t *testing.T) {
	fx, svc := newAssessmentFixture(t)

	round := &types.AssessmentRound{
		ID:         uuid.New(),
		UserID:     fx.user.ID,
		PillarType: "welcome",
		Answers:    datatypes.JSON([]byte(`{"life_satisfaction":4}`)),
	}
	fx.rounds.listMissingFn = func(int) ([]*types.AssessmentRound, error) {
		return []*types.AssessmentRound{round}, nil
	}
	fx.rounds.attachFn = func(uuid.UUID, string) error { return pkgerr.ErrConflict }

	result, err := svc.Consolidate(context.Background(), fx.admin.ID, 10)
	if err != nil {
		t.Fatalf("Consolidate: %v", err)
	}
	if result.Repaired != 1 || result.Failed != 0 {
		t.Fatalf("result = %+v, want the already-repaired round counted as done", result)
	}
}
