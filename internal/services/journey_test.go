package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"

	"github.com/shimms/shimms-backend/internal/config"
	"github.com/shimms/shimms-backend/internal/pillars"
	"github.com/shimms/shimms-backend/internal/realtime"
	"github.com/shimms/shimms-backend/internal/repos"
	"github.com/shimms/shimms-backend/internal/types"
)

func defaultWeights() config.JourneyWeights {
	return config.JourneyWeights{Assessments: 0.30, Tasks: 0.40, Pillars: 0.25, Milestones: 0.05}
}

func defaultThresholds() config.PhaseThresholds {
	return config.PhaseThresholds{Active: 15, Advanced: 50, Mastery: 75}
}

type recordingNotifier struct {
	events []realtime.Event
}

func (n *recordingNotifier) Notify(_ context.Context, ev realtime.Event) {
	n.events = append(n.events, ev)
}

func TestComputeProgress(t *testing.T) {
	cases := []struct {
		name      string
		counts    ComponentCounts
		wantPct   int
		wantPhase string
	}{
		{
			name:      "nothing done",
			counts:    ComponentCounts{AssessmentsTotal: 6, PillarsTotal: 5},
			wantPct:   0,
			wantPhase: types.PhaseWelcome,
		},
		{
			name:      "just below active",
			counts:    ComponentCounts{AssessmentsTotal: 6, PillarsTotal: 5, TasksCompleted: 7, TasksTotal: 20},
			wantPct:   14,
			wantPhase: types.PhaseWelcome,
		},
		{
			name:      "active boundary is closed",
			counts:    ComponentCounts{AssessmentsTotal: 6, PillarsTotal: 5, TasksCompleted: 3, TasksTotal: 8},
			wantPct:   15,
			wantPhase: types.PhaseActive,
		},
		{
			name: "just below advanced",
			counts: ComponentCounts{
				AssessmentsCompleted: 6, AssessmentsTotal: 6,
				TasksCompleted: 19, TasksTotal: 40,
				PillarsTotal: 5,
			},
			wantPct:   49,
			wantPhase: types.PhaseActive,
		},
		{
			name: "advanced boundary is closed",
			counts: ComponentCounts{
				AssessmentsCompleted: 6, AssessmentsTotal: 6,
				TasksCompleted: 1, TasksTotal: 2,
				PillarsTotal: 5,
			},
			wantPct:   50,
			wantPhase: types.PhaseAdvanced,
		},
		{
			name: "just below mastery",
			counts: ComponentCounts{
				AssessmentsCompleted: 6, AssessmentsTotal: 6,
				TasksCompleted: 40, TasksTotal: 40,
				PillarsTotal:        5,
				MilestonesCompleted: 4, MilestonesTotal: 5,
			},
			wantPct:   74,
			wantPhase: types.PhaseAdvanced,
		},
		{
			name: "mastery boundary is closed",
			counts: ComponentCounts{
				AssessmentsCompleted: 6, AssessmentsTotal: 6,
				TasksCompleted: 40, TasksTotal: 40,
				PillarsActive: 1, PillarsTotal: 5,
			},
			wantPct:   75,
			wantPhase: types.PhaseMastery,
		},
		{
			name: "everything done",
			counts: ComponentCounts{
				AssessmentsCompleted: 6, AssessmentsTotal: 6,
				TasksCompleted: 12, TasksTotal: 12,
				PillarsActive: 5, PillarsTotal: 5,
				MilestonesCompleted: 3, MilestonesTotal: 3,
			},
			wantPct:   100,
			wantPhase: types.PhaseMastery,
		},
		{
			name: "counts above totals clamp to full",
			counts: ComponentCounts{
				AssessmentsCompleted: 9, AssessmentsTotal: 6,
				TasksCompleted: 10, TasksTotal: 5,
				PillarsActive: 7, PillarsTotal: 5,
				MilestonesCompleted: 2, MilestonesTotal: 1,
			},
			wantPct:   100,
			wantPhase: types.PhaseMastery,
		},
		{
			name: "zero totals do not divide by zero",
			counts: ComponentCounts{
				AssessmentsCompleted: 2, AssessmentsTotal: 6,
			},
			wantPct:   10,
			wantPhase: types.PhaseWelcome,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pct, phase := ComputeProgress(tc.counts, defaultWeights(), defaultThresholds())
			if pct != tc.wantPct || phase != tc.wantPhase {
				t.Fatalf("ComputeProgress = (%d, %q), want (%d, %q)", pct, phase, tc.wantPct, tc.wantPhase)
			}
		})
	}
}

func newJourneyForTest(t *testing.T, states *fakeJourneyStateRepo, rounds *fakeRoundRepo, tasks *fakeTaskRepo, entries *fakePathEntryRepo, notifier Notifier) JourneyService {
	t.Helper()
	return NewJourneyService(nil, testLogger(t), states, rounds, tasks, entries, defaultWeights(), defaultThresholds(), notifier)
}

func TestRecalculatePersistsComputedState(t *testing.T) {
	userID := uuid.New()
	states := newFakeJourneyStateRepo()
	rounds := &fakeRoundRepo{
		countDistinctFn: func(_ uuid.UUID, exclude []string) (int64, error) {
			if len(exclude) > 0 {
				return 2, nil // active pillars
			}
			return 3, nil // completed assessment kinds
		},
	}
	tasks := &fakeTaskRepo{
		countsFn: func(uuid.UUID) (repos.TaskCounts, error) {
			return repos.TaskCounts{Total: 10, Completed: 5}, nil
		},
	}
	entries := &fakePathEntryRepo{
		countByTypeStatusFn: func(uuid.UUID, string, string) (int64, error) { return 1, nil },
		countByTypeFn:       func(uuid.UUID, string) (int64, error) { return 4, nil },
	}

	svc := newJourneyForTest(t, states, rounds, tasks, entries, NopNotifier{})
	state, err := svc.Recalculate(context.Background(), userID)
	if err != nil {
		t.Fatalf("Recalculate: %v", err)
	}

	// 3/6 assessments, 5/10 tasks, 2/5 pillars, 1/4 milestones
	// = 15 + 20 + 10 + 1.25, rounded to 46.
	if state.JourneyProgress != 46 {
		t.Fatalf("progress = %d, want 46", state.JourneyProgress)
	}
	if state.CurrentPhase != types.PhaseActive {
		t.Fatalf("phase = %q, want %q", state.CurrentPhase, types.PhaseActive)
	}

	stored, err := states.GetByUserID(context.Background(), nil, userID)
	if err != nil {
		t.Fatalf("state not persisted: %v", err)
	}
	if stored.JourneyProgress != 46 || stored.CurrentPhase != types.PhaseActive {
		t.Fatalf("stored state = (%d, %q)", stored.JourneyProgress, stored.CurrentPhase)
	}
}

func TestRecalculateKeepsStoredStateID(t *testing.T) {
	userID := uuid.New()
	seededID := uuid.New()
	states := newFakeJourneyStateRepo()
	states.states[userID] = &types.JourneyState{
		ID:           seededID,
		UserID:       userID,
		CurrentPhase: types.PhaseWelcome,
	}
	svc := newJourneyForTest(t, states, &fakeRoundRepo{}, &fakeTaskRepo{}, &fakePathEntryRepo{}, NopNotifier{})

	state, err := svc.Recalculate(context.Background(), userID)
	if err != nil {
		t.Fatalf("Recalculate: %v", err)
	}
	if state.ID != seededID {
		t.Fatalf("state id = %s, want the stored %s", state.ID, seededID)
	}
	stored, _ := states.GetByUserID(context.Background(), nil, userID)
	if stored.ID != seededID {
		t.Fatalf("stored id = %s, want %s", stored.ID, seededID)
	}

	// A user without state gets a fresh identifier.
	freshUser := uuid.New()
	fresh, err := svc.Recalculate(context.Background(), freshUser)
	if err != nil {
		t.Fatalf("Recalculate (fresh): %v", err)
	}
	if fresh.ID == uuid.Nil {
		t.Fatalf("fresh state must carry an id")
	}
}

func TestRecalculatePropagatesFetchErrors(t *testing.T) {
	userID := uuid.New()
	tasks := &fakeTaskRepo{
		countsFn: func(uuid.UUID) (repos.TaskCounts, error) {
			return repos.TaskCounts{}, fmt.Errorf("db gone")
		},
	}
	svc := newJourneyForTest(t, newFakeJourneyStateRepo(), &fakeRoundRepo{}, tasks, &fakePathEntryRepo{}, NopNotifier{})
	if _, err := svc.Recalculate(context.Background(), userID); err == nil {
		t.Fatalf("expected error when a component fetch fails")
	}
}

func TestRecalculateNotifiesOnPhaseChangeOnly(t *testing.T) {
	userID := uuid.New()
	states := newFakeJourneyStateRepo()
	notifier := &recordingNotifier{}
	rounds := &fakeRoundRepo{
		countDistinctFn: func(_ uuid.UUID, exclude []string) (int64, error) { return 0, nil },
	}
	tasks := &fakeTaskRepo{
		countsFn: func(uuid.UUID) (repos.TaskCounts, error) {
			return repos.TaskCounts{Total: 2, Completed: 0}, nil
		},
	}
	svc := newJourneyForTest(t, states, rounds, tasks, &fakePathEntryRepo{}, notifier)

	// First calculation has no previous phase, so no event.
	if _, err := svc.Recalculate(context.Background(), userID); err != nil {
		t.Fatalf("Recalculate: %v", err)
	}
	if len(notifier.events) != 0 {
		t.Fatalf("unexpected events on first calculation: %d", len(notifier.events))
	}

	// Same counts, same phase: still no event.
	if _, err := svc.Recalculate(context.Background(), userID); err != nil {
		t.Fatalf("Recalculate: %v", err)
	}
	if len(notifier.events) != 0 {
		t.Fatalf("unexpected events without a phase change: %d", len(notifier.events))
	}

	// One task done lifts progress to 20%, crossing into the active phase.
	tasks.countsFn = func(uuid.UUID) (repos.TaskCounts, error) {
		return repos.TaskCounts{Total: 2, Completed: 1}, nil
	}
	if _, err := svc.Recalculate(context.Background(), userID); err != nil {
		t.Fatalf("Recalculate: %v", err)
	}
	if len(notifier.events) != 1 {
		t.Fatalf("events = %d, want 1 after phase change", len(notifier.events))
	}
	if notifier.events[0].Type != realtime.EventJourneyUpdate {
		t.Fatalf("event type = %q", notifier.events[0].Type)
	}
}

func TestMarkAssessmentCompleted(t *testing.T) {
	userID := uuid.New()
	states := newFakeJourneyStateRepo()
	rounds := &fakeRoundRepo{
		countDistinctFn: func(_ uuid.UUID, exclude []string) (int64, error) {
			if len(exclude) > 0 {
				return 0, nil
			}
			return 1, nil
		},
	}
	svc := newJourneyForTest(t, states, rounds, &fakeTaskRepo{}, &fakePathEntryRepo{}, NopNotifier{})

	if _, err := svc.MarkAssessmentCompleted(context.Background(), userID, pillars.Welcome); err != nil {
		t.Fatalf("MarkAssessmentCompleted: %v", err)
	}

	stored, err := states.GetByUserID(context.Background(), nil, userID)
	if err != nil {
		t.Fatalf("state not persisted: %v", err)
	}
	if got := string(stored.CompletedAssessments); got != `["welcome"]` {
		t.Fatalf("completed assessments = %s", got)
	}
	if stored.NextRecommendedAssessment != "self_care" {
		t.Fatalf("next recommended = %q, want self_care", stored.NextRecommendedAssessment)
	}

	// Marking the same kind again does not duplicate it.
	if _, err := svc.MarkAssessmentCompleted(context.Background(), userID, pillars.Welcome); err != nil {
		t.Fatalf("MarkAssessmentCompleted (repeat): %v", err)
	}
	stored, _ = states.GetByUserID(context.Background(), nil, userID)
	if got := string(stored.CompletedAssessments); got != `["welcome"]` {
		t.Fatalf("completed assessments after repeat = %s", got)
	}
}

func TestResetWelcome(t *testing.T) {
	userID := uuid.New()
	states := newFakeJourneyStateRepo()
	svc := newJourneyForTest(t, states, &fakeRoundRepo{}, &fakeTaskRepo{}, &fakePathEntryRepo{}, NopNotifier{})

	if err := svc.ResetWelcome(context.Background(), userID); err != nil {
		t.Fatalf("ResetWelcome: %v", err)
	}
	stored, err := states.GetByUserID(context.Background(), nil, userID)
	if err != nil {
		t.Fatalf("state not persisted: %v", err)
	}
	if stored.CurrentPhase != types.PhaseWelcome || stored.JourneyProgress != 0 {
		t.Fatalf("state = (%q, %d), want welcome phase at zero", stored.CurrentPhase, stored.JourneyProgress)
	}
	if stored.NextRecommendedAssessment != "welcome" {
		t.Fatalf("next recommended = %q, want welcome", stored.NextRecommendedAssessment)
	}
}
