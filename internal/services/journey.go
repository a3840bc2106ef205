package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/shimms/shimms-backend/internal/config"
	"github.com/shimms/shimms-backend/internal/logger"
	"github.com/shimms/shimms-backend/internal/pillars"
	pkgerr "github.com/shimms/shimms-backend/internal/pkg/errors"
	"github.com/shimms/shimms-backend/internal/realtime"
	"github.com/shimms/shimms-backend/internal/repos"
	"github.com/shimms/shimms-backend/internal/types"
)

// ComponentCounts is the snapshot the progress computation runs on. The four
// pairs come from four independent queries; they are eventually consistent,
// not a transaction, and self-correct on the next recalculation.
type ComponentCounts struct {
	AssessmentsCompleted int64
	AssessmentsTotal     int64
	TasksCompleted       int64
	TasksTotal           int64
	PillarsActive        int64
	PillarsTotal         int64
	MilestonesCompleted  int64
	MilestonesTotal      int64
}

// ComputeProgress is the pure journey calculation: four clamped completion
// ratios weighted into one integer percentage, mapped to a phase label with
// closed lower bounds.
func ComputeProgress(counts ComponentCounts, weights config.JourneyWeights, thresholds config.PhaseThresholds) (int, string) {
	sum := ratio(counts.AssessmentsCompleted, counts.AssessmentsTotal)*weights.Assessments +
		ratio(counts.TasksCompleted, counts.TasksTotal)*weights.Tasks +
		ratio(counts.PillarsActive, counts.PillarsTotal)*weights.Pillars +
		ratio(counts.MilestonesCompleted, counts.MilestonesTotal)*weights.Milestones

	overall := int(math.Round(sum * 100))
	if overall < 0 {
		overall = 0
	}
	if overall > 100 {
		overall = 100
	}

	switch {
	case overall >= thresholds.Mastery:
		return overall, types.PhaseMastery
	case overall >= thresholds.Advanced:
		return overall, types.PhaseAdvanced
	case overall >= thresholds.Active:
		return overall, types.PhaseActive
	}
	return overall, types.PhaseWelcome
}

func ratio(completed, total int64) float64 {
	denom := total
	if denom < 1 {
		denom = 1
	}
	r := float64(completed) / float64(denom)
	if r < 0 {
		return 0
	}
	if r > 1 {
		return 1
	}
	return r
}

type JourneyService interface {
	GetState(ctx context.Context, userID uuid.UUID) (*types.JourneyState, error)
	// Recalculate fetches the four component counts, recomputes percentage
	// and phase, and overwrites the per-user row (last write wins).
	Recalculate(ctx context.Context, userID uuid.UUID) (*types.JourneyState, error)
	// MarkAssessmentCompleted records a completed kind and the next
	// recommended one, then recalculates.
	MarkAssessmentCompleted(ctx context.Context, userID uuid.UUID, kind pillars.Key) (*types.JourneyState, error)
	// ResetWelcome clears journey state back to the welcome phase.
	ResetWelcome(ctx context.Context, userID uuid.UUID) error
}

type journeyService struct {
	db            *gorm.DB
	log           *logger.Logger
	stateRepo     repos.JourneyStateRepo
	roundRepo     repos.AssessmentRoundRepo
	taskRepo      repos.TaskRepo
	pathEntryRepo repos.PathEntryRepo
	weights       config.JourneyWeights
	thresholds    config.PhaseThresholds
	notifier      Notifier
}

func NewJourneyService(
	db *gorm.DB,
	log *logger.Logger,
	stateRepo repos.JourneyStateRepo,
	roundRepo repos.AssessmentRoundRepo,
	taskRepo repos.TaskRepo,
	pathEntryRepo repos.PathEntryRepo,
	weights config.JourneyWeights,
	thresholds config.PhaseThresholds,
	notifier Notifier,
) JourneyService {
	serviceLog := log.With("service", "JourneyService")
	return &journeyService{
		db:            db,
		log:           serviceLog,
		stateRepo:     stateRepo,
		roundRepo:     roundRepo,
		taskRepo:      taskRepo,
		pathEntryRepo: pathEntryRepo,
		weights:       weights,
		thresholds:    thresholds,
		notifier:      notifier,
	}
}

func (s *journeyService) GetState(ctx context.Context, userID uuid.UUID) (*types.JourneyState, error) {
	state, err := s.stateRepo.GetByUserID(ctx, nil, userID)
	if err != nil {
		if errors.Is(err, pkgerr.ErrNotFound) {
			return s.Recalculate(ctx, userID)
		}
		return nil, err
	}
	return state, nil
}

func (s *journeyService) fetchCounts(ctx context.Context, userID uuid.UUID) (ComponentCounts, error) {
	counts := ComponentCounts{
		AssessmentsTotal: int64(len(pillars.Kinds())),
		PillarsTotal:     int64(len(pillars.Pillars())),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.roundRepo.CountDistinctKindsByUser(gctx, nil, userID)
		if err != nil {
			return fmt.Errorf("count completed assessments: %w", err)
		}
		counts.AssessmentsCompleted = n
		return nil
	})
	g.Go(func() error {
		tc, err := s.taskRepo.CountsByUser(gctx, nil, userID)
		if err != nil {
			return fmt.Errorf("count tasks: %w", err)
		}
		counts.TasksCompleted = tc.Completed
		counts.TasksTotal = tc.Total
		return nil
	})
	g.Go(func() error {
		n, err := s.roundRepo.CountDistinctKindsByUser(gctx, nil, userID, pillars.Welcome.String())
		if err != nil {
			return fmt.Errorf("count active pillars: %w", err)
		}
		counts.PillarsActive = n
		return nil
	})
	g.Go(func() error {
		done, err := s.pathEntryRepo.CountByTypeAndStatus(gctx, nil, userID, types.PathEntryMilestone, "completed")
		if err != nil {
			return fmt.Errorf("count completed milestones: %w", err)
		}
		total, err := s.pathEntryRepo.CountByType(gctx, nil, userID, types.PathEntryMilestone)
		if err != nil {
			return fmt.Errorf("count milestones: %w", err)
		}
		counts.MilestonesCompleted = done
		counts.MilestonesTotal = total
		return nil
	})
	if err := g.Wait(); err != nil {
		return ComponentCounts{}, err
	}
	return counts, nil
}

func (s *journeyService) Recalculate(ctx context.Context, userID uuid.UUID) (*types.JourneyState, error) {
	counts, err := s.fetchCounts(ctx, userID)
	if err != nil {
		return nil, err
	}
	overall, phase := ComputeProgress(counts, s.weights, s.thresholds)

	state, err := s.stateRepo.GetByUserID(ctx, nil, userID)
	if err != nil {
		if !errors.Is(err, pkgerr.ErrNotFound) {
			return nil, err
		}
		state = &types.JourneyState{UserID: userID}
	}
	prevPhase := state.CurrentPhase

	state.JourneyProgress = overall
	state.CurrentPhase = phase
	state.LastActivityAt = time.Now()
	if err := s.stateRepo.Upsert(ctx, nil, state); err != nil {
		return nil, fmt.Errorf("upsert journey state: %w", err)
	}

	if prevPhase != "" && prevPhase != phase {
		s.notifier.Notify(ctx, realtime.Event{
			UserID: userID,
			Type:   realtime.EventJourneyUpdate,
			Payload: map[string]any{
				"phase":    phase,
				"progress": overall,
			},
		})
	}
	return state, nil
}

func (s *journeyService) MarkAssessmentCompleted(ctx context.Context, userID uuid.UUID, kind pillars.Key) (*types.JourneyState, error) {
	state, err := s.stateRepo.GetByUserID(ctx, nil, userID)
	if err != nil {
		if !errors.Is(err, pkgerr.ErrNotFound) {
			return nil, err
		}
		state = &types.JourneyState{UserID: userID}
	}

	completed := decodeCompleted(state.CompletedAssessments)
	found := false
	for _, k := range completed {
		if k == kind {
			found = true
			break
		}
	}
	if !found {
		completed = append(completed, kind)
	}

	raw, err := json.Marshal(completed)
	if err != nil {
		return nil, fmt.Errorf("encode completed assessments: %w", err)
	}
	state.CompletedAssessments = datatypes.JSON(raw)
	state.NextRecommendedAssessment = pillars.NextRecommended(completed).String()
	state.LastActivityAt = time.Now()
	if err := s.stateRepo.Upsert(ctx, nil, state); err != nil {
		return nil, fmt.Errorf("upsert journey state: %w", err)
	}

	return s.Recalculate(ctx, userID)
}

func (s *journeyService) ResetWelcome(ctx context.Context, userID uuid.UUID) error {
	state := &types.JourneyState{
		UserID:                    userID,
		CurrentPhase:              types.PhaseWelcome,
		JourneyProgress:           0,
		CompletedAssessments:      datatypes.JSON([]byte("[]")),
		NextRecommendedAssessment: pillars.Welcome.String(),
		LastActivityAt:            time.Now(),
	}
	if err := s.stateRepo.Upsert(ctx, nil, state); err != nil {
		return fmt.Errorf("reset journey state: %w", err)
	}
	return nil
}

func decodeCompleted(raw datatypes.JSON) []pillars.Key {
	if len(raw) == 0 {
		return nil
	}
	var strs []string
	if err := json.Unmarshal(raw, &strs); err != nil {
		return nil
	}
	keys := make([]pillars.Key, 0, len(strs))
	for _, v := range strs {
		k, err := pillars.Parse(v)
		if err != nil {
			continue
		}
		keys = append(keys, k)
	}
	return keys
}
