package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/shimms/shimms-backend/internal/logger"
	"github.com/shimms/shimms-backend/internal/pillars"
	pkgerr "github.com/shimms/shimms-backend/internal/pkg/errors"
	"github.com/shimms/shimms-backend/internal/platform/stefanai"
	"github.com/shimms/shimms-backend/internal/realtime"
	"github.com/shimms/shimms-backend/internal/repos"
	"github.com/shimms/shimms-backend/internal/types"
)

// CompleteResult is what the completion pipeline hands back to the handler.
// AnalysisAvailable is false when the round was saved but analysis could not
// be produced; the round stays eligible for Consolidate.
type CompleteResult struct {
	Round             *types.AssessmentRound    `json:"round"`
	Recommendations   []stefanai.Recommendation `json:"recommendations,omitempty"`
	Greeting          string                    `json:"greeting"`
	AnalysisAvailable bool                      `json:"analysis_available"`
}

// ConsolidateResult summarizes one operator-triggered repair pass.
type ConsolidateResult struct {
	Scanned  int `json:"scanned"`
	Repaired int `json:"repaired"`
	Failed   int `json:"failed"`
}

type AssessmentService interface {
	// Complete runs the submission pipeline: score, persist the round, attach
	// analysis, write actionables, clear the draft, update the journey.
	// Steps are sequential with no compensation; an analysis failure leaves
	// the round without analysis and the caller still gets a result.
	Complete(ctx context.Context, userID uuid.UUID, kind pillars.Key, answers map[string]float64) (*CompleteResult, error)
	GetRound(ctx context.Context, userID, roundID uuid.UUID) (*types.AssessmentRound, error)
	ListRounds(ctx context.Context, userID uuid.UUID) ([]*types.AssessmentRound, error)
	// Consolidate retries analysis for up to limit rounds that are missing it.
	// It is the system's only retry path and touches every user's rounds, so
	// the actor must hold an admin role.
	Consolidate(ctx context.Context, actorID uuid.UUID, limit int) (*ConsolidateResult, error)
}

type assessmentService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	draftRepo     repos.AssessmentDraftRepo
	roundRepo     repos.AssessmentRoundRepo
	pathEntryRepo repos.PathEntryRepo
	access        AccessService
	journey       JourneyService
	persona       PersonaService
	ai            stefanai.Client
	mailer        MailerService
	notifier      Notifier
}

func NewAssessmentService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	draftRepo repos.AssessmentDraftRepo,
	roundRepo repos.AssessmentRoundRepo,
	pathEntryRepo repos.PathEntryRepo,
	access AccessService,
	journey JourneyService,
	persona PersonaService,
	ai stefanai.Client,
	mailer MailerService,
	notifier Notifier,
) AssessmentService {
	serviceLog := log.With("service", "AssessmentService")
	return &assessmentService{
		db:            db,
		log:           serviceLog,
		userRepo:      userRepo,
		draftRepo:     draftRepo,
		roundRepo:     roundRepo,
		pathEntryRepo: pathEntryRepo,
		access:        access,
		journey:       journey,
		persona:       persona,
		ai:            ai,
		mailer:        mailer,
		notifier:      notifier,
	}
}

func (s *assessmentService) Complete(ctx context.Context, userID uuid.UUID, kind pillars.Key, answers map[string]float64) (*CompleteResult, error) {
	if len(answers) == 0 {
		return nil, fmt.Errorf("%w: answers are required", pkgerr.ErrInvalidArgument)
	}

	user, err := s.userRepo.GetByID(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	scores := pillars.ComputeScores(kind, answers)

	answersJSON, err := json.Marshal(answers)
	if err != nil {
		return nil, fmt.Errorf("encode answers: %w", err)
	}
	scoresJSON, err := json.Marshal(scores)
	if err != nil {
		return nil, fmt.Errorf("encode scores: %w", err)
	}

	round := &types.AssessmentRound{
		ID:         uuid.New(),
		UserID:     userID,
		PillarType: kind.String(),
		Answers:    datatypes.JSON(answersJSON),
		Scores:     datatypes.JSON(scoresJSON),
		CreatedAt:  time.Now(),
	}
	if err := s.roundRepo.Create(ctx, nil, round); err != nil {
		return nil, fmt.Errorf("persist assessment round: %w", err)
	}

	result := &CompleteResult{Round: round}

	analysis, recs, aiErr := s.analyze(ctx, user, kind, answers, scores)
	if aiErr != nil {
		s.log.Warn("Analysis unavailable for round, leaving for consolidation",
			"round_id", round.ID, "kind", kind, "error", aiErr)
	} else {
		if err := s.roundRepo.AttachAnalysis(ctx, nil, round.ID, analysis); err != nil {
			s.log.Warn("Failed to attach analysis", "round_id", round.ID, "error", err)
		} else {
			round.AIAnalysis = &analysis
			result.AnalysisAvailable = true
			result.Recommendations = recs
			if err := s.writeActionables(ctx, userID, kind, round.ID, recs); err != nil {
				s.log.Warn("Failed to write actionable entries", "round_id", round.ID, "error", err)
			}
		}
	}

	if err := s.draftRepo.Delete(ctx, nil, userID, kind.String()); err != nil {
		s.log.Warn("Failed to clear draft after completion", "user_id", userID, "kind", kind, "error", err)
	}

	if _, err := s.journey.MarkAssessmentCompleted(ctx, userID, kind); err != nil {
		s.log.Warn("Failed to update journey after completion", "user_id", userID, "kind", kind, "error", err)
	}

	triggerContext := "assessment_completion"
	if v, ok := scores["overall"]; ok && v < 40 {
		triggerContext = "low_scores"
	}
	_, greeting := s.persona.Select(triggerContext, user.FirstName)
	result.Greeting = greeting

	s.notifier.Notify(ctx, realtime.Event{
		UserID: userID,
		Type:   realtime.EventAssessment,
		Payload: map[string]any{
			"kind":     kind.String(),
			"round_id": round.ID.String(),
		},
	})
	if next := pillars.NextRecommendedAfter(kind); next != "" {
		s.mailer.SendAssessmentReminder(ctx, user.Email, user.FirstName, next.String())
	}

	return result, nil
}

func (s *assessmentService) analyze(ctx context.Context, user *types.User, kind pillars.Key, answers, scores map[string]float64) (string, []stefanai.Recommendation, error) {
	if s.ai == nil {
		return "", nil, fmt.Errorf("analysis disabled")
	}
	out, err := s.ai.Analyze(ctx, stefanai.AnalyzeRequest{
		Kind:      kind,
		FirstName: user.FirstName,
		Answers:   answers,
		Scores:    scores,
	})
	if err != nil {
		return "", nil, err
	}
	return out.Analysis, out.Recommendations, nil
}

// writeActionables turns recommendations into client-visible timeline entries
// plus one completion marker for the round itself.
func (s *assessmentService) writeActionables(ctx context.Context, userID uuid.UUID, kind pillars.Key, roundID uuid.UUID, recs []stefanai.Recommendation) error {
	now := time.Now()
	meta, _ := json.Marshal(map[string]string{"round_id": roundID.String(), "kind": kind.String()})

	entries := []*types.PathEntry{{
		ID:              uuid.New(),
		UserID:          userID,
		Type:            types.PathEntryAssessment,
		Title:           fmt.Sprintf("Completed the %s assessment", kind.String()),
		AIGenerated:     false,
		VisibleToClient: true,
		Status:          "completed",
		Timestamp:       now,
		Metadata:        datatypes.JSON(meta),
	}}
	for _, rec := range recs {
		entries = append(entries, &types.PathEntry{
			ID:              uuid.New(),
			UserID:          userID,
			Type:            types.PathEntryRecommendation,
			Title:           rec.Title,
			Details:         rec.Details,
			AIGenerated:     true,
			VisibleToClient: true,
			Status:          "pending",
			Timestamp:       now,
			Metadata:        datatypes.JSON(meta),
		})
	}
	if _, err := s.pathEntryRepo.Create(ctx, nil, entries); err != nil {
		return err
	}
	for _, e := range entries[1:] {
		s.notifier.Notify(ctx, realtime.Event{
			UserID: userID,
			Type:   realtime.EventPathEntry,
			Payload: map[string]any{
				"entry_id": e.ID.String(),
				"title":    e.Title,
			},
		})
	}
	return nil
}

func (s *assessmentService) GetRound(ctx context.Context, userID, roundID uuid.UUID) (*types.AssessmentRound, error) {
	round, err := s.roundRepo.GetByID(ctx, nil, roundID)
	if err != nil {
		return nil, err
	}
	if round.UserID != userID {
		return nil, fmt.Errorf("%w: round belongs to another user", pkgerr.ErrForbidden)
	}
	return round, nil
}

func (s *assessmentService) ListRounds(ctx context.Context, userID uuid.UUID) ([]*types.AssessmentRound, error) {
	return s.roundRepo.ListByUser(ctx, nil, userID)
}

func (s *assessmentService) Consolidate(ctx context.Context, actorID uuid.UUID, limit int) (*ConsolidateResult, error) {
	roles, err := s.access.RolesOf(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !roles.Has(types.RoleAdmin) && !roles.Has(types.RoleSuperadmin) {
		return nil, fmt.Errorf("%w: admin role required", pkgerr.ErrForbidden)
	}

	if limit <= 0 {
		limit = 50
	}
	rounds, err := s.roundRepo.ListMissingAnalysis(ctx, nil, limit)
	if err != nil {
		return nil, fmt.Errorf("list rounds missing analysis: %w", err)
	}

	result := &ConsolidateResult{Scanned: len(rounds)}
	for _, round := range rounds {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		if err := s.repairRound(ctx, round); err != nil {
			result.Failed++
			s.log.Warn("Consolidation failed for round", "round_id", round.ID, "error", err)
			continue
		}
		result.Repaired++
	}
	s.log.Info("Consolidation pass finished",
		"scanned", result.Scanned, "repaired", result.Repaired, "failed", result.Failed)
	return result, nil
}

func (s *assessmentService) repairRound(ctx context.Context, round *types.AssessmentRound) error {
	kind, err := pillars.Parse(round.PillarType)
	if err != nil {
		return fmt.Errorf("unknown kind %q: %w", round.PillarType, err)
	}
	user, err := s.userRepo.GetByID(ctx, nil, round.UserID)
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}

	var answers, scores map[string]float64
	if err := json.Unmarshal(round.Answers, &answers); err != nil {
		return fmt.Errorf("decode answers: %w", err)
	}
	if len(round.Scores) > 0 {
		if err := json.Unmarshal(round.Scores, &scores); err != nil {
			return fmt.Errorf("decode scores: %w", err)
		}
	}

	analysis, recs, err := s.analyze(ctx, user, kind, answers, scores)
	if err != nil {
		return err
	}
	if err := s.roundRepo.AttachAnalysis(ctx, nil, round.ID, analysis); err != nil {
		// Another pass already repaired it; treat as done.
		if errors.Is(err, pkgerr.ErrConflict) {
			return nil
		}
		return fmt.Errorf("attach analysis: %w", err)
	}
	if err := s.writeActionables(ctx, round.UserID, kind, round.ID, recs); err != nil {
		s.log.Warn("Failed to write actionable entries during consolidation", "round_id", round.ID, "error", err)
	}
	return nil
}
