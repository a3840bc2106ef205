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
	"github.com/shimms/shimms-backend/internal/repos"
	"github.com/shimms/shimms-backend/internal/types"
)

// FlowStatus tells the UI layer exactly which action applies for a
// (user, kind) pair. At most one of CanStart/CanResume is ever true.
type FlowStatus struct {
	HasCompleted  bool     `json:"has_completed"`
	HasInProgress bool     `json:"has_in_progress"`
	CanStart      bool     `json:"can_start"`
	CanResume     bool     `json:"can_resume"`
	ShouldRestart bool     `json:"should_restart"`
	StatusMessage string   `json:"status_message"`
	LastScore     *float64 `json:"last_score,omitempty"`
}

type AssessmentFlowService interface {
	// GetStatus is read-only and never fails: store errors degrade to the
	// conservative default (start allowed) so the UI always has an action.
	GetStatus(ctx context.Context, userID uuid.UUID, kind pillars.Key) *FlowStatus
	SaveDraft(ctx context.Context, userID uuid.UUID, kind pillars.Key, answers map[string]float64) (*types.AssessmentDraft, error)
	// ClearDraft is idempotent; clearing a missing draft succeeds.
	ClearDraft(ctx context.Context, userID uuid.UUID, kind pillars.Key) error
}

type assessmentFlowService struct {
	db          *gorm.DB
	log         *logger.Logger
	draftRepo   repos.AssessmentDraftRepo
	roundRepo   repos.AssessmentRoundRepo
	draftExpiry time.Duration
}

func NewAssessmentFlowService(db *gorm.DB, log *logger.Logger, draftRepo repos.AssessmentDraftRepo, roundRepo repos.AssessmentRoundRepo, draftExpiry time.Duration) AssessmentFlowService {
	serviceLog := log.With("service", "AssessmentFlowService")
	return &assessmentFlowService{
		db:          db,
		log:         serviceLog,
		draftRepo:   draftRepo,
		roundRepo:   roundRepo,
		draftExpiry: draftExpiry,
	}
}

func (s *assessmentFlowService) GetStatus(ctx context.Context, userID uuid.UUID, kind pillars.Key) *FlowStatus {
	round, err := s.roundRepo.GetLatestByUserAndKind(ctx, nil, userID, kind.String())
	if err != nil && !errors.Is(err, pkgerr.ErrNotFound) {
		s.log.Warn("Round lookup failed, degrading to start", "user_id", userID, "kind", kind, "error", err)
		return conservativeStatus()
	}

	draft, err := s.draftRepo.GetByUserAndKind(ctx, nil, userID, kind.String())
	if err != nil && !errors.Is(err, pkgerr.ErrNotFound) {
		s.log.Warn("Draft lookup failed, degrading to start", "user_id", userID, "kind", kind, "error", err)
		return conservativeStatus()
	}

	return resolveFlowStatus(round, draft, time.Now(), s.draftExpiry)
}

// resolveFlowStatus is the pure state decision. A completed round is one with
// non-null analysis; a draft older than the expiry window behaves like
// NotStarted but the row is retained until explicitly cleared.
func resolveFlowStatus(round *types.AssessmentRound, draft *types.AssessmentDraft, now time.Time, expiry time.Duration) *FlowStatus {
	st := &FlowStatus{}

	if round != nil && round.AIAnalysis != nil {
		st.HasCompleted = true
		st.LastScore = overallScore(round.Scores)
		st.StatusMessage = "Assessment completed. You can review your analysis or start a new round."
		return st
	}

	if draft == nil {
		st.CanStart = true
		st.StatusMessage = "Ready to start."
		return st
	}

	age := now.Sub(draft.LastSavedAt)
	if age > expiry {
		st.ShouldRestart = true
		st.CanStart = true
		st.StatusMessage = "Your saved answers are older than a week. Please start over."
		return st
	}

	st.HasInProgress = true
	st.CanResume = true
	st.StatusMessage = "You have saved answers. Pick up where you left off."
	return st
}

func conservativeStatus() *FlowStatus {
	return &FlowStatus{
		CanStart:      true,
		StatusMessage: "Ready to start.",
	}
}

func overallScore(scores datatypes.JSON) *float64 {
	if len(scores) == 0 {
		return nil
	}
	var parsed map[string]float64
	if err := json.Unmarshal(scores, &parsed); err != nil {
		return nil
	}
	if v, ok := parsed["overall"]; ok {
		return &v
	}
	return nil
}

func (s *assessmentFlowService) SaveDraft(ctx context.Context, userID uuid.UUID, kind pillars.Key, answers map[string]float64) (*types.AssessmentDraft, error) {
	raw, err := json.Marshal(answers)
	if err != nil {
		return nil, fmt.Errorf("encode draft answers: %w", err)
	}
	draft, err := s.draftRepo.Upsert(ctx, nil, userID, kind.String(), datatypes.JSON(raw))
	if err != nil {
		return nil, fmt.Errorf("save draft: %w", err)
	}
	return draft, nil
}

func (s *assessmentFlowService) ClearDraft(ctx context.Context, userID uuid.UUID, kind pillars.Key) error {
	if err := s.draftRepo.Delete(ctx, nil, userID, kind.String()); err != nil {
		return fmt.Errorf("clear draft: %w", err)
	}
	return nil
}
