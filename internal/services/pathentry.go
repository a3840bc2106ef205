package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shimms/shimms-backend/internal/logger"
	pkgerr "github.com/shimms/shimms-backend/internal/pkg/errors"
	"github.com/shimms/shimms-backend/internal/realtime"
	"github.com/shimms/shimms-backend/internal/repos"
	"github.com/shimms/shimms-backend/internal/types"
)

var validPathEntryTypes = map[string]bool{
	types.PathEntryRecommendation: true,
	types.PathEntryTask:           true,
	types.PathEntryEvent:          true,
	types.PathEntryMilestone:      true,
	types.PathEntryAssessment:     true,
}

type PathEntryService interface {
	ListClientPath(ctx context.Context, actorID, targetID uuid.UUID) ([]*types.PathEntry, error)
	CreateEntry(ctx context.Context, actorID uuid.UUID, entry *types.PathEntry) (*types.PathEntry, error)
	// UpdateEntryStatus moves an entry through pending -> completed;
	// milestone completions feed journey progress, so it recalculates.
	UpdateEntryStatus(ctx context.Context, actorID, targetID, entryID uuid.UUID, status string) error
}

type pathEntryService struct {
	db        *gorm.DB
	log       *logger.Logger
	entryRepo repos.PathEntryRepo
	access    AccessService
	journey   JourneyService
	notifier  Notifier
}

func NewPathEntryService(db *gorm.DB, log *logger.Logger, entryRepo repos.PathEntryRepo, access AccessService, journey JourneyService, notifier Notifier) PathEntryService {
	serviceLog := log.With("service", "PathEntryService")
	return &pathEntryService{
		db:        db,
		log:       serviceLog,
		entryRepo: entryRepo,
		access:    access,
		journey:   journey,
		notifier:  notifier,
	}
}

func (s *pathEntryService) ListClientPath(ctx context.Context, actorID, targetID uuid.UUID) ([]*types.PathEntry, error) {
	if err := s.access.Authorize(ctx, actorID, targetID); err != nil {
		return nil, err
	}
	visibleOnly := actorID == targetID
	return s.entryRepo.ListByUser(ctx, nil, targetID, visibleOnly)
}

func (s *pathEntryService) CreateEntry(ctx context.Context, actorID uuid.UUID, entry *types.PathEntry) (*types.PathEntry, error) {
	if err := s.access.Authorize(ctx, actorID, entry.UserID); err != nil {
		return nil, err
	}
	if entry.Title == "" {
		return nil, fmt.Errorf("%w: title is required", pkgerr.ErrInvalidArgument)
	}
	if !validPathEntryTypes[entry.Type] {
		return nil, fmt.Errorf("%w: unknown entry type %q", pkgerr.ErrInvalidArgument, entry.Type)
	}

	entry.ID = uuid.New()
	entry.CreatedBy = actorID
	if entry.Status == "" {
		entry.Status = "pending"
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	if _, err := s.entryRepo.Create(ctx, nil, []*types.PathEntry{entry}); err != nil {
		return nil, fmt.Errorf("create path entry: %w", err)
	}

	if entry.VisibleToClient {
		s.notifier.Notify(ctx, realtime.Event{
			UserID: entry.UserID,
			Type:   realtime.EventPathEntry,
			Payload: map[string]any{
				"entry_id": entry.ID.String(),
				"title":    entry.Title,
			},
		})
	}
	return entry, nil
}

func (s *pathEntryService) UpdateEntryStatus(ctx context.Context, actorID, targetID, entryID uuid.UUID, status string) error {
	if err := s.access.Authorize(ctx, actorID, targetID); err != nil {
		return err
	}
	if status != "pending" && status != "completed" && status != "dismissed" {
		return fmt.Errorf("%w: unknown status %q", pkgerr.ErrInvalidArgument, status)
	}
	if err := s.entryRepo.UpdateStatus(ctx, nil, targetID, entryID, status); err != nil {
		return fmt.Errorf("update path entry status: %w", err)
	}
	if status == "completed" {
		if _, err := s.journey.Recalculate(ctx, targetID); err != nil {
			s.log.Warn("Failed to recalculate journey after entry completion", "user_id", targetID, "error", err)
		}
	}
	return nil
}
