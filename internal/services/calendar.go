package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shimms/shimms-backend/internal/logger"
	pkgerr "github.com/shimms/shimms-backend/internal/pkg/errors"
	"github.com/shimms/shimms-backend/internal/repos"
	"github.com/shimms/shimms-backend/internal/types"
)

type CalendarService interface {
	// ListClientEvents is the access-gated calendar read. Reads are bounded
	// by the configured timeout so a slow store degrades to an error instead
	// of a hung request.
	ListClientEvents(ctx context.Context, actorID, targetID uuid.UUID, from, to time.Time) ([]*types.CalendarEvent, error)
	CreateClientEvent(ctx context.Context, actorID uuid.UUID, event *types.CalendarEvent) (*types.CalendarEvent, error)
	DeleteClientEvent(ctx context.Context, actorID, targetID, eventID uuid.UUID) error
}

type calendarService struct {
	db          *gorm.DB
	log         *logger.Logger
	eventRepo   repos.CalendarEventRepo
	access      AccessService
	readTimeout time.Duration
}

func NewCalendarService(db *gorm.DB, log *logger.Logger, eventRepo repos.CalendarEventRepo, access AccessService, readTimeout time.Duration) CalendarService {
	serviceLog := log.With("service", "CalendarService")
	return &calendarService{
		db:          db,
		log:         serviceLog,
		eventRepo:   eventRepo,
		access:      access,
		readTimeout: readTimeout,
	}
}

func (s *calendarService) ListClientEvents(ctx context.Context, actorID, targetID uuid.UUID, from, to time.Time) ([]*types.CalendarEvent, error) {
	if err := s.access.Authorize(ctx, actorID, targetID); err != nil {
		return nil, err
	}
	if !to.After(from) {
		return nil, fmt.Errorf("%w: empty time range", pkgerr.ErrInvalidArgument)
	}

	readCtx, cancel := context.WithTimeout(ctx, s.readTimeout)
	defer cancel()

	// Clients see only entries flagged visible; coaches and admins see all.
	visibleOnly := actorID == targetID
	events, err := s.eventRepo.ListByUserBetween(readCtx, nil, targetID, from, to, visibleOnly)
	if err != nil {
		return nil, fmt.Errorf("list calendar events: %w", err)
	}
	return events, nil
}

func (s *calendarService) CreateClientEvent(ctx context.Context, actorID uuid.UUID, event *types.CalendarEvent) (*types.CalendarEvent, error) {
	if err := s.access.Authorize(ctx, actorID, event.UserID); err != nil {
		return nil, err
	}
	if event.Title == "" {
		return nil, fmt.Errorf("%w: title is required", pkgerr.ErrInvalidArgument)
	}
	if event.StartsAt.IsZero() {
		return nil, fmt.Errorf("%w: starts_at is required", pkgerr.ErrInvalidArgument)
	}
	if event.EndsAt != nil && !event.EndsAt.After(event.StartsAt) {
		return nil, fmt.Errorf("%w: ends_at must be after starts_at", pkgerr.ErrInvalidArgument)
	}

	event.ID = uuid.New()
	event.CreatedBy = actorID
	if err := s.eventRepo.Create(ctx, nil, event); err != nil {
		return nil, fmt.Errorf("create calendar event: %w", err)
	}
	return event, nil
}

func (s *calendarService) DeleteClientEvent(ctx context.Context, actorID, targetID, eventID uuid.UUID) error {
	if err := s.access.Authorize(ctx, actorID, targetID); err != nil {
		return err
	}
	if err := s.eventRepo.Delete(ctx, nil, targetID, eventID); err != nil {
		return fmt.Errorf("delete calendar event: %w", err)
	}
	return nil
}
