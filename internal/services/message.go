package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shimms/shimms-backend/internal/logger"
	pkgerr "github.com/shimms/shimms-backend/internal/pkg/errors"
	"github.com/shimms/shimms-backend/internal/realtime"
	"github.com/shimms/shimms-backend/internal/repos"
	"github.com/shimms/shimms-backend/internal/types"
)

const messagePreviewLen = 140

type MessageService interface {
	// Send requires the sender to have access to the receiver (self excluded
	// by definition; coach needs an active assignment, and vice versa the
	// client can always reach their own coach through the same rule applied
	// from the coach side).
	Send(ctx context.Context, senderID, receiverID uuid.UUID, content string) (*types.Message, error)
	ListConversation(ctx context.Context, actorID, otherID uuid.UUID, limit int) ([]*types.Message, error)
	MarkConversationRead(ctx context.Context, actorID, otherID uuid.UUID) error
}

type messageService struct {
	db          *gorm.DB
	log         *logger.Logger
	messageRepo repos.MessageRepo
	userRepo    repos.UserRepo
	access      AccessService
	mailer      MailerService
	notifier    Notifier
}

func NewMessageService(
	db *gorm.DB,
	log *logger.Logger,
	messageRepo repos.MessageRepo,
	userRepo repos.UserRepo,
	access AccessService,
	mailer MailerService,
	notifier Notifier,
) MessageService {
	serviceLog := log.With("service", "MessageService")
	return &messageService{
		db:          db,
		log:         serviceLog,
		messageRepo: messageRepo,
		userRepo:    userRepo,
		access:      access,
		mailer:      mailer,
		notifier:    notifier,
	}
}

// authorizeConversation allows the pair when either side has access to the
// other, so a client can message their coach even though the client holds no
// coach role themselves.
func (s *messageService) authorizeConversation(ctx context.Context, actorID, otherID uuid.UUID) error {
	if err := s.access.Authorize(ctx, actorID, otherID); err == nil {
		return nil
	}
	if err := s.access.Authorize(ctx, otherID, actorID); err != nil {
		return fmt.Errorf("%w: no conversation with user %s", pkgerr.ErrForbidden, otherID)
	}
	return nil
}

func (s *messageService) Send(ctx context.Context, senderID, receiverID uuid.UUID, content string) (*types.Message, error) {
	if content == "" {
		return nil, fmt.Errorf("%w: message content is required", pkgerr.ErrInvalidArgument)
	}
	if senderID == receiverID {
		return nil, fmt.Errorf("%w: cannot message yourself", pkgerr.ErrInvalidArgument)
	}
	if err := s.authorizeConversation(ctx, senderID, receiverID); err != nil {
		return nil, err
	}

	msg := &types.Message{
		ID:         uuid.New(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
	}
	if err := s.messageRepo.Create(ctx, nil, msg); err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}

	s.notifier.Notify(ctx, realtime.Event{
		UserID: receiverID,
		Type:   realtime.EventMessage,
		Payload: map[string]any{
			"message_id": msg.ID.String(),
			"sender_id":  senderID.String(),
		},
	})

	sender, err := s.userRepo.GetByID(ctx, nil, senderID)
	if err != nil {
		s.log.Warn("Failed to load sender for notification email", "sender_id", senderID, "error", err)
		return msg, nil
	}
	receiver, err := s.userRepo.GetByID(ctx, nil, receiverID)
	if err != nil {
		s.log.Warn("Failed to load receiver for notification email", "receiver_id", receiverID, "error", err)
		return msg, nil
	}
	s.mailer.SendCoachMessage(ctx, receiver.Email, sender.FirstName+" "+sender.LastName, previewOf(content))
	return msg, nil
}

// previewOf truncates on a rune boundary so multi-byte characters are never
// cut mid-sequence.
func previewOf(content string) string {
	runes := []rune(content)
	if len(runes) <= messagePreviewLen {
		return content
	}
	return string(runes[:messagePreviewLen]) + "…"
}

func (s *messageService) ListConversation(ctx context.Context, actorID, otherID uuid.UUID, limit int) ([]*types.Message, error) {
	if err := s.authorizeConversation(ctx, actorID, otherID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.messageRepo.ListBetween(ctx, nil, actorID, otherID, limit)
}

func (s *messageService) MarkConversationRead(ctx context.Context, actorID, otherID uuid.UUID) error {
	if err := s.authorizeConversation(ctx, actorID, otherID); err != nil {
		return err
	}
	return s.messageRepo.MarkRead(ctx, nil, actorID, otherID)
}
