package service

import (
	"context"
	"log/slog"
	"time"

	"warbler/internal/middleware"
	"warbler/internal/models"
	"warbler/internal/observability"
	"warbler/internal/repository"
	"warbler/internal/validation"
)

// MessageService creates, reads and removes messages.
type MessageService struct {
	messages repository.MessageRepository
	users    repository.UserRepository
	now      func() time.Time
}

// NewMessageService returns a new MessageService.
func NewMessageService(messages repository.MessageRepository, users repository.UserRepository) *MessageService {
	return &MessageService{messages: messages, users: users, now: time.Now}
}

// Post stores text as a new message by author, timestamped now (UTC).
func (s *MessageService) Post(ctx context.Context, author *models.User, text string) (*models.Message, error) {
	if author == nil {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	text, err := validation.NormalizeMessageText(text)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	msg := &models.Message{
		Text:      text,
		Timestamp: s.now().UTC(),
		UserID:    author.ID,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}
	msg.User = author

	observability.MessagesPosted.Inc()
	middleware.Logger.InfoContext(ctx, "message posted", slog.Uint64("message_id", uint64(msg.ID)))
	return msg, nil
}

// Get returns the message with its author, or NOT_FOUND.
func (s *MessageService) Get(ctx context.Context, id uint) (*models.Message, error) {
	return s.messages.GetByID(ctx, id)
}

// Delete removes the message and its likes. Callers decide who may delete.
func (s *MessageService) Delete(ctx context.Context, id uint) error {
	if err := s.messages.Delete(ctx, id); err != nil {
		return err
	}
	middleware.Logger.InfoContext(ctx, "message deleted", slog.Uint64("message_id", uint64(id)))
	return nil
}

// ListByUser returns userID's newest messages, at most limit (capped at 100).
func (s *MessageService) ListByUser(ctx context.Context, userID uint, limit int) ([]models.Message, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.messages.ListByUser(ctx, userID, limit)
}
