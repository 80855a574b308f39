package service

import (
	"context"
	"log/slog"

	"warbler/internal/middleware"
	"warbler/internal/models"
	"warbler/internal/observability"
	"warbler/internal/repository"
)

// LikeService maintains the like graph between users and messages.
type LikeService struct {
	likes    repository.LikeRepository
	messages repository.MessageRepository
}

// NewLikeService returns a new LikeService.
func NewLikeService(likes repository.LikeRepository, messages repository.MessageRepository) *LikeService {
	return &LikeService{likes: likes, messages: messages}
}

// Like records that user likes messageID. Users cannot like their own messages;
// liking twice is a no-op.
func (s *LikeService) Like(ctx context.Context, user *models.User, messageID uint) error {
	if user == nil {
		return models.NewUnauthorizedError("Authentication required")
	}
	msg, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		return err
	}
	if msg.UserID == user.ID {
		return models.NewSelfLikeError()
	}
	if err := s.likes.Like(ctx, user.ID, messageID); err != nil {
		return err
	}

	observability.LikeEvents.WithLabelValues("like").Inc()
	middleware.Logger.InfoContext(ctx, "message liked", slog.Uint64("message_id", uint64(messageID)))
	return nil
}

// Unlike removes the like if present.
func (s *LikeService) Unlike(ctx context.Context, user *models.User, messageID uint) error {
	if user == nil {
		return models.NewUnauthorizedError("Authentication required")
	}
	if _, err := s.messages.GetByID(ctx, messageID); err != nil {
		return err
	}
	if err := s.likes.Unlike(ctx, user.ID, messageID); err != nil {
		return err
	}

	observability.LikeEvents.WithLabelValues("unlike").Inc()
	middleware.Logger.InfoContext(ctx, "message unliked", slog.Uint64("message_id", uint64(messageID)))
	return nil
}

// LikedMessages lists the messages userID liked, most recently liked first.
func (s *LikeService) LikedMessages(ctx context.Context, userID uint) ([]models.Message, error) {
	return s.likes.LikedMessages(ctx, userID)
}

// IsLiked reports whether userID likes messageID.
func (s *LikeService) IsLiked(ctx context.Context, userID, messageID uint) (bool, error) {
	return s.likes.IsLiked(ctx, userID, messageID)
}
