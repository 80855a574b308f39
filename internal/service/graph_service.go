package service

import (
	"context"
	"log/slog"

	"warbler/internal/featureflags"
	"warbler/internal/middleware"
	"warbler/internal/models"
	"warbler/internal/observability"
	"warbler/internal/repository"
)

// GraphService maintains the directed follow graph.
type GraphService struct {
	follows repository.FollowRepository
	users   repository.UserRepository
	flags   *featureflags.Manager
}

// NewGraphService returns a new GraphService. flags may be nil.
func NewGraphService(follows repository.FollowRepository, users repository.UserRepository, flags *featureflags.Manager) *GraphService {
	return &GraphService{follows: follows, users: users, flags: flags}
}

// Follow adds the edge follower -> targetID. Repeating it is a no-op.
func (s *GraphService) Follow(ctx context.Context, follower *models.User, targetID uint) error {
	if follower == nil {
		return models.NewUnauthorizedError("Authentication required")
	}
	if follower.ID == targetID && s.flags.Enabled(featureflags.BlockSelfFollow, follower.ID) {
		return models.NewValidationError("Cannot follow yourself")
	}
	if _, err := s.users.GetByID(ctx, targetID); err != nil {
		return err
	}
	if err := s.follows.Create(ctx, follower.ID, targetID); err != nil {
		return err
	}

	observability.GraphEvents.WithLabelValues("follow").Inc()
	middleware.Logger.InfoContext(ctx, "user followed",
		slog.Uint64("target_user_id", uint64(targetID)),
	)
	return nil
}

// Unfollow removes the edge follower -> targetID if present.
func (s *GraphService) Unfollow(ctx context.Context, follower *models.User, targetID uint) error {
	if follower == nil {
		return models.NewUnauthorizedError("Authentication required")
	}
	if err := s.follows.Delete(ctx, follower.ID, targetID); err != nil {
		return err
	}

	observability.GraphEvents.WithLabelValues("unfollow").Inc()
	middleware.Logger.InfoContext(ctx, "user unfollowed",
		slog.Uint64("target_user_id", uint64(targetID)),
	)
	return nil
}

// IsFollowing reports whether a follows b.
func (s *GraphService) IsFollowing(ctx context.Context, a, b uint) (bool, error) {
	return s.follows.Exists(ctx, a, b)
}

// Followers lists the users following userID.
func (s *GraphService) Followers(ctx context.Context, userID uint) ([]models.User, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.follows.Followers(ctx, userID)
}

// Following lists the users userID follows.
func (s *GraphService) Following(ctx context.Context, userID uint) ([]models.User, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.follows.Following(ctx, userID)
}
