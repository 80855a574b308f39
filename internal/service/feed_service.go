package service

import (
	"context"
	"time"

	"warbler/internal/featureflags"
	"warbler/internal/models"
	"warbler/internal/observability"
	"warbler/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// FeedService assembles timelines.
type FeedService struct {
	messages repository.MessageRepository
	flags    *featureflags.Manager
}

// NewFeedService returns a new FeedService. flags may be nil.
func NewFeedService(messages repository.MessageRepository, flags *featureflags.Manager) *FeedService {
	return &FeedService{messages: messages, flags: flags}
}

// BuildFeed returns up to 100 messages by the viewer and everyone they follow,
// newest first. A nil viewer gets an empty feed.
func (s *FeedService) BuildFeed(ctx context.Context, viewer *models.User) (msgs []models.Message, err error) {
	start := time.Now()
	ctx, span := observability.StartServiceSpan(ctx, "FeedService", "BuildFeed")
	defer func() {
		observability.ObserveFeed(start, len(msgs))
		span.SetAttributes(attribute.Int("feed.size", len(msgs)))
		observability.EndSpan(span, err)
	}()

	if viewer == nil {
		if s.flags.Enabled(featureflags.AnonymousPublicFeed, 0) {
			return s.messages.Recent(ctx, repository.FeedLimit)
		}
		return []models.Message{}, nil
	}

	span.SetAttributes(attribute.Int64("feed.viewer_id", int64(viewer.ID)))
	return s.messages.Feed(ctx, viewer.ID, repository.FeedLimit)
}
