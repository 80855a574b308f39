package repository

import (
	"context"
	"errors"

	"warbler/internal/models"
	"warbler/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FeedLimit caps feeds and user timelines.
const FeedLimit = 100

// MessageRepository defines persistence operations for messages and the feed query.
type MessageRepository interface {
	Create(ctx context.Context, msg *models.Message) error
	GetByID(ctx context.Context, id uint) (*models.Message, error)
	Delete(ctx context.Context, id uint) error
	ListByUser(ctx context.Context, userID uint, limit int) ([]models.Message, error)
	CountByUser(ctx context.Context, userID uint) (int64, error)
	Feed(ctx context.Context, viewerID uint, limit int) ([]models.Message, error)
	Recent(ctx context.Context, limit int) ([]models.Message, error)
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository returns a new MessageRepository implementation.
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > FeedLimit {
		return FeedLimit
	}
	return limit
}

func (r *messageRepository) Create(ctx context.Context, msg *models.Message) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(msg).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *messageRepository) GetByID(ctx context.Context, id uint) (*models.Message, error) {
	var msg models.Message
	if err := r.db.WithContext(ctx).Joins("User").First(&msg, "messages.id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Message", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &msg, nil
}

// Delete removes the message together with the likes pointing at it.
func (r *messageRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("message_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Message{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Message", id)
		}
		return nil
	})
	if err != nil {
		if models.HasCode(err, models.CodeNotFound) {
			return err
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *messageRepository) ListByUser(ctx context.Context, userID uint, limit int) ([]models.Message, error) {
	msgs := make([]models.Message, 0)
	if err := r.db.WithContext(ctx).
		Joins("User").
		Where("messages.user_id = ?", userID).
		Order("messages.timestamp DESC, messages.id DESC").
		Limit(clampLimit(limit)).
		Find(&msgs).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return msgs, nil
}

func (r *messageRepository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

// Feed returns the newest messages authored by the viewer or anyone the viewer
// follows. Authors are joined and the follow set is a subquery, so the whole
// feed is a single statement.
func (r *messageRepository) Feed(ctx context.Context, viewerID uint, limit int) ([]models.Message, error) {
	defer observability.TrackQuery("feed", "messages")()

	followed := r.db.Model(&models.Follow{}).Select("followed_id").Where("follower_id = ?", viewerID)

	msgs := make([]models.Message, 0)
	if err := r.db.WithContext(ctx).
		Joins("User").
		Where("messages.user_id = ? OR messages.user_id IN (?)", viewerID, followed).
		Order("messages.timestamp DESC, messages.id DESC").
		Limit(clampLimit(limit)).
		Find(&msgs).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return msgs, nil
}

// Recent returns the newest messages from everyone.
func (r *messageRepository) Recent(ctx context.Context, limit int) ([]models.Message, error) {
	msgs := make([]models.Message, 0)
	if err := r.db.WithContext(ctx).
		Joins("User").
		Order("messages.timestamp DESC, messages.id DESC").
		Limit(clampLimit(limit)).
		Find(&msgs).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return msgs, nil
}
