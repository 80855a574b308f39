package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"warbler/internal/models"
	"warbler/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLikeRepository_Integration(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewLikeRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	now := time.Now()
	first := testutil.CreateMessage(t, db, bob.ID, "first", now.Add(-time.Hour))
	second := testutil.CreateMessage(t, db, bob.ID, "second", now)

	t.Run("Like is idempotent", func(t *testing.T) {
		require.NoError(t, repo.Like(ctx, alice.ID, first.ID))
		require.NoError(t, repo.Like(ctx, alice.ID, first.ID))

		n, err := repo.CountByUser(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("LikedMessages most recently liked first", func(t *testing.T) {
		require.NoError(t, db.Model(&models.Like{}).
			Where("user_id = ? AND message_id = ?", alice.ID, first.ID).
			Update("created_at", now.Add(-time.Minute)).Error)
		require.NoError(t, repo.Like(ctx, alice.ID, second.ID))

		msgs, err := repo.LikedMessages(ctx, alice.ID)
		require.NoError(t, err)
		require.Len(t, msgs, 2)
		assert.Equal(t, second.ID, msgs[0].ID)
		assert.Equal(t, first.ID, msgs[1].ID)
		require.NotNil(t, msgs[0].User)
		assert.Equal(t, "bob", msgs[0].User.Username)
	})

	t.Run("Unlike is idempotent", func(t *testing.T) {
		require.NoError(t, repo.Unlike(ctx, alice.ID, first.ID))
		require.NoError(t, repo.Unlike(ctx, alice.ID, first.ID))

		liked, err := repo.IsLiked(ctx, alice.ID, first.ID)
		require.NoError(t, err)
		assert.False(t, liked)

		liked, err = repo.IsLiked(ctx, alice.ID, second.ID)
		require.NoError(t, err)
		assert.True(t, liked)
	})

	t.Run("No likes yields empty slice", func(t *testing.T) {
		msgs, err := repo.LikedMessages(ctx, bob.ID)
		require.NoError(t, err)
		assert.NotNil(t, msgs)
		assert.Empty(t, msgs)
	})
}

func TestLikeRepository_LikedMessagesIsUncapped(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewLikeRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	now := time.Now()
	total := FeedLimit + 5
	for i := 0; i < total; i++ {
		m := testutil.CreateMessage(t, db, bob.ID, fmt.Sprintf("msg %d", i), now.Add(time.Duration(i)*time.Second))
		require.NoError(t, repo.Like(ctx, alice.ID, m.ID))
	}

	msgs, err := repo.LikedMessages(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, msgs, total)
}
