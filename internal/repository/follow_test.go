package repository

import (
	"context"
	"testing"

	"warbler/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowRepository_Integration(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewFollowRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	carol := testutil.CreateUser(t, db, "carol")

	t.Run("Create is idempotent", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, alice.ID, bob.ID))
		require.NoError(t, repo.Create(ctx, alice.ID, bob.ID))

		n, err := repo.CountFollowing(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("Edges are directed", func(t *testing.T) {
		ok, err := repo.Exists(ctx, alice.ID, bob.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = repo.Exists(ctx, bob.ID, alice.ID)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Followers and Following", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, carol.ID, bob.ID))

		followers, err := repo.Followers(ctx, bob.ID)
		require.NoError(t, err)
		require.Len(t, followers, 2)
		assert.Equal(t, "alice", followers[0].Username)
		assert.Equal(t, "carol", followers[1].Username)

		following, err := repo.Following(ctx, alice.ID)
		require.NoError(t, err)
		require.Len(t, following, 1)
		assert.Equal(t, "bob", following[0].Username)

		n, err := repo.CountFollowers(ctx, bob.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
	})

	t.Run("Delete is idempotent", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, alice.ID, bob.ID))
		require.NoError(t, repo.Delete(ctx, alice.ID, bob.ID))

		ok, err := repo.Exists(ctx, alice.ID, bob.ID)
		require.NoError(t, err)
		assert.False(t, ok)

		following, err := repo.Following(ctx, alice.ID)
		require.NoError(t, err)
		assert.NotNil(t, following)
		assert.Empty(t, following)
	})
}
