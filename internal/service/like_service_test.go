package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"warbler/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLikeService_LikeUnlike(t *testing.T) {
	env := newTestEnv(t, "")
	ctx := context.Background()
	alice := env.signup(t, "alice")
	bob := env.signup(t, "bob")

	msg, err := env.messages.Post(ctx, bob, "like me")
	require.NoError(t, err)

	require.NoError(t, env.likes.Like(ctx, alice, msg.ID))
	require.NoError(t, env.likes.Like(ctx, alice, msg.ID), "repeat like is a no-op")

	liked, err := env.likes.LikedMessages(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, liked, 1)
	assert.Equal(t, msg.ID, liked[0].ID)

	ok, err := env.likes.IsLiked(ctx, alice.ID, msg.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, env.likes.Unlike(ctx, alice, msg.ID))
	require.NoError(t, env.likes.Unlike(ctx, alice, msg.ID), "repeat unlike is a no-op")

	liked, err = env.likes.LikedMessages(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, liked)
}

func TestLikeService_SelfLikeForbidden(t *testing.T) {
	env := newTestEnv(t, "")
	ctx := context.Background()
	alice := env.signup(t, "alice")

	own, err := env.messages.Post(ctx, alice, "mine")
	require.NoError(t, err)

	err = env.likes.Like(ctx, alice, own.ID)
	assert.True(t, models.HasCode(err, models.CodeSelfLikeForbidden))

	liked, err := env.likes.LikedMessages(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, liked)
}

func TestLikeService_SelfLikeCheckedBeforeWrite(t *testing.T) {
	msgs := &messageRepoStub{getByIDFn: func(_ context.Context, id uint) (*models.Message, error) {
		return &models.Message{ID: id, UserID: 7, Text: "mine"}, nil
	}}
	likes := &likeRepoStub{likeFn: func(context.Context, uint, uint) error {
		t.Fatal("like edge must not be written for a self-like")
		return nil
	}}
	svc := NewLikeService(likes, msgs)

	err := svc.Like(context.Background(), &models.User{ID: 7}, 1)
	assert.True(t, models.HasCode(err, models.CodeSelfLikeForbidden))
}

func TestLikeService_Errors(t *testing.T) {
	env := newTestEnv(t, "")
	ctx := context.Background()
	alice := env.signup(t, "alice")

	err := env.likes.Like(ctx, alice, 404)
	assert.True(t, models.HasCode(err, models.CodeNotFound))

	err = env.likes.Unlike(ctx, alice, 404)
	assert.True(t, models.HasCode(err, models.CodeNotFound))

	err = env.likes.Like(ctx, nil, 1)
	assert.True(t, models.HasCode(err, models.CodeUnauthorized))

	t.Run("storage failure surfaces", func(t *testing.T) {
		msgs := &messageRepoStub{getByIDFn: func(context.Context, uint) (*models.Message, error) {
			return nil, models.NewInternalError(errors.New("db down"))
		}}
		svc := NewLikeService(&likeRepoStub{}, msgs)
		err := svc.Like(ctx, alice, 1)
		assert.True(t, models.HasCode(err, models.CodeInternal))
	})
}

func TestLikeService_LikedMessagesReturnsEverything(t *testing.T) {
	env := newTestEnv(t, "")
	ctx := context.Background()
	alice := env.signup(t, "alice")
	bob := env.signup(t, "bob")

	const total = 105
	for i := 0; i < total; i++ {
		msg, err := env.messages.Post(ctx, bob, fmt.Sprintf("post %d", i))
		require.NoError(t, err)
		require.NoError(t, env.likes.Like(ctx, alice, msg.ID))
	}

	liked, err := env.likes.LikedMessages(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, liked, total)
}
